package raft

import "go.uber.org/zap"

// ProgressTracker is the leader's bookkeeping for the active
// configuration: per-member replication progress plus the voter sets the
// commit index is derived from. Owned by a single leader role instance,
// never shared.
type ProgressTracker struct {
	myID     ServerID
	progress map[ServerID]*FollowerProgress

	currentVoters  map[ServerID]struct{}
	previousVoters map[ServerID]struct{}

	logger *zap.Logger
}

func NewProgressTracker(myID ServerID) *ProgressTracker {
	return &ProgressTracker{
		myID:           myID,
		progress:       make(map[ServerID]*FollowerProgress),
		currentVoters:  make(map[ServerID]struct{}),
		previousVoters: make(map[ServerID]struct{}),
		logger: GetLoggerOrPanic("tracker").
			With(zap.String(Leader, myID.String())),
	}
}

// Find returns the progress for dst, or nil if dst is not part of the
// current configuration any more. This happens when handling messages
// from removed members and is not an error.
func (t *ProgressTracker) Find(dst ServerID) *FollowerProgress {
	return t.progress[dst]
}

// LeaderProgress returns the leader's own progress if the leader is a
// voting member of the current configuration, nil otherwise. A leader
// committing a configuration that removes itself replicates entries but
// must not count itself in majorities.
func (t *ProgressTracker) LeaderProgress() *FollowerProgress {
	if _, ok := t.currentVoters[t.myID]; !ok {
		return nil
	}
	return t.Find(t.myID)
}

func (t *ProgressTracker) Size() int {
	return len(t.progress)
}

func (t *ProgressTracker) Visit(f func(id ServerID, fp *FollowerProgress)) {
	for id, fp := range t.progress {
		f(id, fp)
	}
}

// SetConfiguration rebuilds the tracked membership. Members present both
// before and after keep their progress untouched; new members start at
// nextIdx; members gone from both sets are dropped.
func (t *ProgressTracker) SetConfiguration(cfg Configuration, nextIdx Index) {
	t.currentVoters = cfg.Current.VoterIDs()
	t.previousVoters = cfg.Previous.VoterIDs()

	for _, set := range []ServerAddressSet{cfg.Current, cfg.Previous} {
		for id := range set {
			if _, ok := t.progress[id]; ok {
				continue
			}
			t.progress[id] = NewFollowerProgress(id, nextIdx)
			t.logger.Debug(
				"track new member",
				zap.String(Follower, id.String()),
				zap.Uint64(NextIndex, uint64(nextIdx)),
			)
		}
	}

	for id := range t.progress {
		_, current := cfg.Current[id]
		_, previous := cfg.Previous[id]
		if !current && !previous {
			delete(t.progress, id)
			t.logger.Debug("drop removed member", zap.String(Follower, id.String()))
		}
	}
}

// Committed computes the new commit index under the current simple or
// joint quorum. The result never goes below prevCommitIdx.
func (t *ProgressTracker) Committed(prevCommitIdx Index) Index {
	committed := majorityIndex(t.matchIndexes(t.currentVoters))

	if len(t.previousVoters) != 0 {
		// during a joint transition an index is committed only once
		// majorities of both the old and new configuration hold it
		previous := majorityIndex(t.matchIndexes(t.previousVoters))
		if previous < committed {
			committed = previous
		}
	}

	if committed < prevCommitIdx {
		return prevCommitIdx
	}
	t.logger.Debug("commit index", zap.Uint64(CommitIndex, uint64(committed)))
	return committed
}

func (t *ProgressTracker) matchIndexes(voters map[ServerID]struct{}) []Index {
	matched := make([]Index, 0, len(voters))
	for id := range voters {
		fp := t.Find(id)
		if fp == nil {
			panic("voter without a progress entry: " + id.String())
		}
		matched = append(matched, fp.MatchIdx)
	}
	return matched
}
