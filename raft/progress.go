package raft

import "go.uber.org/zap"

// ProgressState is the replication mode of a tracked follower.
type ProgressState int

const (
	// ProgressStateProbe sends a single append at a time until the
	// follower's matching index is found.
	ProgressStateProbe ProgressState = iota
	// ProgressStatePipeline sends multiple appends optimistically,
	// advancing the next index before replies arrive.
	ProgressStatePipeline
	// ProgressStateSnapshot means the follower is behind the retained
	// log prefix and a snapshot transfer is in progress; normal
	// replication is suspended.
	ProgressStateSnapshot
)

var progressStateStrings = []string{
	"probe",
	"pipeline",
	"snapshot",
}

func (s ProgressState) String() string {
	return progressStateStrings[s]
}

// DefaultMaxInFlight bounds un-acked appends in pipeline mode.
const DefaultMaxInFlight = 10

// FollowerProgress is the leader's view of one cluster member, including
// itself. Pure in-memory state, single-writer, no locking.
type FollowerProgress struct {
	// ID of the tracked server.
	ID ServerID
	// NextIdx is the index of the next log entry to send to this server.
	NextIdx Index
	// MatchIdx is the highest log index known to be replicated to this
	// server.
	MatchIdx Index
	// CommitIdx is the highest index this server is known to have
	// committed.
	CommitIdx Index

	State ProgressState
	// ProbeSent is true once a packet was sent in the current probe
	// episode.
	ProbeSent bool
	// InFlight counts un-acked append requests.
	InFlight int
	// MaxInFlight can be lowered in tests.
	MaxInFlight int

	logger *zap.Logger
}

func NewFollowerProgress(id ServerID, nextIdx Index) *FollowerProgress {
	return &FollowerProgress{
		ID:          id,
		NextIdx:     nextIdx,
		MaxInFlight: DefaultMaxInFlight,
		logger: GetLoggerOrPanic("progress").
			With(zap.String(Follower, id.String())),
	}
}

func (fp *FollowerProgress) BecomeProbe() {
	fp.State = ProgressStateProbe
	fp.ProbeSent = false
	fp.InFlight = 0
	fp.logger.Debug("become probe", zap.Uint64(NextIndex, uint64(fp.NextIdx)))
}

func (fp *FollowerProgress) BecomePipeline() {
	if fp.State != ProgressStatePipeline {
		// fresh flow-control window
		fp.State = ProgressStatePipeline
		fp.InFlight = 0
		fp.logger.Debug("become pipeline", zap.Uint64(NextIndex, uint64(fp.NextIdx)))
	}
}

func (fp *FollowerProgress) BecomeSnapshot(snpIdx Index) {
	fp.State = ProgressStateSnapshot
	// once the snapshot transfer completes, replication continues right
	// after the snapshotted position
	fp.NextIdx = snpIdx + 1
	fp.logger.Debug("become snapshot", zap.Uint64(NextIndex, uint64(fp.NextIdx)))
}

// Accepted records a successful append acknowledgment for idx.
// Replies can arrive out of order, so neither index may regress.
func (fp *FollowerProgress) Accepted(idx Index) {
	if idx > fp.MatchIdx {
		fp.MatchIdx = idx
	}
	// idx may be smaller if NextIdx was advanced optimistically in
	// pipeline mode
	if idx+1 > fp.NextIdx {
		fp.NextIdx = idx + 1
	}
}

// CommitAdvanced records the follower's own commit index as reported in
// an append reply. Replies can arrive out of order, so it never regresses.
func (fp *FollowerProgress) CommitAdvanced(idx Index) {
	if idx > fp.CommitIdx {
		fp.CommitIdx = idx
	}
}

// SentAppend records an outbound append whose last entry is lastIdx.
func (fp *FollowerProgress) SentAppend(lastIdx Index) {
	switch fp.State {
	case ProgressStateProbe:
		fp.ProbeSent = true
		fp.InFlight = 1
	case ProgressStatePipeline:
		if lastIdx+1 > fp.NextIdx {
			fp.NextIdx = lastIdx + 1
		}
		fp.InFlight++
	case ProgressStateSnapshot:
		fp.logger.Warn("append sent during snapshot transfer")
	}
}

// Acknowledge records that one outstanding reply arrived, whatever its
// outcome.
func (fp *FollowerProgress) Acknowledge() {
	fp.ProbeSent = false
	if fp.InFlight > 0 {
		fp.InFlight--
	}
}

// IsStrayReject reports whether a reject reply is delayed or reordered and
// must be ignored. Acting on a stray reject would regress NextIdx below
// positions already confirmed by a later accept.
func (fp *FollowerProgress) IsStrayReject(rejected AppendRejected) bool {
	// a reject obsoleted by a later accept is stray in every mode
	if rejected.NonMatchingIdx <= fp.MatchIdx {
		return true
	}
	if rejected.LastIdx < fp.MatchIdx {
		return true
	}
	switch fp.State {
	case ProgressStatePipeline:
		// with multiple appends in flight the guards above are the
		// only checks possible
		return false
	case ProgressStateProbe:
		// at most one append can be outstanding, probing the entry
		// right before NextIdx
		return !fp.ProbeSent || rejected.NonMatchingIdx != fp.NextIdx-1
	case ProgressStateSnapshot:
		// no appends are outstanding during a snapshot transfer
		return true
	}
	panic("unreachable progress state")
}

// CanSendTo reports whether a new replication record may be sent.
func (fp *FollowerProgress) CanSendTo() bool {
	switch fp.State {
	case ProgressStateProbe:
		return !fp.ProbeSent
	case ProgressStatePipeline:
		return fp.InFlight < fp.MaxInFlight
	case ProgressStateSnapshot:
		// replication is suspended until the snapshot transfer completes
		return false
	}
	panic("unreachable progress state")
}
