package raft

import "go.uber.org/zap"

// VoteResult is the outcome of an election round.
type VoteResult int

const (
	// VoteResultUnknown means not enough responses arrived yet to decide
	// either way.
	VoteResultUnknown VoteResult = iota
	// VoteResultWon means this candidate has won the election.
	VoteResultWon
	// VoteResultLost means a quorum has voted against this candidate.
	VoteResultLost
)

var voteResultStrings = []string{
	"unknown",
	"won",
	"lost",
}

func (v VoteResult) String() string {
	return voteResultStrings[v]
}

// ElectionTracker tallies votes within a single quorum.
type ElectionTracker struct {
	// all eligible voters
	suffrage map[ServerID]struct{}
	// votes collected so far
	responded map[ServerID]struct{}
	granted   int
}

func NewElectionTracker(configuration ServerAddressSet) *ElectionTracker {
	return &ElectionTracker{
		suffrage:  configuration.VoterIDs(),
		responded: make(map[ServerID]struct{}),
	}
}

// RegisterVote counts a vote. It reports false if from has no suffrage in
// this quorum; a repeated vote from the same server is a no-op.
func (e *ElectionTracker) RegisterVote(from ServerID, granted bool) bool {
	if _, ok := e.suffrage[from]; !ok {
		return false
	}
	if _, voted := e.responded[from]; !voted {
		e.responded[from] = struct{}{}
		if granted {
			e.granted++
		}
	}
	return true
}

// TallyVotes decides the round as early as the collected votes allow:
// won once a majority granted, lost once even unanimous support from the
// servers still to respond could not reach a majority.
func (e *ElectionTracker) TallyVotes() VoteResult {
	quorum := majority(len(e.suffrage))
	if e.granted >= quorum {
		return VoteResultWon
	}
	if len(e.responded) > len(e.suffrage) {
		panic("election tracker: more responses than voters")
	}
	unknown := len(e.suffrage) - len(e.responded)
	if e.granted+unknown >= quorum {
		return VoteResultUnknown
	}
	return VoteResultLost
}

// Votes is the candidate's election state. During a joint-consensus
// transition it tallies the outgoing configuration separately: the
// candidate must win majorities under both the old and new membership.
type Votes struct {
	voters   ServerAddressSet
	current  *ElectionTracker
	previous *ElectionTracker

	logger *zap.Logger
}

func NewVotes(cfg Configuration) *Votes {
	voters := make(ServerAddressSet)
	for id, addr := range cfg.Current {
		if addr.CanVote {
			voters[id] = addr
		}
	}
	for id, addr := range cfg.Previous {
		if addr.CanVote {
			voters[id] = addr
		}
	}

	v := &Votes{
		voters:  voters,
		current: NewElectionTracker(cfg.Current),
		logger:  GetLoggerOrPanic("votes"),
	}
	if cfg.IsJoint() {
		v.previous = NewElectionTracker(cfg.Previous)
	}
	return v
}

// Voters returns every member with suffrage under either configuration.
func (v *Votes) Voters() ServerAddressSet {
	return v.voters
}

// RegisterVote feeds a vote to every quorum the voter belongs to. It
// reports false if the voter has suffrage under neither configuration.
func (v *Votes) RegisterVote(from ServerID, granted bool) bool {
	registered := v.current.RegisterVote(from, granted)
	if v.previous != nil {
		registered = v.previous.RegisterVote(from, granted) || registered
	}
	if !registered {
		v.logger.Debug(
			"vote from server without suffrage ignored",
			zap.String(Voter, from.String()),
		)
	}
	return registered
}

func (v *Votes) TallyVotes() VoteResult {
	current := v.current.TallyVotes()
	if v.previous == nil {
		return current
	}

	previous := v.previous.TallyVotes()
	if current == VoteResultWon && previous == VoteResultWon {
		return VoteResultWon
	}
	if current == VoteResultLost || previous == VoteResultLost {
		return VoteResultLost
	}
	return VoteResultUnknown
}
