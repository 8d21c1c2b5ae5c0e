package raft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElectionTracker_Tally(t *testing.T) {
	tests := []struct {
		name   string
		grants []bool
		want   VoteResult
	}{
		{"three grants win", []bool{true, true, true}, VoteResultWon},
		{"three denies lose", []bool{false, false, false}, VoteResultLost},
		{"split still open", []bool{true, false}, VoteResultUnknown},
		{"no votes yet", nil, VoteResultUnknown},
		{"two denies still open", []bool{false, false}, VoteResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			set, ids := newVoterSet(5)
			et := NewElectionTracker(set)

			for i, granted := range tt.grants {
				rq.True(et.RegisterVote(ids[i], granted))
			}
			rq.Equal(tt.want, et.TallyVotes())
		})
	}
}

func TestElectionTracker_SingleServer(t *testing.T) {
	rq := require.New(t)
	set, ids := newVoterSet(1)
	et := NewElectionTracker(set)

	rq.Equal(VoteResultUnknown, et.TallyVotes())
	et.RegisterVote(ids[0], true)
	rq.Equal(VoteResultWon, et.TallyVotes())
}

func TestElectionTracker_DuplicateVote(t *testing.T) {
	rq := require.New(t)
	set, ids := newVoterSet(3)
	et := NewElectionTracker(set)

	rq.True(et.RegisterVote(ids[0], true))
	rq.True(et.RegisterVote(ids[0], true))
	rq.Equal(VoteResultUnknown, et.TallyVotes())

	// a flipped duplicate does not count either
	rq.True(et.RegisterVote(ids[0], false))
	et.RegisterVote(ids[1], true)
	rq.Equal(VoteResultWon, et.TallyVotes())
}

func TestElectionTracker_UnknownVoter(t *testing.T) {
	rq := require.New(t)
	set, _ := newVoterSet(3)
	et := NewElectionTracker(set)

	rq.False(et.RegisterVote(NewServerID(), true))
	rq.Equal(VoteResultUnknown, et.TallyVotes())
}

func TestElectionTracker_NonVotersExcluded(t *testing.T) {
	rq := require.New(t)
	set, ids := newVoterSet(2)
	observer := NewServerID()
	set[observer] = ServerAddress{ID: observer}

	et := NewElectionTracker(set)
	rq.False(et.RegisterVote(observer, true))

	et.RegisterVote(ids[0], true)
	et.RegisterVote(ids[1], true)
	rq.Equal(VoteResultWon, et.TallyVotes())
}

func TestVotes_SimpleConfiguration(t *testing.T) {
	rq := require.New(t)
	set, ids := newVoterSet(3)
	votes := NewVotes(Configuration{Current: set})

	votes.RegisterVote(ids[0], true)
	rq.Equal(VoteResultUnknown, votes.TallyVotes())
	votes.RegisterVote(ids[1], true)
	rq.Equal(VoteResultWon, votes.TallyVotes())
}

func TestVotes_Joint(t *testing.T) {
	rq := require.New(t)
	current, currentIDs := newVoterSet(3)
	previous, previousIDs := newVoterSet(3)
	cfg := Configuration{Current: current, Previous: previous}

	t.Run("current won previous lost", func(t *testing.T) {
		votes := NewVotes(cfg)
		for _, id := range currentIDs {
			votes.RegisterVote(id, true)
		}
		for _, id := range previousIDs {
			votes.RegisterVote(id, false)
		}
		rq.Equal(VoteResultLost, votes.TallyVotes())
	})

	t.Run("current unknown previous won", func(t *testing.T) {
		votes := NewVotes(cfg)
		for _, id := range previousIDs {
			votes.RegisterVote(id, true)
		}
		rq.Equal(VoteResultUnknown, votes.TallyVotes())
	})

	t.Run("both won", func(t *testing.T) {
		votes := NewVotes(cfg)
		for _, id := range currentIDs {
			votes.RegisterVote(id, true)
		}
		for _, id := range previousIDs {
			votes.RegisterVote(id, true)
		}
		rq.Equal(VoteResultWon, votes.TallyVotes())
	})
}

func TestVotes_SharedVoterCountsInBothQuorums(t *testing.T) {
	rq := require.New(t)
	current, currentIDs := newVoterSet(3)
	previous, previousIDs := newVoterSet(2)
	shared := currentIDs[0]
	previous[shared] = current[shared]

	votes := NewVotes(Configuration{Current: current, Previous: previous})
	rq.Len(votes.Voters(), 5)

	votes.RegisterVote(shared, true)
	votes.RegisterVote(currentIDs[1], true)
	votes.RegisterVote(previousIDs[0], true)
	rq.Equal(VoteResultWon, votes.TallyVotes())
}

func TestVotes_UnknownVoterIgnored(t *testing.T) {
	rq := require.New(t)
	current, _ := newVoterSet(3)
	previous, _ := newVoterSet(3)

	votes := NewVotes(Configuration{Current: current, Previous: previous})
	rq.False(votes.RegisterVote(NewServerID(), true))
}

func TestVoteResult_String(t *testing.T) {
	rq := require.New(t)
	rq.Equal("unknown", VoteResultUnknown.String())
	rq.Equal("won", VoteResultWon.String())
	rq.Equal("lost", VoteResultLost.String())
}
