package raft

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Index is a position in the replicated log. Index 0 means "before the
// first entry"; real entries start at 1.
type Index uint64

// ServerID identifies one cluster member.
type ServerID string

func NewServerID() ServerID {
	return ServerID(uuid.New().String())
}

func (id ServerID) String() string {
	return string(id)
}

// ServerAddress describes one cluster member. Members with CanVote unset
// are non-voting observers: they receive log entries but count towards
// neither commit majorities nor elections.
type ServerAddress struct {
	ID      ServerID
	CanVote bool
}

type ServerAddressSet map[ServerID]ServerAddress

func (s ServerAddressSet) VoterIDs() map[ServerID]struct{} {
	voters := make(map[ServerID]struct{})
	for id, addr := range s {
		if addr.CanVote {
			voters[id] = struct{}{}
		}
	}
	return voters
}

// Configuration is the cluster membership. During a joint-consensus
// transition Previous holds the outgoing membership; outside a transition
// it is empty.
type Configuration struct {
	Current  ServerAddressSet
	Previous ServerAddressSet
}

func (c Configuration) IsJoint() bool {
	return len(c.Previous) != 0
}

func (c Configuration) CanVote(id ServerID) bool {
	if addr, ok := c.Current[id]; ok && addr.CanVote {
		return true
	}
	if addr, ok := c.Previous[id]; ok && addr.CanVote {
		return true
	}
	return false
}

var (
	errorEmptyConfiguration = errors.New("configuration has no members")
	errorNoCurrentVoters    = errors.New("current configuration has no voting members")
	errorNoPreviousVoters   = errors.New("previous configuration has no voting members")
)

// Check reports every problem with the configuration at once.
func (c Configuration) Check() error {
	var err error
	if len(c.Current) == 0 {
		err = multierr.Append(err, errorEmptyConfiguration)
	} else if len(c.Current.VoterIDs()) == 0 {
		err = multierr.Append(err, errorNoCurrentVoters)
	}
	if c.IsJoint() && len(c.Previous.VoterIDs()) == 0 {
		err = multierr.Append(err, errorNoPreviousVoters)
	}
	return err
}

// AppendRejected is the payload of a failed append acknowledgment.
type AppendRejected struct {
	// NonMatchingIdx is the index the follower failed to match.
	NonMatchingIdx Index
	// LastIdx is the last index in the follower's log.
	LastIdx Index
}
