package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Role tags a transcript turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrNoActiveSession is returned when appending to a user with no session
var ErrNoActiveSession = errors.New("no active session for user")

// Turn is one immutable entry in a user's transcript. Payload carries the
// structured extraction call on assistant turns that produced one.
type Turn struct {
	Role      Role
	Content   string
	Payload   json.RawMessage
	Timestamp time.Time
}

// Store maps messaging addresses to conversation transcripts. Operations
// for one address are serialized through a per-user lock; distinct
// addresses proceed in parallel.
type Store struct {
	systemInstruction string

	mu       sync.Mutex
	sessions map[string][]Turn
	locks    map[string]*userLock
}

// userLock is a turn lock with a holder-and-waiter count so the store
// can drop the map entry once nobody references it. Without the count
// the locks map would grow with every distinct address for the life of
// the process.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore creates a store that seeds every new session with the given
// system instruction as its first turn.
func NewStore(systemInstruction string) *Store {
	return &Store{
		systemInstruction: systemInstruction,
		sessions:          make(map[string][]Turn),
		locks:             make(map[string]*userLock),
	}
}

// Lock acquires the per-user turn lock and returns its release func.
// Callers hold it for the whole of a dialogue turn so two concurrent
// messages from the same user cannot interleave their appends.
func (s *Store) Lock(userAddress string) func() {
	s.mu.Lock()
	l, ok := s.locks[userAddress]
	if !ok {
		l = &userLock{}
		s.locks[userAddress] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userAddress)
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns a snapshot of the user's transcript, creating the
// session seeded with the system instruction if absent.
func (s *Store) GetOrCreate(userAddress string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[userAddress]
	if !ok {
		turns = []Turn{{
			Role:      RoleSystem,
			Content:   s.systemInstruction,
			Timestamp: time.Now(),
		}}
		s.sessions[userAddress] = turns
	}

	return snapshot(turns)
}

// AppendTurn adds a turn to an existing session. Fails with
// ErrNoActiveSession if GetOrCreate was never called for the user.
func (s *Store) AppendTurn(userAddress string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[userAddress]
	if !ok {
		return ErrNoActiveSession
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.sessions[userAddress] = append(turns, turn)
	return nil
}

// Snapshot returns a copy of the user's transcript, or nil if no session
func (s *Store) Snapshot(userAddress string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions[userAddress]
	if !ok {
		return nil
	}
	return snapshot(turns)
}

// Active reports whether the user has a session
func (s *Store) Active(userAddress string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userAddress]
	return ok
}

// Clear removes the user's session. Clearing an absent session is a no-op.
func (s *Store) Clear(userAddress string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userAddress)
}

func snapshot(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
