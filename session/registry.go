// session/registry.go
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrAlreadyConnected = errors.New("another session is already connected")

// Slot is the single live-view subscription of a game. SessionID is the
// authenticated identity of the holder, RequestID distinguishes
// individual connections of that identity.
type Slot struct {
	SessionID string
	RequestID string
	Channel   chan Event
}

// Registry keeps at most one Slot per game id. Acquire, Release and
// Terminate each run under one mutex hold with no external calls
// inside, so slot reads and writes can never interleave.
type Registry struct {
	slots map[string]*Slot
	mutex sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[string]*Slot),
	}
}

// Acquire claims the live-view slot of a game for sessionID. If the
// slot is free, a fresh slot is installed. If the same session already
// holds it (tab refresh, reconnect), the old channel is told to
// disconnect first and the slot is replaced. A different session is
// rejected and the existing slot stays untouched.
func (r *Registry) Acquire(gameID, sessionID string) (*Slot, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if old, exists := r.slots[gameID]; exists {
		if old.SessionID != sessionID {
			return nil, ErrAlreadyConnected
		}
		// The previous connection must observe its termination before
		// the new one takes over.
		Deliver(old.Channel, DisconnectEvent())
	}

	slot := &Slot{
		SessionID: sessionID,
		RequestID: uuid.New().String(),
		Channel:   NewChannel(),
	}
	r.slots[gameID] = slot
	return slot, nil
}

// Release frees the slot, but only if it is still held by exactly the
// (session, request) pair that acquired it. A stale connection tearing
// down after a takeover must not clobber its replacement.
func (r *Registry) Release(gameID, sessionID, requestID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.slots[gameID]
	if !exists || slot.SessionID != sessionID || slot.RequestID != requestID {
		return
	}
	delete(r.slots, gameID)
}

// Terminate delivers a final event to the current holder, if any, and
// removes the slot unconditionally. Used when the game ends.
func (r *Registry) Terminate(gameID string, ev Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.slots[gameID]
	if !exists {
		return
	}
	Deliver(slot.Channel, ev)
	delete(r.slots, gameID)
}

// Get returns the current slot of a game, if any.
func (r *Registry) Get(gameID string) (*Slot, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	slot, exists := r.slots[gameID]
	return slot, exists
}

// Count returns the number of occupied slots.
func (r *Registry) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.slots)
}
