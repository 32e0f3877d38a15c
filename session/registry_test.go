package session

import (
	"testing"
)

func TestRegistry_AcquireFreeSlot(t *testing.T) {
	registry := NewRegistry()

	slot, err := registry.Acquire("game1", "sessionA")
	if err != nil {
		t.Fatalf("Acquire on a free slot should succeed, got: %v", err)
	}
	if slot.SessionID != "sessionA" {
		t.Errorf("Expected slot bound to sessionA, got %s", slot.SessionID)
	}
	if slot.RequestID == "" {
		t.Error("Acquire should assign a request id")
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 occupied slot, got %d", registry.Count())
	}
}

func TestRegistry_SameSessionTakeover(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Acquire("game1", "sessionA")
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	second, err := registry.Acquire("game1", "sessionA")
	if err != nil {
		t.Fatalf("Takeover by the same session should succeed, got: %v", err)
	}

	if second.RequestID == first.RequestID {
		t.Error("Takeover should mint a fresh request id")
	}

	// The old channel must have observed its disconnect before the swap.
	select {
	case ev := <-first.Channel:
		if ev.Type != EventDisconnect {
			t.Errorf("Expected disconnect on the old channel, got %v", ev.Type)
		}
	default:
		t.Error("Old channel should have received a disconnect event")
	}

	current, ok := registry.Get("game1")
	if !ok || current.RequestID != second.RequestID {
		t.Error("Registry should hold the new slot after takeover")
	}
	if registry.Count() != 1 {
		t.Errorf("Takeover must not grow the registry, got %d slots", registry.Count())
	}
}

func TestRegistry_DifferentSessionRejected(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Acquire("game1", "sessionA")
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	_, err = registry.Acquire("game1", "sessionB")
	if err != ErrAlreadyConnected {
		t.Fatalf("Expected ErrAlreadyConnected, got: %v", err)
	}

	// The holder must be untouched: same slot, no stray events.
	current, ok := registry.Get("game1")
	if !ok || current.RequestID != first.RequestID {
		t.Error("Rejected acquire must leave the existing slot in place")
	}
	select {
	case ev := <-first.Channel:
		t.Errorf("Holder received unexpected event %v", ev.Type)
	default:
	}
}

func TestRegistry_ReleaseExactMatchOnly(t *testing.T) {
	registry := NewRegistry()

	first, _ := registry.Acquire("game1", "sessionA")
	second, _ := registry.Acquire("game1", "sessionA")

	// The displaced connection tears down late; it must not clobber
	// the slot its replacement holds.
	registry.Release("game1", first.SessionID, first.RequestID)
	if registry.Count() != 1 {
		t.Fatal("Stale release must be a no-op")
	}

	registry.Release("game1", "sessionB", second.RequestID)
	if registry.Count() != 1 {
		t.Fatal("Release with a foreign session id must be a no-op")
	}

	registry.Release("game1", second.SessionID, second.RequestID)
	if registry.Count() != 0 {
		t.Fatal("Matching release should free the slot")
	}
}

func TestRegistry_TerminateDeliversAndClears(t *testing.T) {
	registry := NewRegistry()

	slot, _ := registry.Acquire("game1", "sessionA")

	registry.Terminate("game1", ErrorEvent(ReasonEnded))

	select {
	case ev := <-slot.Channel:
		if ev.Type != EventError || ev.Reason != ReasonEnded {
			t.Errorf("Expected ended error event, got %+v", ev)
		}
	default:
		t.Error("Holder should have received the terminal event")
	}

	if registry.Count() != 0 {
		t.Error("Terminate should clear the slot")
	}

	// Terminating a game without a slot is fine.
	registry.Terminate("game2", ErrorEvent(ReasonEnded))
}

func TestDeliver_FullChannelDoesNotBlock(t *testing.T) {
	ch := make(chan Event, 1)
	Deliver(ch, WordEvent("first"))
	// The consumer is gone; this push must be dropped, not block.
	Deliver(ch, WordEvent("second"))

	ev := <-ch
	if ev.Word != "first" {
		t.Errorf("Expected the first event to survive, got %q", ev.Word)
	}
}
