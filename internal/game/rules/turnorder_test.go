package rules

import "testing"

func newOrder(t *testing.T, players ...string) *TurnOrder {
	t.Helper()
	to, err := NewTurnOrder(players)
	if err != nil {
		t.Fatalf("NewTurnOrder failed: %v", err)
	}
	return to
}

func TestNewTurnOrderValidation(t *testing.T) {
	if _, err := NewTurnOrder(nil); err == nil {
		t.Fatalf("expected error for empty player list")
	}
	if _, err := NewTurnOrder([]string{"alice", "alice"}); err == nil {
		t.Fatalf("expected error for duplicate player ids")
	}
	if _, err := NewTurnOrder([]string{"alice", ""}); err == nil {
		t.Fatalf("expected error for empty player id")
	}
}

func TestTurnOrderRotation(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")

	if to.ActivePlayer() != "alice" {
		t.Fatalf("expected alice to start, got %s", to.ActivePlayer())
	}
	if to.TurnNumber() != 1 {
		t.Fatalf("expected turn 1, got %d", to.TurnNumber())
	}

	want := []string{"bob", "carol", "alice", "bob"}
	for i, expected := range want {
		next := to.NextTurn()
		if next != expected {
			t.Fatalf("turn advance %d: expected %s, got %s", i, expected, next)
		}
		if to.TurnNumber() != i+2 {
			t.Fatalf("turn advance %d: expected turn %d, got %d", i, i+2, to.TurnNumber())
		}
	}
}

func TestTurnOrderExtraTurns(t *testing.T) {
	to := newOrder(t, "alice", "bob")

	to.AddExtraTurn("alice")
	to.AddExtraTurn("bob")
	if to.ExtraTurnCount() != 2 {
		t.Fatalf("expected 2 queued extra turns, got %d", to.ExtraTurnCount())
	}

	// Extra turns come first, in grant order, without advancing the count.
	if next := to.NextTurn(); next != "alice" {
		t.Fatalf("expected alice's extra turn, got %s", next)
	}
	if to.TurnNumber() != 1 {
		t.Fatalf("extra turn must not increment the turn number, got %d", to.TurnNumber())
	}
	if next := to.NextTurn(); next != "bob" {
		t.Fatalf("expected bob's extra turn, got %s", next)
	}
	if to.TurnNumber() != 1 {
		t.Fatalf("extra turn must not increment the turn number, got %d", to.TurnNumber())
	}

	// Queue drained: normal rotation resumes from the extra-turn taker.
	if next := to.NextTurn(); next != "alice" {
		t.Fatalf("expected rotation to resume with alice, got %s", next)
	}
	if to.TurnNumber() != 2 {
		t.Fatalf("expected turn 2 after rotation resumed, got %d", to.TurnNumber())
	}
}

func TestTurnOrderExtraTurnForEliminatedPlayer(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")
	to.AddExtraTurn("carol")
	to.RemovePlayer("carol")

	// Carol's queued extra turn is discarded; the rotation advances normally.
	if next := to.NextTurn(); next != "bob" {
		t.Fatalf("expected bob, got %s", next)
	}
	if to.TurnNumber() != 2 {
		t.Fatalf("expected turn 2, got %d", to.TurnNumber())
	}
}

func TestTurnOrderRemoveBeforeActive(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")
	to.NextTurn() // bob active

	if !to.RemovePlayer("alice") {
		t.Fatalf("expected removal of alice to succeed")
	}
	if to.ActivePlayer() != "bob" {
		t.Fatalf("active player must stay bob, got %s", to.ActivePlayer())
	}
	if next := to.NextTurn(); next != "carol" {
		t.Fatalf("expected carol after bob, got %s", next)
	}
}

func TestTurnOrderRemoveActivePlayer(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")
	to.NextTurn() // bob active

	to.RemovePlayer("bob")
	// The unchanged index now denotes the next player in order.
	if to.ActivePlayer() != "carol" {
		t.Fatalf("expected carol to be active, got %s", to.ActivePlayer())
	}
}

func TestTurnOrderRemoveLastSeatWraps(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")
	to.NextTurn()
	to.NextTurn() // carol active

	to.RemovePlayer("carol")
	// Index renormalizes modulo the shrunk list.
	if to.ActivePlayer() != "alice" {
		t.Fatalf("expected alice to be active, got %s", to.ActivePlayer())
	}
	if to.PlayerCount() != 2 {
		t.Fatalf("expected 2 players remaining, got %d", to.PlayerCount())
	}
}

func TestTurnOrderRemoveUnknownPlayer(t *testing.T) {
	to := newOrder(t, "alice", "bob")
	if to.RemovePlayer("mallory") {
		t.Fatalf("expected removal of unknown player to report false")
	}
}

func TestTurnOrderRemoveLastPlayerPanics(t *testing.T) {
	to := newOrder(t, "alice", "bob")
	to.RemovePlayer("bob")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when removing the last player")
		}
	}()
	to.RemovePlayer("alice")
}

func TestApnapOrder(t *testing.T) {
	to := newOrder(t, "alice", "bob", "carol")
	to.NextTurn() // bob active

	order := to.ApnapOrder()
	want := []string{"bob", "carol", "alice"}
	if len(order) != len(want) {
		t.Fatalf("expected %d players, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}
