package rules

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestTriggerConditionMatches(t *testing.T) {
	minPower := 3
	maxPower := 5

	cases := []struct {
		name      string
		condition *TriggerCondition
		event     Event
		want      bool
	}{
		{
			name:      "nil condition matches everything",
			condition: nil,
			event:     Event{},
			want:      true,
		},
		{
			name:      "controller mismatch",
			condition: &TriggerCondition{Controller: "alice"},
			event:     Event{Controller: "bob"},
			want:      false,
		},
		{
			name:      "card type case insensitive",
			condition: &TriggerCondition{CardType: "creature"},
			event:     Event{CardTypes: []string{"Creature"}},
			want:      true,
		},
		{
			name:      "colors must all be present",
			condition: &TriggerCondition{Colors: []string{"red", "green"}},
			event:     Event{Colors: []string{"red"}},
			want:      false,
		},
		{
			name:      "power within bounds",
			condition: &TriggerCondition{MinPower: &minPower, MaxPower: &maxPower},
			event:     Event{Power: 4},
			want:      true,
		},
		{
			name:      "power below minimum",
			condition: &TriggerCondition{MinPower: &minPower},
			event:     Event{Power: 2},
			want:      false,
		},
		{
			name:      "custom predicate",
			condition: &TriggerCondition{Custom: func(e Event) bool { return e.Amount > 10 }},
			event:     Event{Amount: 5},
			want:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.condition.Matches(tc.event); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFireTriggerBatchesWithoutStacking(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	tm.RegisterTrigger(&TriggeredAbility{
		Controller: "alice",
		EventType:  EventCreatureDied,
		Effect:     func(Event) error { return nil },
	})

	fired := tm.FireTrigger(EventCreatureDied, NewEvent(EventCreatureDied, "perm-1", "", "alice"))
	if fired != 1 {
		t.Fatalf("expected 1 trigger to fire, got %d", fired)
	}
	if tm.PendingCount() != 1 {
		t.Fatalf("expected 1 pending trigger, got %d", tm.PendingCount())
	}
	if !stack.IsEmpty() {
		t.Fatalf("fired triggers must not reach the stack before ResolvePendingTriggers")
	}

	if pushed := tm.ResolvePendingTriggers(); pushed != 1 {
		t.Fatalf("expected 1 trigger pushed, got %d", pushed)
	}
	if tm.PendingCount() != 0 {
		t.Fatalf("pending queue must be cleared, got %d", tm.PendingCount())
	}
	if stack.Size() != 1 {
		t.Fatalf("expected 1 item on the stack, got %d", stack.Size())
	}
}

func TestResolvePendingTriggersNonActiveResolvesFirst(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	var resolved []string
	tm.RegisterTrigger(&TriggeredAbility{
		ID:         "active-owned",
		Controller: "alice",
		EventType:  EventBeginningOfUpkeep,
		Effect: func(Event) error {
			resolved = append(resolved, "alice")
			return nil
		},
	})
	tm.RegisterTrigger(&TriggeredAbility{
		ID:         "non-active-owned",
		Controller: "bob",
		EventType:  EventBeginningOfUpkeep,
		Effect: func(Event) error {
			resolved = append(resolved, "bob")
			return nil
		},
	})

	tm.FireTrigger(EventBeginningOfUpkeep, NewEvent(EventBeginningOfUpkeep, "", "", "alice"))
	tm.ResolvePendingTriggers()

	for !stack.IsEmpty() {
		if _, err := stack.ResolveTop(); err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
	}

	// Alice is active: her trigger goes onto the stack first, so bob's
	// resolves first.
	if len(resolved) != 2 || resolved[0] != "bob" || resolved[1] != "alice" {
		t.Fatalf("expected resolution order [bob alice], got %v", resolved)
	}
}

func TestTriggerConditionFiltersFiring(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	tm.RegisterTrigger(&TriggeredAbility{
		Controller: "alice",
		EventType:  EventCreatureDied,
		Condition:  &TriggerCondition{CardType: "Creature", Colors: []string{"black"}},
		Effect:     func(Event) error { return nil },
	})

	event := NewEvent(EventCreatureDied, "perm-1", "", "alice")
	event.CardTypes = []string{"Creature"}
	event.Colors = []string{"white"}
	if fired := tm.FireTrigger(EventCreatureDied, event); fired != 0 {
		t.Fatalf("expected condition to filter the trigger, fired %d", fired)
	}

	event.Colors = []string{"black"}
	if fired := tm.FireTrigger(EventCreatureDied, event); fired != 1 {
		t.Fatalf("expected condition to pass, fired %d", fired)
	}
}

func TestTriggerTimesTriggeredCounts(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	ability := &TriggeredAbility{
		Controller: "alice",
		EventType:  EventSpellCast,
		Effect:     func(Event) error { return nil },
	}
	tm.RegisterTrigger(ability)

	tm.FireTrigger(EventSpellCast, NewEvent(EventSpellCast, "", "", "alice"))
	tm.FireTrigger(EventSpellCast, NewEvent(EventSpellCast, "", "", "alice"))
	if ability.TimesTriggered != 2 {
		t.Fatalf("expected TimesTriggered 2, got %d", ability.TimesTriggered)
	}
}

func TestUnregisterSourceRemovesTriggers(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	tm.RegisterTrigger(&TriggeredAbility{
		SourceID:   "perm-1",
		Controller: "alice",
		EventType:  EventCreatureDied,
		Effect:     func(Event) error { return nil },
	})
	tm.RegisterTrigger(&TriggeredAbility{
		SourceID:   "perm-2",
		Controller: "alice",
		EventType:  EventCreatureDied,
		Effect:     func(Event) error { return nil },
	})

	tm.UnregisterSource("perm-1")

	if fired := tm.FireTrigger(EventCreatureDied, NewEvent(EventCreatureDied, "", "", "alice")); fired != 1 {
		t.Fatalf("expected only perm-2's trigger to remain, fired %d", fired)
	}
}

func TestUnregisterTriggerByID(t *testing.T) {
	stack := NewStackManager()
	turns := newOrder(t, "alice", "bob")
	tm := NewTriggerManager(stack, turns, zaptest.NewLogger(t))

	id := tm.RegisterTrigger(&TriggeredAbility{
		Controller: "alice",
		EventType:  EventCreatureDied,
		Effect:     func(Event) error { return nil },
	})
	tm.UnregisterTrigger(id)

	if fired := tm.FireTrigger(EventCreatureDied, NewEvent(EventCreatureDied, "", "", "alice")); fired != 0 {
		t.Fatalf("expected no triggers after unregister, fired %d", fired)
	}
}
