package rules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TriggerCondition is an optional predicate set over event data. Evaluation
// short-circuits on the first failing check, in the order: controller match,
// card-type match, color-subset match, numeric power/toughness comparators,
// custom predicate.
type TriggerCondition struct {
	Controller   string
	CardType     string
	Colors       []string
	MinPower     *int
	MaxPower     *int
	MinToughness *int
	MaxToughness *int
	Custom       func(Event) bool
}

// Matches evaluates the condition against the event.
func (tc *TriggerCondition) Matches(event Event) bool {
	if tc == nil {
		return true
	}
	if tc.Controller != "" && tc.Controller != event.Controller {
		return false
	}
	if tc.CardType != "" && !containsFold(event.CardTypes, tc.CardType) {
		return false
	}
	for _, color := range tc.Colors {
		if !containsFold(event.Colors, color) {
			return false
		}
	}
	if tc.MinPower != nil && event.Power < *tc.MinPower {
		return false
	}
	if tc.MaxPower != nil && event.Power > *tc.MaxPower {
		return false
	}
	if tc.MinToughness != nil && event.Toughness < *tc.MinToughness {
		return false
	}
	if tc.MaxToughness != nil && event.Toughness > *tc.MaxToughness {
		return false
	}
	if tc.Custom != nil && !tc.Custom(event) {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// TriggeredAbility reacts to a specific event type and produces a stack item
// when its condition is satisfied.
type TriggeredAbility struct {
	ID             string
	SourceID       string
	Controller     string
	Description    string
	EventType      EventType
	Condition      *TriggerCondition
	Effect         func(Event) error
	Enabled        bool
	TimesTriggered int
}

// pendingTrigger is a fired trigger waiting to be put on the stack.
type pendingTrigger struct {
	ability *TriggeredAbility
	event   Event
}

// TriggerManager stores triggered abilities keyed by event type, batches the
// ones that fire, and pushes them to the stack in APNAP order.
type TriggerManager struct {
	mu       sync.Mutex
	stack    *StackManager
	turns    *TurnOrder
	logger   *zap.Logger
	triggers map[EventType]map[string]*TriggeredAbility
	bySource map[string][]string
	pending  []pendingTrigger
}

// NewTriggerManager creates an empty trigger manager wired to the stack and
// turn order.
func NewTriggerManager(stack *StackManager, turns *TurnOrder, logger *zap.Logger) *TriggerManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerManager{
		stack:    stack,
		turns:    turns,
		logger:   logger,
		triggers: make(map[EventType]map[string]*TriggeredAbility),
		bySource: make(map[string][]string),
	}
}

// RegisterTrigger adds a triggered ability and returns its id.
func (tm *TriggerManager) RegisterTrigger(ability *TriggeredAbility) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if ability.ID == "" {
		ability.ID = uuid.NewString()
	}
	ability.Enabled = true
	byID := tm.triggers[ability.EventType]
	if byID == nil {
		byID = make(map[string]*TriggeredAbility)
		tm.triggers[ability.EventType] = byID
	}
	byID[ability.ID] = ability
	if ability.SourceID != "" {
		tm.bySource[ability.SourceID] = append(tm.bySource[ability.SourceID], ability.ID)
	}
	return ability.ID
}

// UnregisterTrigger removes a trigger by id.
func (tm *TriggerManager) UnregisterTrigger(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, byID := range tm.triggers {
		delete(byID, id)
	}
}

// UnregisterSource removes every trigger registered for the given source
// permanent. Called when the permanent leaves play.
func (tm *TriggerManager) UnregisterSource(sourceID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, id := range tm.bySource[sourceID] {
		for _, byID := range tm.triggers {
			delete(byID, id)
		}
	}
	delete(tm.bySource, sourceID)
}

// FireTrigger evaluates every registered ability of the event's type against
// the event. Abilities that pass are appended to the pending queue; nothing
// reaches the stack until ResolvePendingTriggers.
func (tm *TriggerManager) FireTrigger(eventType EventType, event Event) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	event.Type = eventType
	fired := 0
	for _, ability := range tm.triggers[eventType] {
		if !ability.Enabled {
			continue
		}
		if !ability.Condition.Matches(event) {
			continue
		}
		ability.TimesTriggered++
		tm.pending = append(tm.pending, pendingTrigger{ability: ability, event: event})
		fired++
	}
	if fired > 0 {
		tm.logger.Debug("triggers fired",
			zap.String("event_type", string(eventType)),
			zap.Int("count", fired),
		)
	}
	return fired
}

// PendingCount returns the number of fired triggers not yet on the stack.
func (tm *TriggerManager) PendingCount() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.pending)
}

// ResolvePendingTriggers puts the pending batch on the stack in APNAP order:
// the active player's triggers are pushed first so that, the stack being
// last-in-first-out, non-active players' triggers resolve before the active
// player's. The pending queue is cleared.
func (tm *TriggerManager) ResolvePendingTriggers() int {
	tm.mu.Lock()
	batch := tm.pending
	tm.pending = nil
	active := tm.turns.ActivePlayer()
	tm.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	var activeOwned, nonActive []pendingTrigger
	for _, pt := range batch {
		if pt.ability.Controller == active {
			activeOwned = append(activeOwned, pt)
		} else {
			nonActive = append(nonActive, pt)
		}
	}

	pushed := 0
	for _, pt := range append(activeOwned, nonActive...) {
		tm.stack.Push(tm.buildStackItem(pt))
		pushed++
	}
	tm.logger.Debug("pending triggers pushed",
		zap.String("active_player", active),
		zap.Int("count", pushed),
	)
	return pushed
}

func (tm *TriggerManager) buildStackItem(pt pendingTrigger) StackItem {
	ability := pt.ability
	event := pt.event
	description := ability.Description
	if description == "" {
		description = fmt.Sprintf("Triggered ability of %s", ability.SourceID)
	}
	return StackItem{
		ID:          uuid.NewString(),
		Controller:  ability.Controller,
		Description: description,
		Kind:        StackItemKindTriggered,
		SourceID:    ability.SourceID,
		Resolve: func() error {
			if ability.Effect == nil {
				return nil
			}
			return ability.Effect(event)
		},
	}
}
