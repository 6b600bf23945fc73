package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn structure events
	EventBeginTurn    EventType = "BEGIN_TURN"
	EventEndTurn      EventType = "END_TURN"
	EventExtraTurn    EventType = "EXTRA_TURN"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventStepChanged  EventType = "STEP_CHANGED"

	// Step events
	EventUntapStep         EventType = "UNTAP_STEP"
	EventBeginningOfUpkeep EventType = "BEGINNING_OF_UPKEEP"
	EventDrawStep          EventType = "DRAW_STEP"
	EventEndStep           EventType = "END_STEP"
	EventCleanupStep       EventType = "CLEANUP_STEP"

	// Object events
	EventSpellCast          EventType = "SPELL_CAST"
	EventAbilityActivated   EventType = "ABILITY_ACTIVATED"
	EventTriggeredAbility   EventType = "TRIGGERED_ABILITY"
	EventStackItemResolved  EventType = "STACK_ITEM_RESOLVED"
	EventStackItemCountered EventType = "STACK_ITEM_COUNTERED"
	EventLandPlayed         EventType = "LAND_PLAYED"
	EventPermanentEntered   EventType = "PERMANENT_ENTERED"
	EventPermanentLeft      EventType = "PERMANENT_LEFT"
	EventCreatureDied       EventType = "CREATURE_DIED"
	EventAttackDeclared     EventType = "ATTACK_DECLARED"
	EventDamageDealt        EventType = "DAMAGE_DEALT"

	// Player events
	EventDrewCard   EventType = "DREW_CARD"
	EventLostLife   EventType = "LOST_LIFE"
	EventGainedLife EventType = "GAINED_LIFE"
	EventPlayerLost EventType = "PLAYER_LOST"
	EventPlayerWon  EventType = "PLAYER_WON"
)

// Event carries the data triggered abilities and watchers evaluate.
type Event struct {
	Type        EventType
	ID          string
	SourceID    string
	TargetID    string
	Controller  string
	PlayerID    string
	Amount      int
	CardTypes   []string
	Colors      []string
	Power       int
	Toughness   int
	Timestamp   time.Time
	Metadata    map[string]string
	Description string
}

// NewEvent constructs an event with a fresh id and timestamp.
func NewEvent(eventType EventType, sourceID, targetID, controller string) Event {
	return Event{
		Type:       eventType,
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Controller: controller,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listener failures are the listener's problem; publication is
// one-way and never reports errors back into the engine.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	general := make([]Listener, 0, len(bus.listeners))
	for _, l := range bus.listeners {
		general = append(general, l)
	}
	typed := append([]TypedListener(nil), bus.typedListeners[event.Type]...)
	bus.mu.RUnlock()

	for _, l := range general {
		l(event)
	}
	for _, tl := range typed {
		tl.Callback(event)
	}
}
