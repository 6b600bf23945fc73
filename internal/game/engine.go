package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/abilities"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/multiplayer"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// GameEngine wires the rules components together and owns the game objects:
// players, zones and the battlefield arena. It is the surface a host
// game-session driver talks to. The engine is single-threaded: every state
// transition happens synchronously inside an explicit call.
type GameEngine struct {
	logger *zap.Logger

	mode        multiplayer.GameMode
	players     map[string]*Player
	playerOrder []string
	permanents  map[string]*Permanent
	battlefield []string

	stack       *rules.StackManager
	turns       *rules.TurnOrder
	phases      *rules.PhaseManager
	triggers    *rules.TriggerManager
	abilities   *abilities.Manager
	multiplayer *multiplayer.Manager
	bus         *rules.EventBus

	messages []Message
}

// NewGameEngine builds an engine for the given mode and players. Player
// order is seating order; the first player takes the first turn.
func NewGameEngine(mode multiplayer.GameMode, playerIDs []string, logger *zap.Logger) (*GameEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &GameEngine{
		logger:      logger,
		mode:        mode,
		players:     make(map[string]*Player),
		playerOrder: append([]string(nil), playerIDs...),
		permanents:  make(map[string]*Permanent),
		messages:    make([]Message, 0, 64),
	}
	for _, id := range playerIDs {
		if _, exists := e.players[id]; exists {
			return nil, fmt.Errorf("duplicate player id %q", id)
		}
		e.players[id] = &Player{
			ID:             id,
			ManaPool:       mana.NewPool(),
			LandPlayBudget: 1,
		}
	}

	e.multiplayer = multiplayer.NewManager(mode, e, logger)
	if err := e.multiplayer.SetupGame(playerIDs); err != nil {
		return nil, err
	}
	e.turns = e.multiplayer.TurnOrder()

	e.stack = rules.NewStackManager()
	e.bus = rules.NewEventBus()
	e.triggers = rules.NewTriggerManager(e.stack, e.turns, logger)
	e.phases = rules.NewPhaseManager(e.turns, e.stack, e.triggers, e, e.bus, logger)
	e.abilities = abilities.NewManager(e, e, e.phases, e.stack, logger)

	// The event bus doubles as the log sink; sink failures never propagate.
	e.bus.Subscribe(func(event rules.Event) {
		if event.Description != "" {
			e.addMessage(event.Description, "event")
		}
	})

	return e, nil
}

// Accessors for the engine's components. The host drives the game through
// these plus the action methods.

func (e *GameEngine) Stack() *rules.StackManager        { return e.stack }
func (e *GameEngine) Turns() *rules.TurnOrder           { return e.turns }
func (e *GameEngine) Phases() *rules.PhaseManager       { return e.phases }
func (e *GameEngine) Triggers() *rules.TriggerManager   { return e.triggers }
func (e *GameEngine) Abilities() *abilities.Manager     { return e.abilities }
func (e *GameEngine) Multiplayer() *multiplayer.Manager { return e.multiplayer }
func (e *GameEngine) Events() *rules.EventBus           { return e.bus }

// Player returns a player by id.
func (e *GameEngine) Player(playerID string) (*Player, bool) {
	p, ok := e.players[playerID]
	return p, ok
}

// Permanent returns a battlefield permanent by id.
func (e *GameEngine) Permanent(permanentID string) (*Permanent, bool) {
	p, ok := e.permanents[permanentID]
	return p, ok
}

// Battlefield returns the battlefield permanents in entry order.
func (e *GameEngine) Battlefield() []*Permanent {
	out := make([]*Permanent, 0, len(e.battlefield))
	for _, id := range e.battlefield {
		if p, ok := e.permanents[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// StartGame begins the first turn.
func (e *GameEngine) StartGame() {
	e.addMessage("Game started", "action")
	e.phases.StartTurn(e.turns.ActivePlayer())
}

// NextStep advances the turn structure by one step.
func (e *GameEngine) NextStep() (rules.Phase, rules.Step) {
	return e.phases.NextStep()
}

// Messages returns a copy of the game log.
func (e *GameEngine) Messages() []Message {
	cpy := make([]Message, len(e.messages))
	copy(cpy, e.messages)
	return cpy
}

func (e *GameEngine) addMessage(text, category string) {
	e.messages = append(e.messages, Message{
		Text:      text,
		Category:  category,
		Timestamp: time.Now(),
	})
}

// --- rules.PhaseHost ---

// UntapPermanents untaps everything the player controls except permanents
// flagged as not untapping.
func (e *GameEngine) UntapPermanents(playerID string) {
	for _, id := range e.battlefield {
		perm := e.permanents[id]
		if perm.ControllerID != playerID || perm.DoesntUntap {
			continue
		}
		perm.Tapped = false
	}
}

// DrawCard moves the top card of the library into the hand. Drawing from an
// empty library sets the player's has-lost flag; it is game state, not an
// error.
func (e *GameEngine) DrawCard(playerID string) {
	player := e.players[playerID]
	if len(player.Library) == 0 {
		e.MarkLost(playerID)
		e.addMessage(fmt.Sprintf("%s tries to draw from an empty library", playerID), "action")
		return
	}
	card := player.Library[0]
	player.Library = player.Library[1:]
	player.Hand = append(player.Hand, card)
	event := rules.NewEvent(rules.EventDrewCard, card.ID, "", playerID)
	event.Description = fmt.Sprintf("%s draws a card", playerID)
	e.bus.Publish(event)
}

// DiscardToHandSize discards from the end of the hand down to the limit.
func (e *GameEngine) DiscardToHandSize(playerID string, maxHand int) {
	player := e.players[playerID]
	for len(player.Hand) > maxHand {
		idx := len(player.Hand) - 1
		card := player.Hand[idx]
		player.Hand = player.Hand[:idx]
		player.Graveyard = append(player.Graveyard, card)
		e.addMessage(fmt.Sprintf("%s discards %s", playerID, card.Name), "action")
	}
}

// ClearDamage clears damage marked on all permanents.
func (e *GameEngine) ClearDamage() {
	for _, perm := range e.permanents {
		perm.Damage = 0
	}
}

// EmptyManaPools empties every player's mana pool.
func (e *GameEngine) EmptyManaPools() {
	for _, player := range e.players {
		player.ManaPool.Empty()
	}
}

// ResetTurnCounters zeroes per-turn tracking at the untap step: ability
// activation counters and land plays.
func (e *GameEngine) ResetTurnCounters(playerID string) {
	e.abilities.ResetTurnCounters()
	for _, player := range e.players {
		player.LandsPlayedThisTurn = 0
	}
}

// LandPlayAvailable reports whether the player still has land plays left
// this turn.
func (e *GameEngine) LandPlayAvailable(playerID string) bool {
	player, ok := e.players[playerID]
	if !ok {
		return false
	}
	return player.LandsPlayedThisTurn < player.LandPlayBudget
}

// --- abilities.PlayerState ---

// Pool returns the player's mana pool.
func (e *GameEngine) Pool(playerID string) *mana.Pool {
	return e.players[playerID].ManaPool
}

// Life returns the player's life total.
func (e *GameEngine) Life(playerID string) int {
	return e.players[playerID].Life
}

// LoseLife reduces the player's life as a cost or effect. Loss detection
// happens in CheckStateBasedActions, not here.
func (e *GameEngine) LoseLife(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	player := e.players[playerID]
	player.Life -= amount
	event := rules.NewEvent(rules.EventLostLife, "", playerID, playerID)
	event.Amount = amount
	event.Description = fmt.Sprintf("%s loses %d life (now %d)", playerID, amount, player.Life)
	e.bus.Publish(event)
}

// HandSize returns the number of cards in the player's hand.
func (e *GameEngine) HandSize(playerID string) int {
	return len(e.players[playerID].Hand)
}

// DiscardFromEnd discards count cards from the end of the player's hand.
func (e *GameEngine) DiscardFromEnd(playerID string, count int) {
	player := e.players[playerID]
	for i := 0; i < count && len(player.Hand) > 0; i++ {
		idx := len(player.Hand) - 1
		card := player.Hand[idx]
		player.Hand = player.Hand[:idx]
		player.Graveyard = append(player.Graveyard, card)
	}
}

// GraveyardSize returns the number of cards in the player's graveyard.
func (e *GameEngine) GraveyardSize(playerID string) int {
	return len(e.players[playerID].Graveyard)
}

// ExileFromGraveyard exiles count cards from the end of the graveyard.
func (e *GameEngine) ExileFromGraveyard(playerID string, count int) {
	player := e.players[playerID]
	for i := 0; i < count && len(player.Graveyard) > 0; i++ {
		idx := len(player.Graveyard) - 1
		card := player.Graveyard[idx]
		player.Graveyard = player.Graveyard[:idx]
		player.Exile = append(player.Exile, card)
	}
}

// --- abilities.PermanentState ---

// IsTapped reports whether the permanent is tapped.
func (e *GameEngine) IsTapped(permanentID string) bool {
	perm, ok := e.permanents[permanentID]
	return ok && perm.Tapped
}

// Tap taps the permanent.
func (e *GameEngine) Tap(permanentID string) {
	if perm, ok := e.permanents[permanentID]; ok {
		perm.Tapped = true
	}
}

// FindSacrifice returns a permanent of the given card type controlled by
// the player, if any. "any" matches every permanent.
func (e *GameEngine) FindSacrifice(controllerID, cardType string) (string, bool) {
	for _, id := range e.battlefield {
		perm := e.permanents[id]
		if perm.ControllerID != controllerID {
			continue
		}
		if cardType == "any" || perm.IsType(cardType) {
			return id, true
		}
	}
	return "", false
}

// Sacrifice moves the permanent to its owner's graveyard.
func (e *GameEngine) Sacrifice(permanentID string) {
	e.removeFromBattlefield(permanentID, "sacrifices")
}

// --- multiplayer.Roster ---

// SetLife sets the player's life total.
func (e *GameEngine) SetLife(playerID string, life int) {
	e.players[playerID].Life = life
}

// MarkLost sets the player's has-lost flag.
func (e *GameEngine) MarkLost(playerID string) {
	player := e.players[playerID]
	if player.Lost {
		return
	}
	player.Lost = true
	event := rules.NewEvent(rules.EventPlayerLost, "", playerID, playerID)
	event.Description = fmt.Sprintf("%s has lost the game", playerID)
	e.bus.Publish(event)
}

// HasLost reports the player's has-lost flag.
func (e *GameEngine) HasLost(playerID string) bool {
	player, ok := e.players[playerID]
	return ok && player.Lost
}

// removeFromBattlefield takes the permanent out of play, purges its ability
// and trigger registrations, and records it in the owner's graveyard as a
// card.
func (e *GameEngine) removeFromBattlefield(permanentID, verb string) {
	perm, ok := e.permanents[permanentID]
	if !ok {
		return
	}
	for i, id := range e.battlefield {
		if id == permanentID {
			e.battlefield = append(e.battlefield[:i], e.battlefield[i+1:]...)
			break
		}
	}
	delete(e.permanents, permanentID)

	// Registries must not keep stale entries for objects that left play.
	e.abilities.CleanupAbilities(permanentID)
	e.triggers.UnregisterSource(permanentID)

	owner := e.players[perm.OwnerID]
	if owner != nil {
		owner.Graveyard = append(owner.Graveyard, &Card{
			ID:        uuid.NewString(),
			Name:      perm.Name,
			Types:     perm.Types,
			Colors:    perm.Colors,
			Power:     perm.BasePower,
			Toughness: perm.BaseToughness,
		})
	}

	e.addMessage(fmt.Sprintf("%s %s %s", perm.ControllerID, verb, perm.Name), "action")
	event := rules.NewEvent(rules.EventPermanentLeft, permanentID, "", perm.ControllerID)
	event.CardTypes = perm.Types
	event.Colors = perm.Colors
	event.Power = perm.Power
	event.Toughness = perm.Toughness
	e.bus.Publish(event)
}
