package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/magefree/mage-rules-go/internal/game/abilities"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/multiplayer"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// PermanentSpec describes a permanent to put directly onto the battlefield.
type PermanentSpec struct {
	ID           string
	Name         string
	Types        []string
	Colors       []string
	Power        int
	Toughness    int
	ControllerID string
	Tapped       bool
	DoesntUntap  bool
}

// AddPermanent puts a permanent onto the battlefield and returns its id.
func (e *GameEngine) AddPermanent(spec PermanentSpec) string {
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	perm := &Permanent{
		ID:            id,
		Name:          spec.Name,
		Types:         append([]string(nil), spec.Types...),
		Colors:        append([]string(nil), spec.Colors...),
		BasePower:     spec.Power,
		BaseToughness: spec.Toughness,
		Power:         spec.Power,
		Toughness:     spec.Toughness,
		Tapped:        spec.Tapped,
		DoesntUntap:   spec.DoesntUntap,
		ControllerID:  spec.ControllerID,
		OwnerID:       spec.ControllerID,
	}
	e.permanents[id] = perm
	e.battlefield = append(e.battlefield, id)

	event := rules.NewEvent(rules.EventPermanentEntered, id, "", spec.ControllerID)
	event.CardTypes = perm.Types
	event.Colors = perm.Colors
	event.Power = perm.Power
	event.Toughness = perm.Toughness
	e.bus.Publish(event)
	e.triggers.FireTrigger(rules.EventPermanentEntered, event)
	e.triggers.ResolvePendingTriggers()
	return id
}

// AddCardToHand puts a card into the player's hand and returns it.
func (e *GameEngine) AddCardToHand(playerID string, card *Card) *Card {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	e.players[playerID].Hand = append(e.players[playerID].Hand, card)
	return card
}

// AddCardToLibrary puts a card on the bottom of the player's library.
func (e *GameEngine) AddCardToLibrary(playerID string, card *Card) *Card {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	e.players[playerID].Library = append(e.players[playerID].Library, card)
	return card
}

// CastSpell pays the card's mana cost and puts it on the stack. Sorceries
// and permanents respect sorcery-speed timing; instants only need the card
// in hand and a payable cost. Failures leave every zone and the pool
// untouched.
func (e *GameEngine) CastSpell(playerID, cardID string, targets []string) error {
	return e.castFromHand(playerID, cardID, targets, 0)
}

// CastCommander casts the player's commander from the command zone,
// applying commander tax as additional generic mana.
func (e *GameEngine) CastCommander(playerID string, targets []string) error {
	ci, ok := e.multiplayer.Commander(playerID)
	if !ok {
		return fmt.Errorf("player %s has no commander", playerID)
	}
	if !ci.InCommandZone {
		return fmt.Errorf("commander of %s is not in the command zone", playerID)
	}

	player := e.players[playerID]
	var card *Card
	var cmdIdx int
	for i, c := range player.Command {
		if c.ID == ci.CardID {
			card = c
			cmdIdx = i
			break
		}
	}
	if card == nil {
		return fmt.Errorf("commander card %s not in command zone", ci.CardID)
	}

	// Peek at the tax without paying yet; the cast only counts once the
	// cost is actually paid.
	tax := ci.TimesCast * multiplayer.CommanderTaxStep
	if err := e.castCard(playerID, card, targets, tax); err != nil {
		return err
	}
	player.Command = append(player.Command[:cmdIdx], player.Command[cmdIdx+1:]...)
	if _, err := e.multiplayer.CastCommander(playerID); err != nil {
		return err
	}
	return nil
}

// AddCommander registers the card as the player's commander and puts it in
// the command zone. The card's colors double as its color identity.
func (e *GameEngine) AddCommander(playerID string, card *Card) (*Card, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if err := e.multiplayer.RegisterCommander(playerID, card.ID, card.Name, card.Colors); err != nil {
		return nil, err
	}
	e.players[playerID].Command = append(e.players[playerID].Command, card)
	return card, nil
}

func (e *GameEngine) castFromHand(playerID, cardID string, targets []string, extraGeneric int) error {
	player, ok := e.players[playerID]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	var card *Card
	for _, c := range player.Hand {
		if c.ID == cardID {
			card = c
			break
		}
	}
	if card == nil {
		return fmt.Errorf("card %s not in hand of %s", cardID, playerID)
	}
	return e.castCard(playerID, card, targets, extraGeneric)
}

func (e *GameEngine) castCard(playerID string, card *Card, targets []string, extraGeneric int) error {
	if card.IsType("land") {
		return fmt.Errorf("lands are played, not cast")
	}
	sorcerySpeed := card.IsType("sorcery") || card.IsPermanentType()
	if sorcerySpeed && !e.phases.CanPlaySorcery(playerID) {
		return fmt.Errorf("%s cannot be cast at this time", card.Name)
	}

	cost, err := mana.ParseCost(card.ManaCost)
	if err != nil {
		return fmt.Errorf("invalid mana cost on %s: %w", card.Name, err)
	}
	cost.Generic += extraGeneric

	player := e.players[playerID]
	if !player.ManaPool.Pay(cost) {
		return fmt.Errorf("insufficient mana to cast %s", card.Name)
	}

	e.removeFromHand(player, card.ID)

	cardCopy := card
	e.stack.Push(rules.StackItem{
		ID:          uuid.NewString(),
		Controller:  playerID,
		Description: fmt.Sprintf("%s casts %s", playerID, card.Name),
		Kind:        rules.StackItemKindSpell,
		SourceID:    card.ID,
		Targets:     append([]string(nil), targets...),
		Resolve: func() error {
			return e.resolveSpell(playerID, cardCopy)
		},
	})
	e.addMessage(fmt.Sprintf("%s casts %s", playerID, card.Name), "action")

	event := rules.NewEvent(rules.EventSpellCast, card.ID, "", playerID)
	event.CardTypes = card.Types
	event.Colors = card.Colors
	event.Power = card.Power
	event.Toughness = card.Toughness
	e.bus.Publish(event)
	e.triggers.FireTrigger(rules.EventSpellCast, event)
	e.triggers.ResolvePendingTriggers()
	return nil
}

// resolveSpell moves a resolved spell to its destination zone: permanents
// to the battlefield, instants and sorceries to the graveyard.
func (e *GameEngine) resolveSpell(playerID string, card *Card) error {
	if card.IsPermanentType() {
		e.AddPermanent(PermanentSpec{
			Name:         card.Name,
			Types:        card.Types,
			Colors:       card.Colors,
			Power:        card.Power,
			Toughness:    card.Toughness,
			ControllerID: playerID,
		})
		return nil
	}
	e.players[playerID].Graveyard = append(e.players[playerID].Graveyard, card)
	return nil
}

// PlayLand moves a land from hand to the battlefield, consuming the per-turn
// land-play budget. Playing a land does not use the stack.
func (e *GameEngine) PlayLand(playerID, cardID string) error {
	if !e.phases.CanPlayLand(playerID) {
		return fmt.Errorf("%s cannot play a land now", playerID)
	}
	player := e.players[playerID]
	var card *Card
	for _, c := range player.Hand {
		if c.ID == cardID {
			card = c
			break
		}
	}
	if card == nil {
		return fmt.Errorf("card %s not in hand of %s", cardID, playerID)
	}
	if !card.IsType("land") {
		return fmt.Errorf("%s is not a land", card.Name)
	}

	e.removeFromHand(player, card.ID)
	player.LandsPlayedThisTurn++
	e.AddPermanent(PermanentSpec{
		Name:         card.Name,
		Types:        card.Types,
		Colors:       card.Colors,
		ControllerID: playerID,
	})
	e.addMessage(fmt.Sprintf("%s plays %s", playerID, card.Name), "action")

	event := rules.NewEvent(rules.EventLandPlayed, card.ID, "", playerID)
	e.bus.Publish(event)
	e.triggers.FireTrigger(rules.EventLandPlayed, event)
	e.triggers.ResolvePendingTriggers()
	return nil
}

// ResolveTopOfStack resolves the top stack item, queues and pushes any
// triggers its resolution fired, then applies state-based actions. New
// triggers reach the stack only after the resolution completes, never
// mid-effect.
func (e *GameEngine) ResolveTopOfStack() (rules.StackItem, error) {
	item, err := e.stack.ResolveTop()
	if err != nil {
		e.addMessage(fmt.Sprintf("Error resolving %s: %v", item.Description, err), "action")
	} else {
		e.addMessage(fmt.Sprintf("%s resolves", item.Description), "action")
	}

	resolved := rules.NewEvent(rules.EventStackItemResolved, item.SourceID, item.ID, item.Controller)
	resolved.Description = fmt.Sprintf("%s resolved", item.Description)
	e.bus.Publish(resolved)

	e.triggers.ResolvePendingTriggers()
	e.CheckStateBasedActions()
	return item, err
}

// CounterTopOfStack removes the top stack item without resolving it.
func (e *GameEngine) CounterTopOfStack() (rules.StackItem, bool) {
	item, ok := e.stack.CounterTop()
	if !ok {
		return item, false
	}
	e.addMessage(fmt.Sprintf("%s is countered", item.Description), "action")
	event := rules.NewEvent(rules.EventStackItemCountered, item.SourceID, item.ID, item.Controller)
	event.Description = fmt.Sprintf("%s countered", item.Description)
	e.bus.Publish(event)
	return item, true
}

// ResolveStack resolves the whole stack top down, including anything pushed
// along the way.
func (e *GameEngine) ResolveStack() error {
	for !e.stack.IsEmpty() {
		if _, err := e.ResolveTopOfStack(); err != nil {
			return err
		}
	}
	return nil
}

// ActivateAbility activates a registered ability instance by id.
func (e *GameEngine) ActivateAbility(instanceID string, targets []string) error {
	instance, ok := e.abilities.Instance(instanceID)
	if !ok {
		return fmt.Errorf("ability instance %s not found", instanceID)
	}
	if err := e.abilities.Activate(instance, targets); err != nil {
		return err
	}
	event := rules.NewEvent(rules.EventAbilityActivated, instance.PermanentID, "", instance.Controller)
	event.Description = fmt.Sprintf("%s activates %s", instance.Controller, instance.Ability.Name)
	e.bus.Publish(event)
	return nil
}

// DealDamageToPlayer deals non-combat damage to a player, routed through
// the multiplayer layer so shared life pools apply.
func (e *GameEngine) DealDamageToPlayer(targetID string, amount int) {
	e.multiplayer.DealDamage(targetID, amount)
	event := rules.NewEvent(rules.EventDamageDealt, "", targetID, "")
	event.Amount = amount
	e.bus.Publish(event)
	e.triggers.FireTrigger(rules.EventDamageDealt, event)
	e.triggers.ResolvePendingTriggers()
	e.CheckStateBasedActions()
}

// DealCombatDamage deals combat damage from a permanent to a player. Damage
// from a commander also accumulates toward the 21-damage threshold.
func (e *GameEngine) DealCombatDamage(attackerID, targetPlayerID string, amount int) error {
	perm, ok := e.permanents[attackerID]
	if !ok {
		return fmt.Errorf("permanent %s not found", attackerID)
	}
	if ci, hasCommander := e.multiplayer.Commander(perm.ControllerID); hasCommander && ci.CardName == perm.Name {
		if err := e.multiplayer.DealCommanderDamage(perm.ControllerID, targetPlayerID, amount); err != nil {
			return err
		}
	} else {
		e.multiplayer.DealDamage(targetPlayerID, amount)
	}

	event := rules.NewEvent(rules.EventDamageDealt, attackerID, targetPlayerID, perm.ControllerID)
	event.Amount = amount
	e.bus.Publish(event)
	e.triggers.FireTrigger(rules.EventDamageDealt, event)
	e.triggers.ResolvePendingTriggers()
	e.CheckStateBasedActions()
	return nil
}

// DealDamageToPermanent marks damage on a permanent. Lethal damage is
// detected by state-based actions, not here.
func (e *GameEngine) DealDamageToPermanent(permanentID string, amount int) {
	if perm, ok := e.permanents[permanentID]; ok && amount > 0 {
		perm.Damage += amount
	}
	e.CheckStateBasedActions()
}

// DestroyPermanent moves a permanent to its owner's graveyard and fires the
// appropriate died trigger for creatures.
func (e *GameEngine) DestroyPermanent(permanentID string) {
	perm, ok := e.permanents[permanentID]
	if !ok {
		return
	}
	isCreature := perm.IsType("creature")
	controller := perm.ControllerID
	event := rules.NewEvent(rules.EventCreatureDied, permanentID, "", controller)
	event.CardTypes = perm.Types
	event.Colors = perm.Colors
	event.Power = perm.Power
	event.Toughness = perm.Toughness

	e.removeFromBattlefield(permanentID, "loses")

	if isCreature {
		e.bus.Publish(event)
		e.triggers.FireTrigger(rules.EventCreatureDied, event)
		e.triggers.ResolvePendingTriggers()
	}
}

// CheckStateBasedActions applies automatic game-state corrections until the
// state is stable: players at zero life or flagged as lost leave the turn
// order, creatures with lethal damage die. Loss conditions are data consumed
// here, never control flow.
func (e *GameEngine) CheckStateBasedActions() {
	for {
		acted := false

		for _, id := range e.playerOrder {
			player := e.players[id]
			if player.Life <= 0 && !player.Lost {
				e.MarkLost(id)
				acted = true
			}
			if player.Lost && e.turns.Contains(id) && e.turns.PlayerCount() > 1 {
				e.multiplayer.EliminatePlayer(id)
				acted = true
			}
		}

		for _, id := range append([]string(nil), e.battlefield...) {
			perm := e.permanents[id]
			if perm == nil || !perm.IsType("creature") {
				continue
			}
			if perm.Toughness <= 0 || perm.Damage >= perm.Toughness {
				e.DestroyPermanent(id)
				acted = true
			}
		}

		if !acted {
			return
		}
	}
}

// RefreshPermanent recomputes a permanent's characteristics from its base
// values plus registered static abilities.
func (e *GameEngine) RefreshPermanent(permanentID string) {
	perm, ok := e.permanents[permanentID]
	if !ok {
		return
	}
	perm.Power = perm.BasePower
	perm.Toughness = perm.BaseToughness
	e.abilities.ApplyStaticEffects(permanentID)
}

// RegisterFirebreathing is a convenience for the common "{R}: +1/+0 until
// end of turn" activated ability.
func (e *GameEngine) RegisterFirebreathing(permanentID string) *abilities.AbilityInstance {
	perm := e.permanents[permanentID]
	return e.abilities.RegisterAbility(permanentID, perm.ControllerID, &abilities.ActivatedAbility{
		Name:  fmt.Sprintf("%s: +1/+0", perm.Name),
		Cost:  abilities.Cost{Mana: "{R}"},
		Speed: abilities.InstantSpeed,
		Effect: func(controllerID string, targets []string) error {
			if p, ok := e.permanents[permanentID]; ok {
				p.Power++
			}
			return nil
		},
	})
}

// IsGameOver reports whether the game has ended.
func (e *GameEngine) IsGameOver() bool {
	return e.multiplayer.IsGameOver()
}

// Winner returns the winning player or team id once the game is over.
func (e *GameEngine) Winner() (string, bool) {
	return e.multiplayer.Winner()
}

func (e *GameEngine) removeFromHand(player *Player, cardID string) {
	for i, c := range player.Hand {
		if c.ID == cardID {
			player.Hand = append(player.Hand[:i], player.Hand[i+1:]...)
			return
		}
	}
}
