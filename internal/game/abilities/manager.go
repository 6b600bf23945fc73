package abilities

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// PlayerState exposes the player resources costs draw on. The engine
// implements it; the manager never mutates players directly.
type PlayerState interface {
	Pool(playerID string) *mana.Pool
	Life(playerID string) int
	LoseLife(playerID string, amount int)
	HandSize(playerID string) int
	DiscardFromEnd(playerID string, count int)
	GraveyardSize(playerID string) int
	ExileFromGraveyard(playerID string, count int)
}

// PermanentState exposes the battlefield queries cost payment needs.
type PermanentState interface {
	IsTapped(permanentID string) bool
	Tap(permanentID string)
	FindSacrifice(controllerID, cardType string) (string, bool)
	Sacrifice(permanentID string)
}

// Timing answers sorcery-speed legality; the phase manager implements it.
type Timing interface {
	CanPlaySorcery(playerID string) bool
}

// Manager tracks activated and static abilities bound to permanents,
// validates and pays activation costs, and routes activations onto the
// stack. Registries are keyed by permanent id; CleanupAbilities must be
// called when a permanent leaves play or its entries go stale.
type Manager struct {
	mu         sync.Mutex
	players    PlayerState
	permanents PermanentState
	timing     Timing
	stack      *rules.StackManager
	logger     *zap.Logger

	activated map[string][]*AbilityInstance
	statics   map[string][]*StaticAbility
	keywords  map[string]map[string]bool
	instances map[string]*AbilityInstance
}

// NewManager creates an ability manager wired to its collaborators.
func NewManager(players PlayerState, permanents PermanentState, timing Timing, stack *rules.StackManager, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		players:    players,
		permanents: permanents,
		timing:     timing,
		stack:      stack,
		logger:     logger,
		activated:  make(map[string][]*AbilityInstance),
		statics:    make(map[string][]*StaticAbility),
		keywords:   make(map[string]map[string]bool),
		instances:  make(map[string]*AbilityInstance),
	}
}

// RegisterAbility binds an activated ability to a permanent and returns the
// live instance.
func (m *Manager) RegisterAbility(permanentID, controllerID string, ability *ActivatedAbility) *AbilityInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	instance := &AbilityInstance{
		ID:          uuid.NewString(),
		Ability:     ability,
		PermanentID: permanentID,
		Controller:  controllerID,
		IsActive:    true,
	}
	m.activated[permanentID] = append(m.activated[permanentID], instance)
	m.instances[instance.ID] = instance
	return instance
}

// RegisterStatic adds a static ability to the registry.
func (m *Manager) RegisterStatic(ability *StaticAbility) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ability.ID == "" {
		ability.ID = uuid.NewString()
	}
	if ability.Layer < 1 || ability.Layer > 7 {
		ability.Layer = 7
	}
	m.statics[ability.SourceID] = append(m.statics[ability.SourceID], ability)
	return ability.ID
}

// GrantKeyword adds a keyword ability to the permanent's keyword set.
func (m *Manager) GrantKeyword(permanentID, keyword string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.keywords[permanentID]
	if set == nil {
		set = make(map[string]bool)
		m.keywords[permanentID] = set
	}
	set[strings.ToLower(keyword)] = true
}

// HasKeyword reports whether the permanent has the keyword.
func (m *Manager) HasKeyword(permanentID, keyword string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keywords[permanentID][strings.ToLower(keyword)]
}

// Abilities returns the activated-ability instances bound to a permanent.
func (m *Manager) Abilities(permanentID string) []*AbilityInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*AbilityInstance(nil), m.activated[permanentID]...)
}

// Instance looks up a live instance by id.
func (m *Manager) Instance(id string) (*AbilityInstance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// CanActivate checks timing, tap-state and cost payability. A nil result
// means the ability may be activated; otherwise the error says why not.
// Nothing is mutated.
func (m *Manager) CanActivate(instance *AbilityInstance) error {
	if instance == nil || instance.Ability == nil {
		panic("abilities: CanActivate on nil instance")
	}
	if !instance.IsActive {
		return fmt.Errorf("ability %s is not active", instance.Ability.Name)
	}
	ability := instance.Ability

	if ability.Speed == SorcerySpeed && !m.timing.CanPlaySorcery(instance.Controller) {
		return fmt.Errorf("ability %s may only be activated at sorcery speed", ability.Name)
	}
	if ability.Cost.RequiresTap && m.permanents.IsTapped(instance.PermanentID) {
		return fmt.Errorf("source of %s is already tapped", ability.Name)
	}
	return m.checkCost(instance)
}

func (m *Manager) checkCost(instance *AbilityInstance) error {
	ability := instance.Ability
	controller := instance.Controller
	cost := ability.Cost

	if cost.Mana != "" {
		parsed, err := mana.ParseCost(cost.Mana)
		if err != nil {
			return fmt.Errorf("invalid mana cost for %s: %w", ability.Name, err)
		}
		if !m.players.Pool(controller).CanPay(parsed) {
			return fmt.Errorf("insufficient mana for %s", ability.Name)
		}
	}
	// A player cannot spend down to zero or below.
	if cost.Life > 0 && m.players.Life(controller) < cost.Life+1 {
		return fmt.Errorf("insufficient life for %s", ability.Name)
	}
	if cost.DiscardCount > 0 && m.players.HandSize(controller) < cost.DiscardCount {
		return fmt.Errorf("insufficient cards in hand for %s", ability.Name)
	}
	if cost.SacrificeType != "" {
		if _, ok := m.permanents.FindSacrifice(controller, cost.SacrificeType); !ok {
			return fmt.Errorf("no %s to sacrifice for %s", cost.SacrificeType, ability.Name)
		}
	}
	if cost.ExileFromGraveyard > 0 && m.players.GraveyardSize(controller) < cost.ExileFromGraveyard {
		return fmt.Errorf("insufficient cards in graveyard for %s", ability.Name)
	}
	for _, hook := range cost.Hooks {
		if hook.CanPay != nil && !hook.CanPay(controller) {
			return fmt.Errorf("cannot pay %s for %s", hook.Description, ability.Name)
		}
	}
	return nil
}

// Activate pays the full cost atomically and then either resolves the
// effect immediately (mana abilities) or puts the ability on the stack. On
// failure nothing is paid and no state changes.
func (m *Manager) Activate(instance *AbilityInstance, targets []string) error {
	if err := m.CanActivate(instance); err != nil {
		return err
	}
	ability := instance.Ability
	if len(targets) < ability.TargetsRequired {
		return fmt.Errorf("ability %s requires %d targets, got %d", ability.Name, ability.TargetsRequired, len(targets))
	}

	m.payCost(instance)
	instance.ActivationsThisTurn++

	m.logger.Debug("ability activated",
		zap.String("ability", ability.Name),
		zap.String("permanent", instance.PermanentID),
		zap.String("controller", instance.Controller),
		zap.Bool("mana_ability", ability.IsManaAbility),
	)

	// Mana abilities resolve immediately and bypass the stack.
	if ability.IsManaAbility {
		if ability.Effect == nil {
			return nil
		}
		return ability.Effect(instance.Controller, targets)
	}

	controller := instance.Controller
	boundTargets := append([]string(nil), targets...)
	m.stack.Push(rules.StackItem{
		ID:          uuid.NewString(),
		Controller:  controller,
		Description: fmt.Sprintf("%s activates %s", controller, ability.Name),
		Kind:        rules.StackItemKindActivated,
		SourceID:    instance.PermanentID,
		Targets:     boundTargets,
		Resolve: func() error {
			if ability.Effect == nil {
				return nil
			}
			return ability.Effect(controller, boundTargets)
		},
	})
	return nil
}

// payCost pays the already-validated cost in the fixed order: mana, life,
// tap, discard, sacrifice, exile, then extra hooks.
func (m *Manager) payCost(instance *AbilityInstance) {
	ability := instance.Ability
	controller := instance.Controller
	cost := ability.Cost

	if cost.Mana != "" {
		m.players.Pool(controller).Pay(mana.MustParseCost(cost.Mana))
	}
	if cost.Life > 0 {
		m.players.LoseLife(controller, cost.Life)
	}
	if cost.RequiresTap {
		m.permanents.Tap(instance.PermanentID)
	}
	if cost.DiscardCount > 0 {
		m.players.DiscardFromEnd(controller, cost.DiscardCount)
	}
	if cost.SacrificeType != "" {
		if id, ok := m.permanents.FindSacrifice(controller, cost.SacrificeType); ok {
			m.permanents.Sacrifice(id)
		}
	}
	if cost.ExileFromGraveyard > 0 {
		m.players.ExileFromGraveyard(controller, cost.ExileFromGraveyard)
	}
	for _, hook := range cost.Hooks {
		if hook.Pay != nil {
			hook.Pay(controller)
		}
	}
}

// ApplyStaticEffects invokes every registered static ability that applies to
// the target, in ascending layer order.
func (m *Manager) ApplyStaticEffects(targetID string) int {
	m.mu.Lock()
	all := make([]*StaticAbility, 0, len(m.statics))
	for _, list := range m.statics {
		all = append(all, list...)
	}
	m.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].Layer < all[j].Layer })

	applied := 0
	for _, static := range all {
		if static.Effect == nil || !static.Applies(targetID) {
			continue
		}
		static.Effect(targetID)
		applied++
	}
	return applied
}

// CleanupAbilities purges every registry entry for the permanent: keyword
// set, activated instances and static abilities. Must be called whenever a
// permanent leaves play; stale entries otherwise keep applying.
func (m *Manager) CleanupAbilities(permanentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, instance := range m.activated[permanentID] {
		instance.IsActive = false
		delete(m.instances, instance.ID)
	}
	delete(m.activated, permanentID)
	delete(m.statics, permanentID)
	delete(m.keywords, permanentID)
}

// ResetTurnCounters zeroes every instance's per-turn activation counter.
// Runs once per turn, at the untap step.
func (m *Manager) ResetTurnCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, instance := range m.instances {
		instance.ActivationsThisTurn = 0
	}
}
