package abilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// fakeWorld implements PlayerState, PermanentState and Timing for tests.
type fakeWorld struct {
	pools       map[string]*mana.Pool
	life        map[string]int
	hands       map[string]int
	graveyards  map[string]int
	tapped      map[string]bool
	sacrificial map[string]string // cardType -> permanent id
	sacrificed  []string
	discarded   int
	exiled      int
	sorceryOK   bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		pools:       map[string]*mana.Pool{"alice": mana.NewPool(), "bob": mana.NewPool()},
		life:        map[string]int{"alice": 20, "bob": 20},
		hands:       map[string]int{"alice": 3, "bob": 3},
		graveyards:  map[string]int{},
		tapped:      map[string]bool{},
		sacrificial: map[string]string{},
		sorceryOK:   true,
	}
}

func (w *fakeWorld) Pool(playerID string) *mana.Pool { return w.pools[playerID] }
func (w *fakeWorld) Life(playerID string) int        { return w.life[playerID] }
func (w *fakeWorld) LoseLife(playerID string, amount int) {
	w.life[playerID] -= amount
}
func (w *fakeWorld) HandSize(playerID string) int { return w.hands[playerID] }
func (w *fakeWorld) DiscardFromEnd(playerID string, count int) {
	w.hands[playerID] -= count
	w.discarded += count
}
func (w *fakeWorld) GraveyardSize(playerID string) int { return w.graveyards[playerID] }
func (w *fakeWorld) ExileFromGraveyard(playerID string, count int) {
	w.graveyards[playerID] -= count
	w.exiled += count
}
func (w *fakeWorld) IsTapped(permanentID string) bool { return w.tapped[permanentID] }
func (w *fakeWorld) Tap(permanentID string)           { w.tapped[permanentID] = true }
func (w *fakeWorld) FindSacrifice(controllerID, cardType string) (string, bool) {
	id, ok := w.sacrificial[cardType]
	return id, ok
}
func (w *fakeWorld) Sacrifice(permanentID string) {
	w.sacrificed = append(w.sacrificed, permanentID)
}
func (w *fakeWorld) CanPlaySorcery(playerID string) bool { return w.sorceryOK }

func newTestManager(t *testing.T) (*Manager, *fakeWorld, *rules.StackManager) {
	t.Helper()
	world := newFakeWorld()
	stack := rules.NewStackManager()
	m := NewManager(world, world, world, stack, zaptest.NewLogger(t))
	return m, world, stack
}

func TestActivatePushesToStack(t *testing.T) {
	m, world, stack := newTestManager(t)
	world.pools["alice"].Add(mana.Red, 1)

	resolved := false
	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name:  "Firebreathing",
		Cost:  Cost{Mana: "{R}"},
		Speed: InstantSpeed,
		Effect: func(controllerID string, targets []string) error {
			resolved = true
			return nil
		},
	})

	require.NoError(t, m.Activate(instance, nil))
	assert.Equal(t, 0, world.pools["alice"].Total(), "mana should be spent on activation")
	assert.Equal(t, 1, stack.Size(), "non-mana abilities go on the stack")
	assert.False(t, resolved, "effect must wait for stack resolution")

	_, err := stack.ResolveTop()
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, 1, instance.ActivationsThisTurn)
}

func TestActivateManaAbilityBypassesStack(t *testing.T) {
	m, world, stack := newTestManager(t)

	instance := m.RegisterAbility("forest-1", "alice", &ActivatedAbility{
		Name:          "Add Green",
		Cost:          Cost{RequiresTap: true},
		Speed:         SpecialSpeed,
		IsManaAbility: true,
		Effect: func(controllerID string, targets []string) error {
			world.pools[controllerID].Add(mana.Green, 1)
			return nil
		},
	})

	require.NoError(t, m.Activate(instance, nil))
	assert.True(t, stack.IsEmpty(), "mana abilities never use the stack")
	assert.Equal(t, 1, world.pools["alice"].Get(mana.Green))
	assert.True(t, world.tapped["forest-1"])
}

func TestActivateTappedSourceFails(t *testing.T) {
	m, world, _ := newTestManager(t)
	world.tapped["perm-1"] = true

	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name: "Tap Ability",
		Cost: Cost{RequiresTap: true},
	})

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already tapped")
}

func TestActivateSorceryTimingEnforced(t *testing.T) {
	m, world, _ := newTestManager(t)
	world.sorceryOK = false

	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name:  "Slow Ability",
		Speed: SorcerySpeed,
	})

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sorcery speed")

	world.sorceryOK = true
	require.NoError(t, m.Activate(instance, nil))
}

func TestActivateCostIsAtomic(t *testing.T) {
	m, world, stack := newTestManager(t)
	world.pools["alice"].Add(mana.Red, 2)
	// Life 20, hand 3, but no permanent to sacrifice: the whole payment
	// must be rejected with nothing spent.
	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name: "Greedy Ability",
		Cost: Cost{
			Mana:          "{R}{R}",
			Life:          2,
			DiscardCount:  1,
			SacrificeType: "Creature",
		},
	})

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sacrifice")

	assert.Equal(t, 2, world.pools["alice"].Get(mana.Red), "mana untouched")
	assert.Equal(t, 20, world.life["alice"], "life untouched")
	assert.Equal(t, 3, world.hands["alice"], "hand untouched")
	assert.True(t, stack.IsEmpty())
	assert.Zero(t, instance.ActivationsThisTurn)
}

func TestActivatePaysAllComponents(t *testing.T) {
	m, world, stack := newTestManager(t)
	world.pools["alice"].Add(mana.Black, 1)
	world.graveyards["alice"] = 2
	world.sacrificial["Creature"] = "token-1"

	hookPaid := false
	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name: "Everything Ability",
		Cost: Cost{
			Mana:               "{B}",
			RequiresTap:        true,
			Life:               3,
			DiscardCount:       1,
			SacrificeType:      "Creature",
			ExileFromGraveyard: 2,
			Hooks: []CostHook{{
				Description: "pay the toll",
				CanPay:      func(string) bool { return true },
				Pay:         func(string) { hookPaid = true },
			}},
		},
	})

	require.NoError(t, m.Activate(instance, nil))
	assert.Equal(t, 0, world.pools["alice"].Total())
	assert.Equal(t, 17, world.life["alice"])
	assert.True(t, world.tapped["perm-1"])
	assert.Equal(t, 2, world.hands["alice"])
	assert.Equal(t, []string{"token-1"}, world.sacrificed)
	assert.Equal(t, 0, world.graveyards["alice"])
	assert.True(t, hookPaid)
	assert.Equal(t, 1, stack.Size())
}

func TestActivateCannotPayLastLifePoint(t *testing.T) {
	m, world, _ := newTestManager(t)
	world.life["alice"] = 2

	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name: "Blood Price",
		Cost: Cost{Life: 2},
	})

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient life")
	assert.Equal(t, 2, world.life["alice"])

	world.life["alice"] = 3
	require.NoError(t, m.Activate(instance, nil))
	assert.Equal(t, 1, world.life["alice"])
}

func TestActivateRequiresTargets(t *testing.T) {
	m, _, _ := newTestManager(t)

	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{
		Name:            "Targeted Ability",
		TargetsRequired: 1,
	})

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 1 targets")

	require.NoError(t, m.Activate(instance, []string{"bob"}))
}

func TestRepeatedActivationsAccumulate(t *testing.T) {
	m, world, stack := newTestManager(t)
	world.pools["alice"].Add(mana.Red, 2)

	power := 3
	instance := m.RegisterAbility("dragon-1", "alice", &ActivatedAbility{
		Name:  "Firebreathing",
		Cost:  Cost{Mana: "{R}"},
		Speed: InstantSpeed,
		Effect: func(string, []string) error {
			power++
			return nil
		},
	})

	require.NoError(t, m.Activate(instance, nil))
	require.NoError(t, m.Activate(instance, nil))
	for !stack.IsEmpty() {
		_, err := stack.ResolveTop()
		require.NoError(t, err)
	}

	assert.Equal(t, 5, power)
	assert.Equal(t, 2, instance.ActivationsThisTurn)

	m.ResetTurnCounters()
	assert.Zero(t, instance.ActivationsThisTurn)
	assert.Equal(t, 5, power, "turn reset does not undo resolved effects")
}

func TestStaticAbilitiesApplyInLayerOrder(t *testing.T) {
	m, _, _ := newTestManager(t)

	var applied []string
	m.RegisterStatic(&StaticAbility{
		SourceID: "anthem-1",
		Layer:    7,
		Effect:   func(string) { applied = append(applied, "pump") },
	})
	m.RegisterStatic(&StaticAbility{
		SourceID: "type-changer-1",
		Layer:    4,
		Effect:   func(string) { applied = append(applied, "type") },
	})
	m.RegisterStatic(&StaticAbility{
		SourceID:   "conditional-1",
		Layer:      6,
		Conditions: []func(string) bool{func(targetID string) bool { return targetID == "other" }},
		Effect:     func(string) { applied = append(applied, "conditional") },
	})

	count := m.ApplyStaticEffects("creature-1")
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"type", "pump"}, applied)
}

func TestKeywords(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.GrantKeyword("creature-1", "Flying")
	assert.True(t, m.HasKeyword("creature-1", "flying"))
	assert.False(t, m.HasKeyword("creature-1", "trample"))
	assert.False(t, m.HasKeyword("creature-2", "flying"))
}

func TestCleanupAbilitiesPurgesRegistries(t *testing.T) {
	m, _, _ := newTestManager(t)

	instance := m.RegisterAbility("perm-1", "alice", &ActivatedAbility{Name: "Ability"})
	m.RegisterStatic(&StaticAbility{SourceID: "perm-1", Layer: 7, Effect: func(string) {}})
	m.GrantKeyword("perm-1", "haste")

	m.CleanupAbilities("perm-1")

	assert.False(t, instance.IsActive)
	assert.Empty(t, m.Abilities("perm-1"))
	assert.False(t, m.HasKeyword("perm-1", "haste"))
	assert.Zero(t, m.ApplyStaticEffects("creature-1"))
	_, ok := m.Instance(instance.ID)
	assert.False(t, ok)

	err := m.Activate(instance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
}

func TestCostIsFree(t *testing.T) {
	assert.True(t, Cost{}.IsFree())
	assert.False(t, Cost{Mana: "{1}"}.IsFree())
	assert.False(t, Cost{RequiresTap: true}.IsFree())
	assert.False(t, Cost{Life: 1}.IsFree())
}
