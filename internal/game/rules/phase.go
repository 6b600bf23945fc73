package rules

import (
	"fmt"

	"go.uber.org/zap"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepCombatDamage
	StepEndCombat
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:            "UNTAP",
	StepUpkeep:           "UPKEEP",
	StepDraw:             "DRAW",
	StepMain:             "MAIN",
	StepBeginCombat:      "BEGIN_COMBAT",
	StepDeclareAttackers: "DECLARE_ATTACKERS",
	StepDeclareBlockers:  "DECLARE_BLOCKERS",
	StepCombatDamage:     "COMBAT_DAMAGE",
	StepEndCombat:        "END_COMBAT",
	StepEnd:              "END",
	StepCleanup:          "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// phaseSteps is the fixed phase -> step table. Main phases have a single
// step; reaching the end of Ending's cleanup ends the turn.
var phaseSteps = map[Phase][]Step{
	PhaseBeginning:      {StepUntap, StepUpkeep, StepDraw},
	PhasePrecombatMain:  {StepMain},
	PhaseCombat:         {StepBeginCombat, StepDeclareAttackers, StepDeclareBlockers, StepCombatDamage, StepEndCombat},
	PhasePostcombatMain: {StepMain},
	PhaseEnding:         {StepEnd, StepCleanup},
}

var phaseOrder = []Phase{
	PhaseBeginning,
	PhasePrecombatMain,
	PhaseCombat,
	PhasePostcombatMain,
	PhaseEnding,
}

// PhaseHost supplies the zone and player mutations the automatic step
// actions need. The engine implements it; the phase manager never touches
// cards or pools directly.
type PhaseHost interface {
	// UntapPermanents untaps all permanents the player controls except those
	// flagged as not untapping.
	UntapPermanents(playerID string)
	// DrawCard has the player draw one card. An empty library is surfaced as
	// a has-lost flag on the player, not an error.
	DrawCard(playerID string)
	// DiscardToHandSize discards from the end of the player's hand down to
	// the maximum hand size.
	DiscardToHandSize(playerID string, maxHand int)
	// ClearDamage clears damage marked on all permanents.
	ClearDamage()
	// EmptyManaPools empties every player's mana pool.
	EmptyManaPools()
	// ResetTurnCounters zeroes per-turn tracking (ability activations, land
	// plays). Invoked exactly once per turn, at the untap step.
	ResetTurnCounters(playerID string)
	// LandPlayAvailable reports whether the player's per-turn land-play
	// budget is still unspent.
	LandPlayAvailable(playerID string) bool
}

// MaxHandSize is the default maximum hand size enforced at cleanup.
const MaxHandSize = 7

// PhaseManager drives phase and step progression for each turn. It owns the
// current phase/step exclusively; turn rotation is delegated to the
// TurnOrder and automatic step actions to the PhaseHost.
type PhaseManager struct {
	turns    *TurnOrder
	stack    *StackManager
	triggers *TriggerManager
	host     PhaseHost
	bus      *EventBus
	logger   *zap.Logger

	started     bool
	phase       Phase
	stepIndex   int
	maxHandSize int

	// The game's very first draw step is skipped.
	firstDrawSkipped bool

	phaseObservers map[Phase][]func()
	stepObservers  map[Step][]func()
}

// NewPhaseManager creates a phase manager. No phase or step is current until
// StartTurn is called.
func NewPhaseManager(turns *TurnOrder, stack *StackManager, triggers *TriggerManager, host PhaseHost, bus *EventBus, logger *zap.Logger) *PhaseManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhaseManager{
		turns:          turns,
		stack:          stack,
		triggers:       triggers,
		host:           host,
		bus:            bus,
		logger:         logger,
		maxHandSize:    MaxHandSize,
		phaseObservers: make(map[Phase][]func()),
		stepObservers:  make(map[Step][]func()),
	}
}

// SetMaxHandSize overrides the cleanup-step hand size limit.
func (pm *PhaseManager) SetMaxHandSize(n int) {
	if n > 0 {
		pm.maxHandSize = n
	}
}

// Started reports whether a turn is in progress.
func (pm *PhaseManager) Started() bool {
	return pm.started
}

// CurrentPhase returns the phase currently in progress.
// Calling it before StartTurn is a caller error.
func (pm *PhaseManager) CurrentPhase() Phase {
	pm.mustBeStarted()
	return pm.phase
}

// CurrentStep returns the step currently in progress.
func (pm *PhaseManager) CurrentStep() Step {
	pm.mustBeStarted()
	return phaseSteps[pm.phase][pm.stepIndex]
}

// OnPhase registers an observer invoked when the phase is entered.
// Observers run in registration order.
func (pm *PhaseManager) OnPhase(phase Phase, fn func()) {
	if fn != nil {
		pm.phaseObservers[phase] = append(pm.phaseObservers[phase], fn)
	}
}

// OnStep registers an observer invoked when the step is entered.
func (pm *PhaseManager) OnStep(step Step, fn func()) {
	if fn != nil {
		pm.stepObservers[step] = append(pm.stepObservers[step], fn)
	}
}

// StartTurn begins a turn for the player, entering the beginning phase's
// untap step. The player must be the turn order's active player.
func (pm *PhaseManager) StartTurn(playerID string) {
	if playerID != pm.turns.ActivePlayer() {
		panic(fmt.Sprintf("rules: StartTurn for %s but active player is %s", playerID, pm.turns.ActivePlayer()))
	}
	pm.started = true
	pm.logger.Info("turn started",
		zap.String("player", playerID),
		zap.Int("turn", pm.turns.TurnNumber()),
	)
	pm.publish(NewEvent(EventBeginTurn, "", "", playerID))
	pm.EnterPhase(PhaseBeginning)
}

// EnterPhase sets the current phase, fires phase-entry observers, then
// enters the phase's first step.
func (pm *PhaseManager) EnterPhase(phase Phase) {
	pm.mustBeStarted()
	pm.phase = phase
	pm.logger.Debug("phase entered",
		zap.String("phase", phase.String()),
		zap.String("active_player", pm.turns.ActivePlayer()),
	)
	for _, fn := range pm.phaseObservers[phase] {
		fn()
	}
	pm.publish(NewEvent(EventPhaseChanged, "", "", pm.turns.ActivePlayer()))
	pm.stepIndex = -1
	pm.enterStepAt(0)
}

// EnterStep jumps to the given step within the current phase.
func (pm *PhaseManager) EnterStep(step Step) {
	pm.mustBeStarted()
	for i, s := range phaseSteps[pm.phase] {
		if s == step {
			pm.enterStepAt(i)
			return
		}
	}
	panic(fmt.Sprintf("rules: step %s is not part of phase %s", step, pm.phase))
}

func (pm *PhaseManager) enterStepAt(idx int) {
	pm.stepIndex = idx
	step := phaseSteps[pm.phase][idx]
	active := pm.turns.ActivePlayer()

	pm.logger.Debug("step entered",
		zap.String("phase", pm.phase.String()),
		zap.String("step", step.String()),
		zap.String("active_player", active),
	)
	for _, fn := range pm.stepObservers[step] {
		fn()
	}
	pm.publish(NewEvent(EventStepChanged, "", "", active))

	switch step {
	case StepUntap:
		pm.host.ResetTurnCounters(active)
		pm.host.UntapPermanents(active)
		pm.publish(NewEvent(EventUntapStep, "", "", active))
	case StepUpkeep:
		pm.triggers.FireTrigger(EventBeginningOfUpkeep, NewEvent(EventBeginningOfUpkeep, "", "", active))
		pm.triggers.ResolvePendingTriggers()
	case StepDraw:
		if !pm.firstDrawSkipped && pm.turns.TurnNumber() == 1 {
			pm.firstDrawSkipped = true
			pm.logger.Debug("first draw step skipped", zap.String("player", active))
		} else {
			pm.host.DrawCard(active)
		}
		pm.publish(NewEvent(EventDrawStep, "", "", active))
	case StepEnd:
		pm.triggers.FireTrigger(EventEndStep, NewEvent(EventEndStep, "", "", active))
		pm.triggers.ResolvePendingTriggers()
	case StepCleanup:
		pm.host.DiscardToHandSize(active, pm.maxHandSize)
		pm.host.ClearDamage()
		pm.host.EmptyManaPools()
		pm.publish(NewEvent(EventCleanupStep, "", "", active))
	}
}

// NextStep advances to the next step of the fixed turn structure. At the end
// of the cleanup step the turn ends and the next turn is requested from the
// TurnOrder. Advancing before StartTurn is a caller error.
func (pm *PhaseManager) NextStep() (Phase, Step) {
	pm.mustBeStarted()

	steps := phaseSteps[pm.phase]
	if pm.stepIndex+1 < len(steps) {
		pm.enterStepAt(pm.stepIndex + 1)
		return pm.phase, pm.CurrentStep()
	}

	// Phase exhausted; move to the next phase or end the turn.
	for i, phase := range phaseOrder {
		if phase == pm.phase {
			if i+1 < len(phaseOrder) {
				pm.EnterPhase(phaseOrder[i+1])
				return pm.phase, pm.CurrentStep()
			}
			break
		}
	}

	// End of the ending phase: the turn is over.
	ending := pm.turns.ActivePlayer()
	pm.publish(NewEvent(EventEndTurn, "", "", ending))
	next := pm.turns.NextTurn()
	pm.logger.Info("turn ended",
		zap.String("player", ending),
		zap.String("next_player", next),
		zap.Int("turn", pm.turns.TurnNumber()),
	)
	pm.StartTurn(next)
	return pm.phase, pm.CurrentStep()
}

// CanPlaySorcery reports whether the player may act at sorcery speed: they
// are the active player, a main phase is in progress, and the stack is
// empty.
func (pm *PhaseManager) CanPlaySorcery(playerID string) bool {
	if !pm.started {
		return false
	}
	if playerID != pm.turns.ActivePlayer() {
		return false
	}
	if pm.phase != PhasePrecombatMain && pm.phase != PhasePostcombatMain {
		return false
	}
	return pm.stack.IsEmpty()
}

// CanPlayLand additionally requires the player's per-turn land-play budget
// to be unspent.
func (pm *PhaseManager) CanPlayLand(playerID string) bool {
	return pm.CanPlaySorcery(playerID) && pm.host.LandPlayAvailable(playerID)
}

func (pm *PhaseManager) publish(event Event) {
	if pm.bus != nil {
		pm.bus.Publish(event)
	}
}

func (pm *PhaseManager) mustBeStarted() {
	if !pm.started {
		panic("rules: no turn in progress; call StartTurn first")
	}
}
