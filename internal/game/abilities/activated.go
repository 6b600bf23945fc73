package abilities

// Speed is the timing restriction of an activated ability.
type Speed string

const (
	// SorcerySpeed abilities may only be activated when their controller
	// could cast a sorcery.
	SorcerySpeed Speed = "SORCERY"
	// InstantSpeed abilities may be activated whenever the controller has
	// priority.
	InstantSpeed Speed = "INSTANT"
	// SpecialSpeed abilities carry their own timing rules; the manager does
	// not restrict them.
	SpecialSpeed Speed = "SPECIAL"
)

// ActivatedAbility describes an ability printed on a card. Instances bind it
// to a permanent in play.
type ActivatedAbility struct {
	Name            string
	Cost            Cost
	Effect          func(controllerID string, targets []string) error
	TargetsRequired int
	Speed           Speed
	// IsManaAbility abilities resolve immediately and never use the stack.
	IsManaAbility bool
}

// AbilityInstance binds an ActivatedAbility to a permanent and controller.
type AbilityInstance struct {
	ID                  string
	Ability             *ActivatedAbility
	PermanentID         string
	Controller          string
	IsActive            bool
	ActivationsThisTurn int
}
