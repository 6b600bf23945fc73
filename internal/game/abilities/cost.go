package abilities

// CostHook is an extra cost component supplied by the card implementation.
// CanPay must be side-effect free; Pay is only invoked after every component
// of the cost has been checked.
type CostHook struct {
	Description string
	CanPay      func(controllerID string) bool
	Pay         func(controllerID string)
}

// Cost describes the full activation cost of an ability. A cost is atomic:
// either every component is payable and all are paid, or the activation
// fails with nothing paid.
type Cost struct {
	// Mana is a mana cost string such as "{1}{R}". Empty means free.
	Mana string
	// RequiresTap taps the source permanent as part of the cost.
	RequiresTap bool
	// SacrificeType, when set, requires sacrificing a controlled permanent
	// of the given card type ("any" matches any permanent).
	SacrificeType string
	// DiscardCount cards are discarded from the end of the hand.
	DiscardCount int
	// Life is paid as a life loss. Players cannot pay their last life point.
	Life int
	// ExileFromGraveyard exiles that many cards from the controller's
	// graveyard.
	ExileFromGraveyard int
	// Hooks are paid last, in order.
	Hooks []CostHook
}

// IsFree reports whether the cost has no components at all.
func (c Cost) IsFree() bool {
	return c.Mana == "" && !c.RequiresTap && c.SacrificeType == "" &&
		c.DiscardCount == 0 && c.Life == 0 && c.ExileFromGraveyard == 0 &&
		len(c.Hooks) == 0
}
