package abilities

// StaticAbility is a continuous effect applied whenever its conditions hold.
// Static abilities never enter the stack. Layer follows the comprehensive
// rules layers (1..7); effects apply in ascending layer order, registration
// order within a layer.
type StaticAbility struct {
	ID         string
	SourceID   string
	Layer      int
	Conditions []func(targetID string) bool
	Effect     func(targetID string)
}

// Applies reports whether every condition passes for the target.
func (sa *StaticAbility) Applies(targetID string) bool {
	for _, cond := range sa.Conditions {
		if cond == nil {
			continue
		}
		if !cond(targetID) {
			return false
		}
	}
	return true
}
