package multiplayer

// PlayerTeam groups players under a shared identity and, in some modes, a
// shared life pool.
type PlayerTeam struct {
	ID             string
	Name           string
	PlayerIDs      []string
	SharedLife     int
	UsesSharedLife bool
}

// Contains reports whether the player belongs to the team.
func (t *PlayerTeam) Contains(playerID string) bool {
	for _, p := range t.PlayerIDs {
		if p == playerID {
			return true
		}
	}
	return false
}

// IsAlive reports whether the team is still in the game: a positive shared
// pool when one is used, otherwise at least one member who has not lost.
func (t *PlayerTeam) IsAlive(hasLost func(string) bool) bool {
	if t.UsesSharedLife {
		return t.SharedLife > 0
	}
	for _, p := range t.PlayerIDs {
		if !hasLost(p) {
			return true
		}
	}
	return false
}
