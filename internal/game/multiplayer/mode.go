package multiplayer

// GameMode fixes the starting life total and team topology of a game.
type GameMode string

const (
	ModeFreeForAll     GameMode = "FREE_FOR_ALL"
	ModeTwoHeadedGiant GameMode = "TWO_HEADED_GIANT"
	ModeEmperor        GameMode = "EMPEROR"
	ModeCommander      GameMode = "COMMANDER"
	ModeBrawl          GameMode = "BRAWL"
)

// StartingLife returns the mode's fixed starting life total. For shared-life
// modes this is the team pool, not a per-player total.
func (m GameMode) StartingLife() int {
	switch m {
	case ModeTwoHeadedGiant:
		return 30
	case ModeCommander:
		return 40
	case ModeBrawl:
		return 25
	default:
		return 20
	}
}

// UsesTeams reports whether the mode groups players into teams.
func (m GameMode) UsesTeams() bool {
	return m == ModeTwoHeadedGiant || m == ModeEmperor
}

// UsesSharedLife reports whether teams share a single life pool.
func (m GameMode) UsesSharedLife() bool {
	return m == ModeTwoHeadedGiant
}

// UsesCommanders reports whether the mode plays with commanders.
func (m GameMode) UsesCommanders() bool {
	return m == ModeCommander || m == ModeBrawl
}

// TeamSize returns the number of players per team, or 0 for team-less modes.
func (m GameMode) TeamSize() int {
	switch m {
	case ModeTwoHeadedGiant:
		return 2
	case ModeEmperor:
		return 3
	default:
		return 0
	}
}
