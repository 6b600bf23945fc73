package multiplayer

import (
	"strings"
)

// CommanderDamageThreshold is the accumulated combat damage from a single
// commander at which its victim loses the game.
const CommanderDamageThreshold = 21

// CommanderTaxStep is the additional generic mana per previous cast from the
// command zone.
const CommanderTaxStep = 2

// CommanderInfo tracks a player's commander: where it is, how often it has
// been cast, and the combat damage it has dealt to each player.
type CommanderInfo struct {
	CardID        string
	CardName      string
	ColorIdentity []string
	Damage        map[string]int
	TimesCast     int
	InCommandZone bool
}

// NewCommanderInfo registers a commander starting in the command zone.
func NewCommanderInfo(cardID, cardName string, colorIdentity []string) *CommanderInfo {
	normalized := make([]string, 0, len(colorIdentity))
	for _, c := range colorIdentity {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(c)))
	}
	return &CommanderInfo{
		CardID:        cardID,
		CardName:      cardName,
		ColorIdentity: normalized,
		Damage:        make(map[string]int),
		InCommandZone: true,
	}
}

// IdentityContains reports whether the color is part of the commander's
// color identity.
func (ci *CommanderInfo) IdentityContains(color string) bool {
	color = strings.ToLower(strings.TrimSpace(color))
	for _, c := range ci.ColorIdentity {
		if c == color {
			return true
		}
	}
	return false
}
