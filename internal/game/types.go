package game

import (
	"strings"
	"time"

	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// Card is a card definition held in a hidden zone (library, hand, graveyard,
// exile, command). Once it enters the battlefield it becomes a Permanent.
type Card struct {
	ID        string
	Name      string
	ManaCost  string
	Types     []string
	Colors    []string
	Power     int
	Toughness int
}

// IsType reports whether the card has the given card type.
func (c *Card) IsType(cardType string) bool {
	return containsFold(c.Types, cardType)
}

// IsPermanentType reports whether resolving the card puts it onto the
// battlefield.
func (c *Card) IsPermanentType() bool {
	for _, t := range c.Types {
		switch strings.ToLower(t) {
		case "creature", "artifact", "enchantment", "planeswalker", "land":
			return true
		}
	}
	return false
}

// Permanent is a card on the battlefield.
type Permanent struct {
	ID            string
	Name          string
	Types         []string
	Colors        []string
	BasePower     int
	BaseToughness int
	Power         int
	Toughness     int
	Tapped        bool
	DoesntUntap   bool
	ControllerID  string
	OwnerID       string
	Damage        int
}

// IsType reports whether the permanent has the given card type.
func (p *Permanent) IsType(cardType string) bool {
	return containsFold(p.Types, cardType)
}

// Player is a participant's private state: life, zones, mana pool, loss
// flags and per-turn tracking.
type Player struct {
	ID        string
	Life      int
	Lost      bool
	Library   []*Card
	Hand      []*Card
	Graveyard []*Card
	Exile     []*Card
	Command   []*Card
	ManaPool  *mana.Pool

	LandsPlayedThisTurn int
	LandPlayBudget      int
}

// Message is one entry of the game log.
type Message struct {
	Text      string
	Category  string
	Timestamp time.Time
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
