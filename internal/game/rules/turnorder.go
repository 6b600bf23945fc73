package rules

import (
	"fmt"
)

// TurnOrder maintains the rotation of active players, the extra-turn queue,
// and elimination-safe index bookkeeping. The active index always denotes a
// live player; RemovePlayer is careful to preserve that invariant.
type TurnOrder struct {
	players     []string
	activeIndex int
	turnNumber  int
	extraTurns  []string // FIFO: first granted, first taken
}

// NewTurnOrder creates a turn order over the given players. The first player
// in the slice takes the first turn.
func NewTurnOrder(players []string) (*TurnOrder, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("turn order requires at least one player")
	}
	seen := make(map[string]bool, len(players))
	ordered := make([]string, 0, len(players))
	for _, p := range players {
		if p == "" {
			return nil, fmt.Errorf("player id must not be empty")
		}
		if seen[p] {
			return nil, fmt.Errorf("duplicate player id %q", p)
		}
		seen[p] = true
		ordered = append(ordered, p)
	}
	return &TurnOrder{
		players:     ordered,
		activeIndex: 0,
		turnNumber:  1,
	}, nil
}

// ActivePlayer returns the id of the player whose turn it is.
func (to *TurnOrder) ActivePlayer() string {
	return to.players[to.activeIndex]
}

// TurnNumber returns the current turn number (1-based).
func (to *TurnOrder) TurnNumber() int {
	return to.turnNumber
}

// Players returns a copy of the remaining player ids in seating order.
func (to *TurnOrder) Players() []string {
	cpy := make([]string, len(to.players))
	copy(cpy, to.players)
	return cpy
}

// PlayerCount returns the number of players still in the rotation.
func (to *TurnOrder) PlayerCount() int {
	return len(to.players)
}

// Contains reports whether the player is still in the rotation.
func (to *TurnOrder) Contains(playerID string) bool {
	return to.indexOf(playerID) >= 0
}

// AddExtraTurn grants an extra turn to the player. Extra turns are taken in
// the order they were granted, before the rotation resumes.
func (to *TurnOrder) AddExtraTurn(playerID string) {
	to.extraTurns = append(to.extraTurns, playerID)
}

// ExtraTurnCount returns the number of queued extra turns.
func (to *TurnOrder) ExtraTurnCount() int {
	return len(to.extraTurns)
}

// NextTurn advances to the next turn and returns the new active player.
// A queued extra turn is consumed first and does not increment the turn
// number; otherwise the rotation advances circularly and the turn number
// increments by exactly one.
func (to *TurnOrder) NextTurn() string {
	for len(to.extraTurns) > 0 {
		next := to.extraTurns[0]
		to.extraTurns = to.extraTurns[1:]
		idx := to.indexOf(next)
		if idx < 0 {
			// Granted to a player who has since been eliminated.
			continue
		}
		to.activeIndex = idx
		return next
	}
	to.activeIndex = (to.activeIndex + 1) % len(to.players)
	to.turnNumber++
	return to.players[to.activeIndex]
}

// ApnapOrder returns the active player followed by the remaining players in
// turn order starting after the active player.
func (to *TurnOrder) ApnapOrder() []string {
	order := make([]string, 0, len(to.players))
	for i := 0; i < len(to.players); i++ {
		order = append(order, to.players[(to.activeIndex+i)%len(to.players)])
	}
	return order
}

// RemovePlayer deletes the player from the rotation. If the removed seat
// precedes the active seat the active index shifts down with it; if the
// removed player was active, the unchanged index now denotes the next player
// in order. The index is renormalized modulo the shrunk list.
func (to *TurnOrder) RemovePlayer(playerID string) bool {
	idx := to.indexOf(playerID)
	if idx < 0 {
		return false
	}
	if len(to.players) == 1 {
		// The last player cannot be removed; the caller decides the game is
		// over before this point.
		panic("rules: RemovePlayer would leave turn order empty")
	}
	to.players = append(to.players[:idx], to.players[idx+1:]...)
	if idx < to.activeIndex {
		to.activeIndex--
	}
	to.activeIndex = to.activeIndex % len(to.players)
	return true
}

func (to *TurnOrder) indexOf(playerID string) int {
	for i, p := range to.players {
		if p == playerID {
			return i
		}
	}
	return -1
}
