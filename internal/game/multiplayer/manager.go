package multiplayer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// Roster exposes per-player life and loss flags. The engine implements it;
// the manager decides when a player has lost, the roster records it.
type Roster interface {
	SetLife(playerID string, life int)
	Life(playerID string) int
	MarkLost(playerID string)
	HasLost(playerID string) bool
}

// Manager layers game-mode rules on top of the turn order: team structure,
// shared life pools, commander tax and damage, elimination and win
// detection.
type Manager struct {
	mode   GameMode
	turns  *rules.TurnOrder
	roster Roster
	logger *zap.Logger

	players      []string
	teams        map[string]*PlayerTeam
	teamOrder    []string
	teamByPlayer map[string]string
	commanders   map[string]*CommanderInfo
}

// NewManager creates an empty manager for the mode. SetupGame must be called
// before any other method.
func NewManager(mode GameMode, roster Roster, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		mode:         mode,
		roster:       roster,
		logger:       logger,
		teams:        make(map[string]*PlayerTeam),
		teamByPlayer: make(map[string]string),
		commanders:   make(map[string]*CommanderInfo),
	}
}

// Mode returns the game mode.
func (m *Manager) Mode() GameMode {
	return m.mode
}

// TurnOrder returns the turn order built by SetupGame.
func (m *Manager) TurnOrder() *rules.TurnOrder {
	return m.turns
}

// SetupGame builds the turn order over all players, assigns teams for team
// modes, and sets every player's life from the mode's fixed total. Team
// modes take teams as contiguous seating groups.
func (m *Manager) SetupGame(playerIDs []string) error {
	if len(playerIDs) < 2 {
		return fmt.Errorf("at least 2 players required")
	}
	if size := m.mode.TeamSize(); size > 0 {
		if len(playerIDs)%size != 0 {
			return fmt.Errorf("%s requires a multiple of %d players, got %d", m.mode, size, len(playerIDs))
		}
		if m.mode == ModeEmperor && len(playerIDs) < 6 {
			return fmt.Errorf("%s requires at least 6 players, got %d", m.mode, len(playerIDs))
		}
	}

	turns, err := rules.NewTurnOrder(playerIDs)
	if err != nil {
		return err
	}
	m.turns = turns
	m.players = append([]string(nil), playerIDs...)

	life := m.mode.StartingLife()
	for _, p := range playerIDs {
		m.roster.SetLife(p, life)
	}

	if size := m.mode.TeamSize(); size > 0 {
		for i := 0; i < len(playerIDs); i += size {
			teamID := fmt.Sprintf("team-%d", i/size+1)
			team := &PlayerTeam{
				ID:             teamID,
				Name:           fmt.Sprintf("Team %d", i/size+1),
				PlayerIDs:      append([]string(nil), playerIDs[i:i+size]...),
				UsesSharedLife: m.mode.UsesSharedLife(),
			}
			if team.UsesSharedLife {
				team.SharedLife = life
			}
			m.teams[teamID] = team
			m.teamOrder = append(m.teamOrder, teamID)
			for _, p := range team.PlayerIDs {
				m.teamByPlayer[p] = teamID
			}
		}
	}

	m.logger.Info("game set up",
		zap.String("mode", string(m.mode)),
		zap.Strings("players", playerIDs),
		zap.Int("starting_life", life),
		zap.Int("teams", len(m.teams)),
	)
	return nil
}

// Team returns the team a player belongs to, if any.
func (m *Manager) Team(playerID string) (*PlayerTeam, bool) {
	teamID, ok := m.teamByPlayer[playerID]
	if !ok {
		return nil, false
	}
	return m.teams[teamID], true
}

// RegisterCommander assigns a commander to a player in commander modes.
func (m *Manager) RegisterCommander(playerID, cardID, cardName string, colorIdentity []string) error {
	if !m.mode.UsesCommanders() {
		return fmt.Errorf("mode %s does not use commanders", m.mode)
	}
	m.commanders[playerID] = NewCommanderInfo(cardID, cardName, colorIdentity)
	return nil
}

// Commander returns the player's commander info.
func (m *Manager) Commander(playerID string) (*CommanderInfo, bool) {
	ci, ok := m.commanders[playerID]
	return ci, ok
}

// CastCommander returns the additive generic-mana tax for casting the
// player's commander from the command zone, counts the cast, and moves the
// commander out of the command zone.
func (m *Manager) CastCommander(playerID string) (int, error) {
	ci, ok := m.commanders[playerID]
	if !ok {
		return 0, fmt.Errorf("player %s has no commander", playerID)
	}
	tax := ci.TimesCast * CommanderTaxStep
	ci.TimesCast++
	ci.InCommandZone = false
	m.logger.Debug("commander cast",
		zap.String("player", playerID),
		zap.String("commander", ci.CardName),
		zap.Int("tax", tax),
		zap.Int("times_cast", ci.TimesCast),
	)
	return tax, nil
}

// ReturnCommanderToCommandZone puts the commander back in the command zone.
func (m *Manager) ReturnCommanderToCommandZone(playerID string) error {
	ci, ok := m.commanders[playerID]
	if !ok {
		return fmt.Errorf("player %s has no commander", playerID)
	}
	ci.InCommandZone = true
	return nil
}

// DealCommanderDamage accumulates combat damage from the owner's commander
// onto the target. At 21 total damage from that commander the target has
// lost. The damage also reduces the target's life.
func (m *Manager) DealCommanderDamage(ownerID, targetID string, amount int) error {
	ci, ok := m.commanders[ownerID]
	if !ok {
		return fmt.Errorf("player %s has no commander", ownerID)
	}
	if amount <= 0 {
		return nil
	}
	ci.Damage[targetID] += amount
	m.DealDamage(targetID, amount)
	if ci.Damage[targetID] >= CommanderDamageThreshold && !m.roster.HasLost(targetID) {
		m.roster.MarkLost(targetID)
		m.logger.Info("player lost to commander damage",
			zap.String("player", targetID),
			zap.String("commander", ci.CardName),
			zap.Int("damage", ci.Damage[targetID]),
		)
	}
	return nil
}

// CommanderDamage returns the total damage the owner's commander has dealt
// to the target.
func (m *Manager) CommanderDamage(ownerID, targetID string) int {
	ci, ok := m.commanders[ownerID]
	if !ok {
		return 0
	}
	return ci.Damage[targetID]
}

// CheckColorIdentity reports whether the card's colors are a subset of the
// player's commander color identity.
func (m *Manager) CheckColorIdentity(playerID string, cardColors []string) (bool, error) {
	ci, ok := m.commanders[playerID]
	if !ok {
		return false, fmt.Errorf("player %s has no commander", playerID)
	}
	for _, color := range cardColors {
		if !ci.IdentityContains(color) {
			return false, nil
		}
	}
	return true, nil
}

// DealDamage routes damage to a player: into the team's shared life pool in
// shared-life modes, otherwise into the player's own life total. Reaching
// zero marks the loss; it is game state, not an error.
func (m *Manager) DealDamage(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	if team, ok := m.Team(playerID); ok && team.UsesSharedLife {
		team.SharedLife -= amount
		if team.SharedLife <= 0 {
			for _, p := range team.PlayerIDs {
				if !m.roster.HasLost(p) {
					m.roster.MarkLost(p)
				}
			}
			m.logger.Info("team eliminated", zap.String("team", team.ID))
		}
		return
	}
	m.roster.SetLife(playerID, m.roster.Life(playerID)-amount)
	if m.roster.Life(playerID) <= 0 && !m.roster.HasLost(playerID) {
		m.roster.MarkLost(playerID)
	}
}

// EliminatePlayer marks the player as lost and removes them from the turn
// order. The last remaining player is never removed from the rotation; at
// that point the game is over.
func (m *Manager) EliminatePlayer(playerID string) {
	if !m.roster.HasLost(playerID) {
		m.roster.MarkLost(playerID)
	}
	if m.turns.Contains(playerID) && m.turns.PlayerCount() > 1 {
		m.turns.RemovePlayer(playerID)
	}
	m.logger.Info("player eliminated",
		zap.String("player", playerID),
		zap.Int("remaining", m.turns.PlayerCount()),
	)
}

// aliveTeams returns the teams still alive.
func (m *Manager) aliveTeams() []*PlayerTeam {
	var alive []*PlayerTeam
	for _, teamID := range m.teamOrder {
		team := m.teams[teamID]
		if team.IsAlive(m.roster.HasLost) {
			alive = append(alive, team)
		}
	}
	return alive
}

// alivePlayers returns the players who have not lost.
func (m *Manager) alivePlayers() []string {
	var alive []string
	for _, p := range m.players {
		if !m.roster.HasLost(p) {
			alive = append(alive, p)
		}
	}
	return alive
}

// IsGameOver reports whether at most one team (team modes) or one player
// (free-for-all) remains alive.
func (m *Manager) IsGameOver() bool {
	if m.mode.UsesTeams() {
		return len(m.aliveTeams()) <= 1
	}
	return len(m.alivePlayers()) <= 1
}

// Winner returns the winning team id (team modes) or player id once the
// game is over. The second result is false while the game is still running
// or when nobody survived.
func (m *Manager) Winner() (string, bool) {
	if m.mode.UsesTeams() {
		alive := m.aliveTeams()
		if len(alive) == 1 {
			return alive[0].ID, true
		}
		return "", false
	}
	alive := m.alivePlayers()
	if len(alive) == 1 {
		return alive[0], true
	}
	return "", false
}

// GetLegalAttackTargets returns the players the attacker may attack: any
// non-eliminated other player in free-for-all, any non-eliminated player on
// a different team in team modes.
func (m *Manager) GetLegalAttackTargets(attackerID string) []string {
	attackerTeam := m.teamByPlayer[attackerID]
	var targets []string
	for _, p := range m.players {
		if p == attackerID || m.roster.HasLost(p) {
			continue
		}
		if m.mode.UsesTeams() && m.teamByPlayer[p] == attackerTeam {
			continue
		}
		targets = append(targets, p)
	}
	return targets
}
