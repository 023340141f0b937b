package entity

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
)

type Player struct {
	ID     string `json:"id"`
	Color  Color  `json:"color,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

// Players is the roster of a game: always one black and one white player.
type Players [2]Player

// NewPlayers builds a roster, rejecting anything but exactly two players of
// opposite colors.
func NewPlayers(players ...Player) (Players, error) {
	if len(players) != 2 {
		return Players{}, fmt.Errorf("%w: got %d", apperror.ErrInvalidPlayerCount, len(players))
	}

	first, second := players[0], players[1]
	if !first.Color.IsStone() || first.Color.Opposite() != second.Color {
		return Players{}, fmt.Errorf("%w: %s and %s", apperror.ErrInvalidPlayerColors, first.Color, second.Color)
	}

	if first.ID == "" || first.ID == second.ID {
		return Players{}, fmt.Errorf("%w: ids %q and %q", apperror.ErrInvalidPlayerCount, first.ID, second.ID)
	}

	return Players{first, second}, nil
}

func (that Players) ByID(id string) (Player, bool) {
	for _, player := range that {
		if player.ID == id {
			return player, true
		}
	}

	return Player{}, false
}

func (that Players) ByColor(color Color) (Player, bool) {
	for _, player := range that {
		if player.Color == color {
			return player, true
		}
	}

	return Player{}, false
}

// Other returns the opponent of the player with the given id.
func (that Players) Other(id string) (Player, bool) {
	switch id {
	case that[0].ID:
		return that[1], true
	case that[1].ID:
		return that[0], true
	default:
		return Player{}, false
	}
}
