package rules

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// IsSuicide simulates a stone of color at v on a copy of board. A move that
// captures anything is never suicide; otherwise it is suicide when the placed
// stone's group has no liberties left.
func IsSuicide(board *entity.Board, v entity.Vertex, color entity.Color) (bool, error) {
	simulation := board.Clone()

	captured, err := captureInPlace(simulation, v, color)
	if err != nil {
		return false, fmt.Errorf("failed to simulate capture: %w", err)
	}

	if captured > 0 {
		return false, nil
	}

	if err = simulation.SetColor(v, color); err != nil {
		return false, err
	}

	liberties, err := GroupLiberties(simulation, v)
	if err != nil {
		return false, err
	}

	return len(liberties) == 0, nil
}

// IsKo reports whether move retakes the stone captured last, played back onto
// the vertex it was just taken from. This is a single-stone recapture check,
// not positional superko.
func IsKo(board *entity.Board, move entity.Field) bool {
	lastCapture, ok := board.LastCapture()
	if !ok || !lastCapture.Matches(move) {
		return false
	}

	if len(board.History) < 2 {
		return false
	}

	return board.History[len(board.History)-2].Matches(move)
}

func IsInBounds(board *entity.Board, move entity.Field) bool {
	return board.Contains(move.Vertex)
}

// IsOccupied fails with ErrVertexNotFound for vertices the board lacks.
func IsOccupied(board *entity.Board, v entity.Vertex) (bool, error) {
	field, err := board.FieldAt(v)
	if err != nil {
		return false, err
	}

	return !field.IsEmpty(), nil
}
