package rules

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// HandleCapture resolves the captures caused by a stone of playingColor at v.
// Every opposing group next to v whose only liberty is v is removed and
// recorded in Captures. The stone at v itself is not placed. The input board
// is left untouched.
func HandleCapture(board *entity.Board, v entity.Vertex, playingColor entity.Color) (*entity.Board, error) {
	next := board.Clone()

	if _, err := captureInPlace(next, v, playingColor); err != nil {
		return nil, err
	}

	return next, nil
}

// captureInPlace mutates board and returns the number of captured stones. It
// must only be called on a board the caller owns.
func captureInPlace(board *entity.Board, v entity.Vertex, playingColor entity.Color) (int, error) {
	neighbors, err := DirectNeighbors(board, v)
	if err != nil {
		return 0, err
	}

	opponent := playingColor.Opposite()

	var captured []entity.Field
	seen := make(map[entity.Vertex]struct{})

	for _, neighbor := range neighbors {
		if neighbor.Color != opponent {
			continue
		}

		if _, ok := seen[neighbor.Vertex]; ok {
			continue
		}

		group, err := GroupByVertex(board, neighbor.Vertex)
		if err != nil {
			return 0, err
		}

		liberties, err := GroupLiberties(board, neighbor.Vertex)
		if err != nil {
			return 0, err
		}

		// mark the whole group so a second neighbor from it is not re-resolved
		for _, member := range group {
			seen[member.Vertex] = struct{}{}
		}

		if !onlyLibertyIs(liberties, v) {
			continue
		}

		captured = append(captured, group...)
	}

	captured = dedupFields(captured)
	for _, field := range captured {
		if err = board.SetColor(field.Vertex, entity.ColorEmpty); err != nil {
			return 0, fmt.Errorf("failed to clear captured stone: %w", err)
		}

		board.Captures = append(board.Captures, field)
	}

	return len(captured), nil
}

// onlyLibertyIs reports whether liberties is {v}, or empty when the stone at v
// has already been placed.
func onlyLibertyIs(liberties []entity.Field, v entity.Vertex) bool {
	switch len(liberties) {
	case 0:
		return true
	case 1:
		return liberties[0].Vertex == v
	default:
		return false
	}
}

func dedupFields(fields []entity.Field) []entity.Field {
	seen := make(map[entity.Vertex]struct{}, len(fields))
	unique := make([]entity.Field, 0, len(fields))

	for _, field := range fields {
		if _, ok := seen[field.Vertex]; ok {
			continue
		}

		seen[field.Vertex] = struct{}{}
		unique = append(unique, field)
	}

	return unique
}
