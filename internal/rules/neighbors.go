package rules

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// offsets in neighbor order: up, down, left, right.
var offsets = [4][2]int{
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// DirectNeighbors returns the orthogonally adjacent fields of v, clipped at the
// board edges.
func DirectNeighbors(board *entity.Board, v entity.Vertex) ([]entity.Field, error) {
	if !board.Contains(v) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrVertexNotFound, v)
	}

	neighbors := make([]entity.Field, 0, len(offsets))
	for _, offset := range offsets {
		adj := entity.NewVertex(v.Row()+offset[0], v.Col()+offset[1])
		if !board.Contains(adj) {
			continue
		}

		field, err := board.FieldAt(adj)
		if err != nil {
			return nil, err
		}

		neighbors = append(neighbors, field)
	}

	return neighbors, nil
}

// Liberties returns the empty direct neighbors of v.
func Liberties(board *entity.Board, v entity.Vertex) ([]entity.Field, error) {
	neighbors, err := DirectNeighbors(board, v)
	if err != nil {
		return nil, err
	}

	liberties := make([]entity.Field, 0, len(neighbors))
	for _, field := range neighbors {
		if field.IsEmpty() {
			liberties = append(liberties, field)
		}
	}

	return liberties, nil
}
