package rules

import (
	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// GroupByVertex returns the maximal connected component of same-colored fields
// containing v, v itself first. An empty start vertex yields its empty region.
func GroupByVertex(board *entity.Board, v entity.Vertex) ([]entity.Field, error) {
	start, err := board.FieldAt(v)
	if err != nil {
		return nil, err
	}

	group := []entity.Field{start}
	visited := map[entity.Vertex]struct{}{v: {}}

	// group doubles as the BFS queue; next points at the first unexpanded field.
	for next := 0; next < len(group); next++ {
		neighbors, err := DirectNeighbors(board, group[next].Vertex)
		if err != nil {
			return nil, err
		}

		for _, field := range neighbors {
			if field.Color != start.Color {
				continue
			}

			if _, ok := visited[field.Vertex]; ok {
				continue
			}

			visited[field.Vertex] = struct{}{}
			group = append(group, field)
		}
	}

	return group, nil
}

// GroupLiberties returns the distinct liberties of the group containing v.
func GroupLiberties(board *entity.Board, v entity.Vertex) ([]entity.Field, error) {
	group, err := GroupByVertex(board, v)
	if err != nil {
		return nil, err
	}

	var liberties []entity.Field
	seen := make(map[entity.Vertex]struct{})

	for _, member := range group {
		memberLiberties, err := Liberties(board, member.Vertex)
		if err != nil {
			return nil, err
		}

		for _, liberty := range memberLiberties {
			if _, ok := seen[liberty.Vertex]; ok {
				continue
			}

			seen[liberty.Vertex] = struct{}{}
			liberties = append(liberties, liberty)
		}
	}

	return liberties, nil
}
