package rules

import (
	"math"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// CalculateDominance counts every stone for its own color and every empty
// region for the single color bordering it. Regions bordering both colors, or
// none, are neutral. Percentages are rounded independently and need not add
// up to 100.
func CalculateDominance(board *entity.Board) entity.Dominance {
	var result entity.Dominance
	visited := make(map[entity.Vertex]struct{}, len(board.Fields))

	for _, field := range board.Fields {
		if _, ok := visited[field.Vertex]; ok {
			continue
		}

		switch field.Color {
		case entity.ColorBlack:
			visited[field.Vertex] = struct{}{}
			result.Black++
		case entity.ColorWhite:
			visited[field.Vertex] = struct{}{}
			result.White++
		default:
			size, borders := floodRegion(board, field.Vertex, visited)

			_, black := borders[entity.ColorBlack]
			_, white := borders[entity.ColorWhite]

			switch {
			case black && !white:
				result.Black += size
			case white && !black:
				result.White += size
			default:
				result.Neutral += size
			}
		}
	}

	area := board.Width * board.Height
	if area > 0 {
		result.BlackPercentage = percentage(result.Black, area)
		result.WhitePercentage = percentage(result.White, area)
	}

	return result
}

// floodRegion sweeps the empty region containing start breadth-first, marking
// every swept vertex in visited. It returns the region size and the set of
// stone colors found on its border.
func floodRegion(board *entity.Board, start entity.Vertex, visited map[entity.Vertex]struct{}) (int, map[entity.Color]struct{}) {
	borders := make(map[entity.Color]struct{}, 2)
	queue := []entity.Vertex{start}
	visited[start] = struct{}{}

	for next := 0; next < len(queue); next++ {
		// vertices in the queue come from the board, so the lookup cannot fail
		neighbors, _ := DirectNeighbors(board, queue[next])

		for _, field := range neighbors {
			if field.Color.IsStone() {
				borders[field.Color] = struct{}{}
				continue
			}

			if _, ok := visited[field.Vertex]; ok {
				continue
			}

			visited[field.Vertex] = struct{}{}
			queue = append(queue, field.Vertex)
		}
	}

	return len(queue), borders
}

func percentage(score, area int) int {
	return int(math.Round(float64(score) / float64(area) * 100))
}
