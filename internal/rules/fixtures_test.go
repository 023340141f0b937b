package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

const (
	blackID = "black-player"
	whiteID = "white-player"
)

var testPlayers = entity.Players{
	{ID: blackID, Color: entity.ColorBlack},
	{ID: whiteID, Color: entity.ColorWhite},
}

// newTestBoard builds a square board from rows of 'B', 'W' and '.' with black
// to move.
func newTestBoard(t *testing.T, rows ...string) *entity.Board {
	t.Helper()

	board, err := entity.NewBoard(len(rows), blackID)
	require.NoError(t, err)

	for r, row := range rows {
		require.Len(t, row, len(rows))

		for c, cell := range row {
			v := entity.NewVertex(r+1, c+1)

			switch cell {
			case 'B':
				require.NoError(t, board.SetColor(v, entity.ColorBlack))
			case 'W':
				require.NoError(t, board.SetColor(v, entity.ColorWhite))
			}
		}
	}

	return board
}

func emptyBoard(t *testing.T) *entity.Board {
	t.Helper()

	board, err := entity.NewBoard(entity.DefaultBoardSize, blackID)
	require.NoError(t, err)

	return board
}

func black(row, col int) entity.Field {
	return entity.NewField(entity.NewVertex(row, col), entity.ColorBlack)
}

func white(row, col int) entity.Field {
	return entity.NewField(entity.NewVertex(row, col), entity.ColorWhite)
}

func vertices(fields []entity.Field) []entity.Vertex {
	result := make([]entity.Vertex, 0, len(fields))
	for _, field := range fields {
		result = append(result, field.Vertex)
	}

	return result
}
