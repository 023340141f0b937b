// Package sgf renders a game record in Smart Game Format (FF[4]).
package sgf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

const ruleset = "Chinese"

// GameTree is the main line of an SGF record.
type GameTree struct {
	Nodes []Node
}

// Node holds SGF properties such as B[pd] or AB[aa][bb].
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

// root properties are written in this order, anything else after them sorted.
var orderedKeys = []string{"FF", "GM", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "C", "B", "W"}

// FromGame builds the record of a game: a root node followed by one node per
// played stone.
func FromGame(game *entity.Game) (*SGF, error) {
	if game.Board == nil {
		return nil, fmt.Errorf("game %s has no board", game.ID)
	}

	blackPlayer, _ := game.Players.ByColor(entity.ColorBlack)
	whitePlayer, _ := game.Players.ByColor(entity.ColorWhite)

	root := Node{
		Properties: map[string][]string{
			"FF": {"4"},
			"GM": {"1"},
			"SZ": {strconv.Itoa(game.Board.Width)},
			"PB": {blackPlayer.ID},
			"PW": {whitePlayer.ID},
			"DT": {game.CreatedAt.Format(time.DateOnly)},
			"RU": {ruleset},
		},
	}

	if game.Board.Width != game.Board.Height {
		root.Properties["SZ"] = []string{fmt.Sprintf("%d:%d", game.Board.Width, game.Board.Height)}
	}

	if re, ok := result(game); ok {
		root.Properties["RE"] = []string{re}
	}

	tree := &GameTree{Nodes: []Node{root}}
	if err := AddMoves(tree, game.Board.History); err != nil {
		return nil, err
	}

	return &SGF{Root: tree}, nil
}

// AddMoves appends one node per move to the main line of tree.
func AddMoves(tree *GameTree, moves []entity.Field) error {
	for _, move := range moves {
		key, err := colorKey(move.Color)
		if err != nil {
			return err
		}

		tree.Nodes = append(tree.Nodes, Node{
			Properties: map[string][]string{
				key: {Coordinate(move.Vertex)},
			},
		})
	}

	return nil
}

// Coordinate converts a 1-indexed vertex to SGF letters: column first, then
// row. 1-26 map to a-z and 27-52 to A-Z.
func Coordinate(v entity.Vertex) string {
	return string([]byte{coordinateLetter(v.Col()), coordinateLetter(v.Row())})
}

func coordinateLetter(n int) byte {
	if n <= 26 {
		return byte('a' + n - 1)
	}

	return byte('A' + n - 27)
}

func colorKey(color entity.Color) (string, error) {
	switch color {
	case entity.ColorBlack:
		return "B", nil
	case entity.ColorWhite:
		return "W", nil
	default:
		return "", fmt.Errorf("no sgf property for color %q", color)
	}
}

// result renders RE: "B+R" for a win by resignation, otherwise the area
// difference such as "W+7", or "0" for a draw.
func result(game *entity.Game) (string, bool) {
	if winner, ok := game.Players.ByID(game.Winner); ok && game.Winner != "" {
		key, err := colorKey(winner.Color)
		if err == nil {
			return key + "+R", true
		}
	}

	if game.Result == nil {
		return "", false
	}

	switch diff := game.Result.Black - game.Result.White; {
	case diff > 0:
		return fmt.Sprintf("B+%d", diff), true
	case diff < 0:
		return fmt.Sprintf("W+%d", -diff), true
	default:
		return "0", true
	}
}

func Serialize(s *SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")

	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		used := make(map[string]bool, len(node.Properties))
		for _, key := range orderedKeys {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(builder, key, values)
			}
		}

		var rest []string
		for key := range node.Properties {
			if !used[key] {
				rest = append(rest, key)
			}
		}
		slices.Sort(rest)

		for _, key := range rest {
			writeProperty(builder, key, node.Properties[key])
		}
	}
}

func writeProperty(builder *strings.Builder, key string, values []string) {
	builder.WriteString(key)
	for _, value := range values {
		builder.WriteString("[")
		builder.WriteString(escape(value))
		builder.WriteString("]")
	}
}

var escaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

func escape(value string) string {
	return escaper.Replace(value)
}
