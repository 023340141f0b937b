package entity

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
)

type Status string

const (
	StatusInitialized Status = "initialized"
	StatusRunning     Status = "running"
	StatusEnded       Status = "ended"
	StatusError       Status = "error"
)

const (
	DefaultBoardSize = 9
	// MaxBoardSize is the largest side SGF coordinates can address (a-z, A-Z).
	MaxBoardSize = 52
)

// Board is the game-state snapshot the rules operate on.
type Board struct {
	Fields        []Field `json:"fields"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	History       []Field `json:"history"`
	Captures      []Field `json:"captures"`
	CurrentPlayer string  `json:"current_player"`
	Pass          bool    `json:"pass"`
	Status        Status  `json:"status"`
}

// NewBoard creates an empty square board of the given size. firstPlayerID is
// the roster player who moves first.
func NewBoard(size int, firstPlayerID string) (*Board, error) {
	if size < 1 || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, size)
	}

	fields := make([]Field, 0, size*size)
	for row := 1; row <= size; row++ {
		for col := 1; col <= size; col++ {
			fields = append(fields, NewField(NewVertex(row, col), ColorEmpty))
		}
	}

	return &Board{
		Fields:        fields,
		Width:         size,
		Height:        size,
		History:       []Field{},
		Captures:      []Field{},
		CurrentPlayer: firstPlayerID,
		Status:        StatusInitialized,
	}, nil
}

// Contains reports whether v lies within the board extents.
func (that *Board) Contains(v Vertex) bool {
	return v.Row() >= 1 && v.Row() <= that.Height && v.Col() >= 1 && v.Col() <= that.Width
}

// FieldAt looks a field up by vertex.
func (that *Board) FieldAt(v Vertex) (Field, error) {
	idx, err := that.indexOf(v)
	if err != nil {
		return Field{}, err
	}

	return that.Fields[idx], nil
}

func (that *Board) SetColor(v Vertex, color Color) error {
	idx, err := that.indexOf(v)
	if err != nil {
		return err
	}

	that.Fields[idx].Color = color

	return nil
}

// indexOf finds the slot holding v. Boards built by NewBoard are row-major so
// the computed slot is tried first; anything else falls back to a scan.
func (that *Board) indexOf(v Vertex) (int, error) {
	if that.Contains(v) {
		idx := (v.Row()-1)*that.Width + (v.Col() - 1)
		if idx < len(that.Fields) && that.Fields[idx].Vertex == v {
			return idx, nil
		}
	}

	for idx, field := range that.Fields {
		if field.Vertex == v {
			return idx, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", apperror.ErrVertexNotFound, v)
}

// Clone returns a deep copy sharing no slices with the receiver.
func (that *Board) Clone() *Board {
	clone := *that
	clone.Fields = append(make([]Field, 0, len(that.Fields)), that.Fields...)
	clone.History = append(make([]Field, 0, len(that.History)+1), that.History...)
	clone.Captures = append(make([]Field, 0, len(that.Captures)), that.Captures...)

	return &clone
}

// Validate checks the structural invariants of a board loaded from storage.
func (that *Board) Validate() error {
	if that.Width < 1 || that.Height < 1 || that.Width > MaxBoardSize || that.Height > MaxBoardSize {
		return fmt.Errorf("%w: %dx%d", apperror.ErrInvalidBoardSize, that.Width, that.Height)
	}

	if len(that.Fields) != that.Width*that.Height {
		return fmt.Errorf("%w: %d fields for %dx%d board", apperror.ErrCorruptedBoard, len(that.Fields), that.Width, that.Height)
	}

	seen := make(map[Vertex]struct{}, len(that.Fields))
	for _, field := range that.Fields {
		if !that.Contains(field.Vertex) {
			return fmt.Errorf("%w: field %s outside board", apperror.ErrCorruptedBoard, field.Vertex)
		}

		if !field.Color.IsValid() {
			return fmt.Errorf("%w: unknown color %q at %s", apperror.ErrCorruptedBoard, field.Color, field.Vertex)
		}

		if _, ok := seen[field.Vertex]; ok {
			return fmt.Errorf("%w: duplicate field %s", apperror.ErrCorruptedBoard, field.Vertex)
		}
		seen[field.Vertex] = struct{}{}
	}

	return nil
}

func (that *Board) IsEnded() bool {
	return that.Status == StatusEnded
}

func (that *Board) LastCapture() (Field, bool) {
	if len(that.Captures) == 0 {
		return Field{}, false
	}

	return that.Captures[len(that.Captures)-1], true
}
