package entity

import "fmt"

// Vertex is a 1-indexed {row, col} board coordinate.
type Vertex [2]int

func NewVertex(row, col int) Vertex {
	return Vertex{row, col}
}

func (that Vertex) Row() int {
	return that[0]
}

func (that Vertex) Col() int {
	return that[1]
}

func (that Vertex) String() string {
	return fmt.Sprintf("(%d,%d)", that[0], that[1])
}
