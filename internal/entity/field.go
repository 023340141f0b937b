package entity

// Field is one board cell. History and capture records share the same shape.
type Field struct {
	Vertex Vertex `json:"vertex"`
	Color  Color  `json:"color"`
}

func NewField(v Vertex, color Color) Field {
	return Field{Vertex: v, Color: color}
}

func (that Field) IsEmpty() bool {
	return that.Color == ColorEmpty
}

// Matches reports whether both fields have the same vertex and color.
func (that Field) Matches(other Field) bool {
	return that.Vertex == other.Vertex && that.Color == other.Color
}
