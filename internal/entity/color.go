package entity

// Color is the occupancy state of a single board cell.
type Color string

const (
	ColorBlack Color = "black"
	ColorWhite Color = "white"
	ColorEmpty Color = "empty"
)

// Opposite returns the opponent's color. Empty has no opponent.
func (that Color) Opposite() Color {
	switch that {
	case ColorBlack:
		return ColorWhite
	case ColorWhite:
		return ColorBlack
	default:
		return ColorEmpty
	}
}

func (that Color) IsStone() bool {
	return that == ColorBlack || that == ColorWhite
}

func (that Color) IsValid() bool {
	return that.IsStone() || that == ColorEmpty
}
