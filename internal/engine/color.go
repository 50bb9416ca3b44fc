package engine

type Color string

const (
	ColorRed      Color = "red"
	ColorGreen    Color = "green"
	ColorBlue     Color = "blue"
	ColorYellow   Color = "yellow"
	ColorDarkRed  Color = "darkred"
	ColorLightRed Color = "lightred"
)

// Colors lists every player color in declaration order. Lobby seating and
// turn hand-off both walk this order.
var Colors = []Color{
	ColorRed,
	ColorGreen,
	ColorBlue,
	ColorYellow,
	ColorDarkRed,
	ColorLightRed,
}

func (c Color) Valid() bool {
	return c.Index() >= 0
}

// Index is the position of c in Colors, or -1.
func (c Color) Index() int {
	for i, col := range Colors {
		if col == c {
			return i
		}
	}
	return -1
}

func (c Color) String() string { return string(c) }
