package core

// Color represents a foreground color for a screen cell.
// Uses ANSI color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// tileCycle is the colour sequence for tiles 2, 4, 8 ... 64; it repeats
// from 128 upwards.
var tileCycle = []Color{
	ColorGreen,
	ColorYellow,
	ColorRed,
	ColorMagenta,
	ColorBlue,
	ColorCyan,
}

// TileColor returns the colour for a tile value. Empty cells and values
// that are not powers of two use the default colour.
func TileColor(value int) Color {
	if value < 2 || value&(value-1) != 0 {
		return ColorDefault
	}
	exp := 0
	for v := value; v > 1; v >>= 1 {
		exp++
	}
	return tileCycle[(exp-1)%len(tileCycle)]
}
