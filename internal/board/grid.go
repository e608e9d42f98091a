package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a 0-indexed (row, col) coordinate on the grid.
type Position struct {
	Row int
	Col int
}

// Tile is a value placed at a position.
type Tile struct {
	Position
	Value int
}

// Grid is a square matrix of tile values. Zero means empty.
type Grid [][]int

// NewGrid returns an empty size×size grid.
func NewGrid(size int) Grid {
	g := make(Grid, size)
	for r := range g {
		g[r] = make([]int, size)
	}
	return g
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for r := range g {
		c[r] = append([]int(nil), g[r]...)
	}
	return c
}

// Equal reports whether both grids hold the same values.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for r := range g {
		if len(g[r]) != len(other[r]) {
			return false
		}
		for c := range g[r] {
			if g[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// TileCount returns the number of non-empty cells.
func (g Grid) TileCount() int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Sum returns the sum of all tile values.
func (g Grid) Sum() int {
	total := 0
	for _, row := range g {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// String renders the grid one row per line, e.g. "2 0 4 0".
func (g Grid) String() string {
	var sb strings.Builder
	for r, row := range g {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	return sb.String()
}

// validate checks that g is square with the given size and holds only
// zero or powers of two >= 2.
func (g Grid) validate(size int) error {
	if len(g) != size {
		return fmt.Errorf("%w: %d rows, want %d", ErrInvalidGrid, len(g), size)
	}
	for r, row := range g {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, r, len(row), size)
		}
		for c, v := range row {
			if v != 0 && !IsTileValue(v) {
				return fmt.Errorf("%w: cell (%d,%d) = %d", ErrInvalidGrid, r, c, v)
			}
		}
	}
	return nil
}

// IsTileValue reports whether v is a power of two >= 2.
func IsTileValue(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
