// Package board implements the 2048 grid: line merging, directional moves,
// tile spawning and game-over detection. It has no I/O and no dependency on
// the terminal layer so it can be tested deterministically.
package board

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidSize is returned when a board is created with size < MinSize.
	ErrInvalidSize = errors.New("invalid board size")
	// ErrInvalidGrid is returned when a fixture grid has the wrong shape or values.
	ErrInvalidGrid = errors.New("invalid grid")
)

const (
	// MinSize is the smallest supported board dimension.
	MinSize = 2
	// DefaultSize is the classic 4x4 board.
	DefaultSize = 4
	// Spawn4Probability is the chance that a spawned tile is a 4 instead of a 2.
	Spawn4Probability = 0.1
)

// Random is the randomness source for tile spawning.
// *math/rand.Rand satisfies it; tests supply deterministic stubs.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// MoveStatus tells whether a move was applied, changed nothing, or was rejected.
type MoveStatus int

const (
	MoveApplied MoveStatus = iota
	MoveNoOp
	MoveRejected
)

// String returns the status name.
func (s MoveStatus) String() string {
	switch s {
	case MoveApplied:
		return "applied"
	case MoveNoOp:
		return "noop"
	case MoveRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MoveResult describes the outcome of Board.Move.
type MoveResult struct {
	Direction   Direction
	Status      MoveStatus
	ScoreGained int
	Merges      int // Number of merges performed
}

// Changed reports whether the move altered the grid.
func (r MoveResult) Changed() bool {
	return r.Status == MoveApplied
}

// Board owns the grid and the running score.
// It is not safe for concurrent use.
type Board struct {
	size  int
	cells Grid
	score int
	rng   Random
}

// New creates an empty size×size board using rng for spawns.
func New(size int, rng Random) (*Board, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidSize, size, MinSize)
	}
	if rng == nil {
		return nil, errors.New("board: nil random source")
	}
	return &Board{
		size:  size,
		cells: NewGrid(size),
		rng:   rng,
	}, nil
}

// Size returns the board dimension.
func (b *Board) Size() int {
	return b.size
}

// Score returns the running score.
func (b *Board) Score() int {
	return b.score
}

// Cell returns the value at p.
func (b *Board) Cell(p Position) int {
	return b.cells[p.Row][p.Col]
}

// Snapshot returns a copy of the grid that callers may keep or modify.
func (b *Board) Snapshot() Grid {
	return b.cells.Clone()
}

// Load replaces the grid with a copy of g. The score is left untouched.
// It exists for fixtures and replays; gameplay only mutates the grid
// through Move and SpawnTile.
func (b *Board) Load(g Grid) error {
	if err := g.validate(b.size); err != nil {
		return err
	}
	b.cells = g.Clone()
	return nil
}

// EmptyCells returns the positions of all empty cells in row-major order.
func (b *Board) EmptyCells() []Position {
	var cells []Position
	for r := range b.size {
		for c := range b.size {
			if b.cells[r][c] == 0 {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// MaxTile returns the highest tile value on the board.
func (b *Board) MaxTile() int {
	maxVal := 0
	for _, row := range b.cells {
		for _, v := range row {
			maxVal = max(maxVal, v)
		}
	}
	return maxVal
}

// Contains reports whether any cell equals v.
func (b *Board) Contains(v int) bool {
	for _, row := range b.cells {
		if slices.Contains(row, v) {
			return true
		}
	}
	return false
}

// SpawnTile places a 2 (90%) or 4 (10%) on a uniformly chosen empty cell.
// Returns false when the board is full; that is not an error.
func (b *Board) SpawnTile() (Tile, bool) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return Tile{}, false
	}

	pos := empty[b.rng.Intn(len(empty))]
	value := 2
	if b.rng.Float64() < Spawn4Probability {
		value = 4
	}

	b.cells[pos.Row][pos.Col] = value
	return Tile{Position: pos, Value: value}, true
}

// Move slides all lines in dir and merges equal neighbours.
// An invalid direction is rejected before any cell is touched.
func (b *Board) Move(dir Direction) (MoveResult, error) {
	result := MoveResult{Direction: dir, Status: MoveNoOp}
	if !dir.Valid() {
		result.Status = MoveRejected
		return result, fmt.Errorf("board: move %s: %w", dir, ErrInvalidDirection)
	}

	o := dir.orientation()
	for i := range b.size {
		line := b.line(o, i)
		merged, gained := MergeLine(line)
		if slices.Equal(line, merged) {
			continue
		}

		b.setLine(o, i, merged)
		b.score += gained
		result.ScoreGained += gained
		result.Merges += countMerges(line, merged)
		result.Status = MoveApplied
	}

	return result, nil
}

// IsGameOver returns true if the board is full and no adjacent tiles match.
func (b *Board) IsGameOver() bool {
	for r := range b.size {
		for c := range b.size {
			val := b.cells[r][c]
			if val == 0 {
				return false
			}
			if c < b.size-1 && b.cells[r][c+1] == val {
				return false
			}
			if r < b.size-1 && b.cells[r+1][c] == val {
				return false
			}
		}
	}
	return true
}

// cellIndex maps the k-th element of line i to a grid coordinate.
func (b *Board) cellIndex(o orientation, i, k int) (row, col int) {
	if o.reversed {
		k = b.size - 1 - k
	}
	if o.vertical {
		return k, i
	}
	return i, k
}

// line reads line i in merge order.
func (b *Board) line(o orientation, i int) []int {
	line := make([]int, b.size)
	for k := range b.size {
		r, c := b.cellIndex(o, i, k)
		line[k] = b.cells[r][c]
	}
	return line
}

// setLine writes a merged line back in merge order.
func (b *Board) setLine(o orientation, i int, line []int) {
	for k, v := range line {
		r, c := b.cellIndex(o, i, k)
		b.cells[r][c] = v
	}
}

// countMerges derives the merge count from the drop in tile count.
func countMerges(before, after []int) int {
	count := func(line []int) int {
		n := 0
		for _, v := range line {
			if v != 0 {
				n++
			}
		}
		return n
	}
	return count(before) - count(after)
}
