package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned for any direction outside up/down/left/right.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction represents a move direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the four valid directions.
var Directions = []Direction{Up, Down, Left, Right}

// String returns the lowercase name used in logs and metric labels.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// ParseDirection maps a direction name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// orientation describes how a direction reads lines out of the grid.
// vertical lines are columns; reversed lines merge toward the far end.
type orientation struct {
	vertical bool
	reversed bool
}

func (d Direction) orientation() orientation {
	return orientation{
		vertical: d == Up || d == Down,
		reversed: d == Down || d == Right,
	}
}
