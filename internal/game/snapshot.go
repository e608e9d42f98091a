package game

import "github.com/vovakirdan/tui-2048/internal/board"

// State is the controller's position in the Playing/Won/Lost machine.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Signal tells the control loop whether to keep requesting moves.
type Signal int

const (
	SignalContinue Signal = iota
	SignalStop
)

// String returns the signal name.
func (s Signal) String() string {
	if s == SignalStop {
		return "stop"
	}
	return "continue"
}

// Snapshot captures the game state handed to renderers.
// Grid is a private copy; mutating it has no effect on the game.
type Snapshot struct {
	Grid      board.Grid
	Size      int
	Score     int
	MaxTile   int
	Moves     int
	WinScore  int
	State     State
	Won       bool        // Win latched, even if play continued afterwards
	LastSpawn *board.Tile // Tile spawned by the most recent move, if any
}

// Snapshot returns the current game snapshot.
func (c *Controller) Snapshot() Snapshot {
	var last *board.Tile
	if c.lastSpawn != nil {
		t := *c.lastSpawn
		last = &t
	}

	return Snapshot{
		Grid:      c.board.Snapshot(),
		Size:      c.board.Size(),
		Score:     c.board.Score(),
		MaxTile:   c.board.MaxTile(),
		Moves:     c.moves,
		WinScore:  c.winScore,
		State:     c.state,
		Won:       c.won,
		LastSpawn: last,
	}
}
