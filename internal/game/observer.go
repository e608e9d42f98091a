package game

import (
	"github.com/vovakirdan/tui-2048/internal/board"
)

// Result is the outcome reported when a game ends.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Error kinds reported through Metrics.OnError.
const (
	ErrorKindInvalidDirection = "invalid_direction"
	ErrorKindObserverPanic    = "observer_panic"
)

// Renderer presents the game. It receives copies of the board and must not
// assume it can influence game state.
type Renderer interface {
	RenderBoard(snap Snapshot)
	RenderGameOver(score int)
	RenderWin(score int)
}

// Metrics receives best-effort telemetry notifications.
// Return values are never consulted and failures never abort a move.
type Metrics interface {
	OnGameStart()
	OnMove(dir board.Direction)
	OnScoreChanged(score int)
	OnTileSpawned(value int)
	OnGameEnd(result Result)
	OnError(kind string)
}

// MultiRenderer fans every notification out to each renderer in order.
type MultiRenderer []Renderer

// RenderBoard forwards the snapshot to every renderer.
func (m MultiRenderer) RenderBoard(snap Snapshot) {
	for _, r := range m {
		r.RenderBoard(snap)
	}
}

// RenderGameOver forwards the final score to every renderer.
func (m MultiRenderer) RenderGameOver(score int) {
	for _, r := range m {
		r.RenderGameOver(score)
	}
}

// RenderWin forwards the winning score to every renderer.
func (m MultiRenderer) RenderWin(score int) {
	for _, r := range m {
		r.RenderWin(score)
	}
}

// NopRenderer discards all view requests. Its methods do nothing.
type NopRenderer struct{}

func (NopRenderer) RenderBoard(Snapshot) {}
func (NopRenderer) RenderGameOver(int)   {}
func (NopRenderer) RenderWin(int)        {}

// NopMetrics discards all notifications. Its methods do nothing.
type NopMetrics struct{}

func (NopMetrics) OnGameStart()           {}
func (NopMetrics) OnMove(board.Direction) {}
func (NopMetrics) OnScoreChanged(int)     {}
func (NopMetrics) OnTileSpawned(int)      {}
func (NopMetrics) OnGameEnd(Result)       {}
func (NopMetrics) OnError(string)         {}

var (
	_ Renderer = MultiRenderer(nil)
	_ Renderer = NopRenderer{}
	_ Metrics  = NopMetrics{}
)
