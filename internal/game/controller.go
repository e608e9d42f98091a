// Package game runs a single 2048 session on top of the board engine and
// reports what happens to a renderer and a metrics observer.
package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/board"
	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/logging"
)

// Controller owns one game session. It is driven by a single control loop
// and is not safe for concurrent use.
type Controller struct {
	cfg      config.Config
	rng      board.Random
	renderer Renderer
	metrics  Metrics
	logger   *log.Logger

	board     *board.Board
	winScore  int
	state     State
	won       bool
	moves     int
	lastSpawn *board.Tile
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the view collaborator.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithMetrics sets the telemetry collaborator.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller for cfg. The game does not begin until Start.
func New(cfg config.Config, rng board.Random, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("game: nil random source")
	}

	c := &Controller{
		cfg:      cfg,
		rng:      rng,
		renderer: NopRenderer{},
		metrics:  NopMetrics{},
		logger:   logging.Discard(),
		winScore: cfg.WinScore,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) reset() error {
	b, err := board.New(c.cfg.BoardSize, c.rng)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	c.board = b
	c.state = StatePlaying
	c.won = false
	c.moves = 0
	c.lastSpawn = nil
	return nil
}

// Start places the two opening tiles and shows the board.
func (c *Controller) Start() {
	for range 2 {
		c.spawn()
	}
	c.logger.Info("game started", "size", c.board.Size(), "win_score", c.winScore)
	c.notify("game_start", c.metrics.OnGameStart)
	c.renderBoard()
}

// Restart discards the current board and starts a new game with the same
// generator and observers.
func (c *Controller) Restart() error {
	if err := c.reset(); err != nil {
		return err
	}
	c.Start()
	return nil
}

// HandleMove applies one player move and reports whether the control loop
// should keep going. An invalid direction is returned as an error and
// leaves the game untouched.
func (c *Controller) HandleMove(dir board.Direction) (Signal, error) {
	result, err := c.board.Move(dir)
	if err != nil {
		c.logger.Warn("move rejected", "direction", dir, "err", err)
		c.notify("error", func() { c.metrics.OnError(ErrorKindInvalidDirection) })
		return SignalContinue, err
	}
	if !result.Changed() {
		return SignalContinue, nil
	}

	c.moves++
	c.lastSpawn = nil
	c.spawn()
	c.logger.Debug("move applied",
		"direction", dir,
		"gained", result.ScoreGained,
		"merges", result.Merges,
		"score", c.board.Score(),
	)

	c.renderBoard()
	c.notify("move", func() { c.metrics.OnMove(dir) })
	score := c.board.Score()
	c.notify("score", func() { c.metrics.OnScoreChanged(score) })

	if !c.won && c.board.Contains(c.winScore) {
		c.won = true
		c.state = StateWon
		c.logger.Info("game won", "score", score, "moves", c.moves)
		c.notify("render_win", func() { c.renderer.RenderWin(score) })
		c.notify("game_end", func() { c.metrics.OnGameEnd(ResultWin) })
		return SignalStop, nil
	}

	if c.board.IsGameOver() {
		c.lose()
		return SignalStop, nil
	}

	return SignalContinue, nil
}

// Continue resumes play after a win. A won board with no moves left is
// reported lost straight away.
func (c *Controller) Continue() Signal {
	if c.state != StateWon {
		return SignalContinue
	}
	if c.board.IsGameOver() {
		c.lose()
		return SignalStop
	}
	return SignalContinue
}

func (c *Controller) lose() {
	score := c.board.Score()
	c.state = StateLost
	c.logger.Info("game over", "score", score, "moves", c.moves, "max_tile", c.board.MaxTile())
	c.notify("render_game_over", func() { c.renderer.RenderGameOver(score) })
	c.notify("game_end", func() { c.metrics.OnGameEnd(ResultLoss) })
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Won reports whether the win threshold has been reached in this session.
func (c *Controller) Won() bool {
	return c.won
}

// Score returns the current score.
func (c *Controller) Score() int {
	return c.board.Score()
}

// Moves returns the number of applied moves.
func (c *Controller) Moves() int {
	return c.moves
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() config.Config {
	return c.cfg
}

func (c *Controller) spawn() {
	tile, ok := c.board.SpawnTile()
	if !ok {
		return
	}
	c.lastSpawn = &tile
	c.notify("tile_spawned", func() { c.metrics.OnTileSpawned(tile.Value) })
}

func (c *Controller) renderBoard() {
	snap := c.Snapshot()
	c.notify("render_board", func() { c.renderer.RenderBoard(snap) })
}

// notify runs one observer call. A panic is logged and reported as an
// error event; it never reaches the caller.
func (c *Controller) notify(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("observer panicked", "event", event, "panic", r)
			if event != "error" {
				c.notify("error", func() { c.metrics.OnError(ErrorKindObserverPanic) })
			}
		}
	}()
	fn()
}
