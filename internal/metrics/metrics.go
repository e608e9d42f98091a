// Package metrics exports game telemetry to Prometheus.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/tui-2048/internal/board"
	"github.com/vovakirdan/tui-2048/internal/game"
)

// Collectors holds the process-wide metric vectors. One set is shared by
// every game in the process; Recorder adds per-game state on top.
type Collectors struct {
	Moves    *prometheus.CounterVec
	Score    prometheus.Gauge
	Duration prometheus.Histogram
	Errors   *prometheus.CounterVec
	Spawned  *prometheus.CounterVec
	Results  *prometheus.CounterVec
	Started  prometheus.Counter
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_moves_total",
			Help: "Total number of applied moves.",
		}, []string{"direction"}),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_score",
			Help: "Most recently reported game score.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_duration_seconds",
			Help:    "Time from game start to win or loss.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}),
		Spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_tiles_spawned",
			Help: "Tiles spawned by value.",
		}, []string{"value"}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_results_total",
			Help: "Finished games by result.",
		}, []string{"result"}),
		Started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_started_total",
			Help: "Total number of games started.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.Moves, c.Score, c.Duration, c.Errors, c.Spawned, c.Results, c.Started,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: cannot register collector: %w", err)
		}
	}
	return c, nil
}

// Recorder implements game.Metrics for a single game session.
type Recorder struct {
	c       *Collectors
	now     func() time.Time
	started time.Time
	ended   bool // Outcome already counted for the current game
}

// NewRecorder creates a recorder feeding c.
func NewRecorder(c *Collectors) *Recorder {
	return &Recorder{c: c, now: time.Now}
}

// OnGameStart counts a new game and starts its clock.
func (r *Recorder) OnGameStart() {
	r.started = r.now()
	r.ended = false
	r.c.Started.Inc()
	r.c.Score.Set(0)
}

// OnMove counts an applied move by direction.
func (r *Recorder) OnMove(dir board.Direction) {
	r.c.Moves.WithLabelValues(dir.String()).Inc()
}

// OnScoreChanged sets the current score gauge.
func (r *Recorder) OnScoreChanged(score int) {
	r.c.Score.Set(float64(score))
}

// OnTileSpawned counts a spawned tile by value.
func (r *Recorder) OnTileSpawned(value int) {
	r.c.Spawned.WithLabelValues(strconv.Itoa(value)).Inc()
}

// OnGameEnd counts the outcome and observes the duration once per game.
// A game continued after a win and lost later keeps its win.
func (r *Recorder) OnGameEnd(result game.Result) {
	if r.ended {
		return
	}
	r.ended = true
	r.c.Results.WithLabelValues(string(result)).Inc()
	if !r.started.IsZero() {
		r.c.Duration.Observe(r.now().Sub(r.started).Seconds())
	}
}

// OnError counts an error by kind.
func (r *Recorder) OnError(kind string) {
	r.c.Errors.WithLabelValues(kind).Inc()
}

var _ game.Metrics = (*Recorder)(nil)
