package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/board"
	"github.com/vovakirdan/tui-2048/internal/config"
)

type fakeRenderer struct {
	boards    []Snapshot
	wins      []int
	gameOvers []int
	panicOn   string
}

func (f *fakeRenderer) RenderBoard(s Snapshot) {
	if f.panicOn == "board" {
		panic("render board")
	}
	f.boards = append(f.boards, s)
}

func (f *fakeRenderer) RenderGameOver(score int) { f.gameOvers = append(f.gameOvers, score) }
func (f *fakeRenderer) RenderWin(score int)      { f.wins = append(f.wins, score) }

type fakeMetrics struct {
	starts  int
	moves   []board.Direction
	scores  []int
	spawned []int
	results []Result
	errors  []string
}

func (f *fakeMetrics) OnGameStart()             { f.starts++ }
func (f *fakeMetrics) OnMove(d board.Direction) { f.moves = append(f.moves, d) }
func (f *fakeMetrics) OnScoreChanged(score int) { f.scores = append(f.scores, score) }
func (f *fakeMetrics) OnTileSpawned(value int)  { f.spawned = append(f.spawned, value) }
func (f *fakeMetrics) OnGameEnd(r Result)       { f.results = append(f.results, r) }
func (f *fakeMetrics) OnError(kind string)      { f.errors = append(f.errors, kind) }

// fixedRandom always picks the first empty cell and spawns a 2.
type fixedRandom struct{}

func (*fixedRandom) Float64() float64 { return 0.99 }
func (*fixedRandom) Intn(int) int     { return 0 }

func newTestController(t *testing.T, cfg config.Config) (*Controller, *fakeRenderer, *fakeMetrics) {
	t.Helper()
	r := &fakeRenderer{}
	m := &fakeMetrics{}
	c, err := New(cfg, rand.New(rand.NewSource(1)), WithRenderer(r), WithMetrics(m))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c, r, m
}

// useFixedRandom swaps in a fresh board driven by fixedRandom.
func useFixedRandom(t *testing.T, c *Controller) {
	t.Helper()
	c.rng = &fixedRandom{}
	b, err := board.New(c.cfg.BoardSize, c.rng)
	if err != nil {
		t.Fatalf("board.New() failed: %v", err)
	}
	c.board = b
}

func load(t *testing.T, c *Controller, g board.Grid) {
	t.Helper()
	if err := c.board.Load(g); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(config.Config{BoardSize: 1, WinScore: 2048}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(config.Default(), nil); err == nil {
		t.Error("New() with nil random source should fail")
	}
}

func TestStartSpawnsTwoTiles(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	c.Start()

	snap := c.Snapshot()
	if got := snap.Grid.TileCount(); got != 2 {
		t.Errorf("tile count after start = %d, want 2", got)
	}
	if snap.State != StatePlaying {
		t.Errorf("State = %s, want playing", snap.State)
	}
	if m.starts != 1 || len(m.spawned) != 2 {
		t.Errorf("metrics starts=%d spawned=%v, want 1 start and 2 spawns", m.starts, m.spawned)
	}
	if len(r.boards) != 1 {
		t.Errorf("RenderBoard called %d times, want 1", len(r.boards))
	}
}

func TestHandleMoveTracksScore(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	load(t, c, board.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	sig, err := c.HandleMove(board.Left)
	if err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}
	if sig != SignalContinue {
		t.Errorf("signal = %s, want continue", sig)
	}
	if c.Score() != 4 {
		t.Errorf("Score() = %d, want 4", c.Score())
	}
	if c.Moves() != 1 {
		t.Errorf("Moves() = %d, want 1", c.Moves())
	}

	snap := c.Snapshot()
	if snap.Grid[0][0] != 4 {
		t.Errorf("merged cell = %d, want 4", snap.Grid[0][0])
	}
	if got := snap.Grid.TileCount(); got != 2 {
		t.Errorf("tile count = %d, want merged tile plus one spawn", got)
	}
	if snap.LastSpawn == nil {
		t.Fatal("LastSpawn not recorded")
	}
	if v := snap.Grid[snap.LastSpawn.Row][snap.LastSpawn.Col]; v != snap.LastSpawn.Value {
		t.Errorf("LastSpawn value %d does not match grid %d", snap.LastSpawn.Value, v)
	}

	if len(r.boards) != 1 || len(m.moves) != 1 || m.moves[0] != board.Left {
		t.Errorf("notifications boards=%d moves=%v", len(r.boards), m.moves)
	}
	if len(m.scores) != 1 || m.scores[0] != 4 {
		t.Errorf("OnScoreChanged = %v, want [4]", m.scores)
	}
}

func TestHandleMoveNoOp(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	grid := board.Grid{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	load(t, c, grid)

	sig, err := c.HandleMove(board.Left)
	if err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}
	if sig != SignalContinue {
		t.Errorf("signal = %s, want continue", sig)
	}
	if !c.Snapshot().Grid.Equal(grid) {
		t.Error("no-op move changed the grid or spawned a tile")
	}
	if c.Moves() != 0 {
		t.Errorf("Moves() = %d, want 0", c.Moves())
	}
	if len(r.boards) != 0 || len(m.moves) != 0 || len(m.spawned) != 0 {
		t.Error("no-op move must not notify observers")
	}
}

func TestHandleMoveInvalidDirection(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	c.Start()
	before := c.Snapshot()

	_, err := c.HandleMove(board.Direction(99))
	if !errors.Is(err, board.ErrInvalidDirection) {
		t.Fatalf("HandleMove() error = %v, want ErrInvalidDirection", err)
	}
	after := c.Snapshot()
	if !after.Grid.Equal(before.Grid) || after.Score != before.Score {
		t.Error("rejected move mutated the game")
	}
	if len(m.errors) != 1 || m.errors[0] != ErrorKindInvalidDirection {
		t.Errorf("OnError = %v, want [%s]", m.errors, ErrorKindInvalidDirection)
	}
	if len(r.boards) != 1 {
		t.Error("rejected move rendered the board")
	}
}

func TestWinLatchesOnce(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	load(t, c, board.Grid{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	sig, err := c.HandleMove(board.Left)
	if err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}
	if sig != SignalStop {
		t.Errorf("signal = %s, want stop on win", sig)
	}
	if c.State() != StateWon || !c.Won() {
		t.Errorf("State() = %s, want won", c.State())
	}
	if len(r.wins) != 1 || r.wins[0] != 2048 {
		t.Errorf("RenderWin = %v, want [2048]", r.wins)
	}

	// Keep playing; the 2048 tile is still on the board.
	for _, dir := range []board.Direction{board.Right, board.Left, board.Down, board.Up} {
		if _, err := c.HandleMove(dir); err != nil {
			t.Fatalf("HandleMove(%s) failed: %v", dir, err)
		}
	}
	if len(r.wins) != 1 {
		t.Errorf("win rendered %d times, want exactly once", len(r.wins))
	}
	if len(m.results) != 1 || m.results[0] != ResultWin {
		t.Errorf("OnGameEnd = %v, want [win]", m.results)
	}
	if c.State() != StateWon {
		t.Errorf("State() = %s, win must stay latched", c.State())
	}
}

func TestWinBeforeLoss(t *testing.T) {
	c, r, m := newTestController(t, config.Config{BoardSize: 2, WinScore: 8})
	useFixedRandom(t, c)
	// Left makes the win tile and the spawn fills the board with no merges left.
	load(t, c, board.Grid{
		{4, 4},
		{2, 16},
	})

	sig, err := c.HandleMove(board.Left)
	if err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}
	if !c.board.IsGameOver() {
		t.Fatalf("fixture should end full; grid:\n%s", c.Snapshot().Grid)
	}
	if sig != SignalStop || c.State() != StateWon {
		t.Errorf("signal=%s state=%s, want stop and won", sig, c.State())
	}
	if len(r.gameOvers) != 0 {
		t.Error("game over rendered although the move reached the win tile")
	}
	if len(m.results) != 1 || m.results[0] != ResultWin {
		t.Errorf("OnGameEnd = %v, want [win]", m.results)
	}
}

func TestContinueAfterWin(t *testing.T) {
	c, r, m := newTestController(t, config.Config{BoardSize: 2, WinScore: 8})
	useFixedRandom(t, c)

	if sig := c.Continue(); sig != SignalContinue || c.State() != StatePlaying {
		t.Errorf("Continue() while playing = %s, state %s", sig, c.State())
	}

	load(t, c, board.Grid{
		{4, 4},
		{2, 16},
	})
	if sig, _ := c.HandleMove(board.Left); sig != SignalStop {
		t.Fatalf("winning move signal = %s, want stop", sig)
	}

	// The winning board has no moves left, so keeping on ends the game.
	if sig := c.Continue(); sig != SignalStop {
		t.Errorf("Continue() on a stuck board = %s, want stop", sig)
	}
	if c.State() != StateLost || !c.Won() {
		t.Errorf("state=%s won=%v, want lost with the win kept", c.State(), c.Won())
	}
	if len(r.gameOvers) != 1 {
		t.Errorf("RenderGameOver called %d times, want 1", len(r.gameOvers))
	}
	want := []Result{ResultWin, ResultLoss}
	if len(m.results) != 2 || m.results[0] != want[0] || m.results[1] != want[1] {
		t.Errorf("OnGameEnd = %v, want %v", m.results, want)
	}

	// Already lost: nothing more happens.
	if sig := c.Continue(); sig != SignalContinue || len(m.results) != 2 {
		t.Errorf("Continue() after loss = %s, results %v", sig, m.results)
	}
}

func TestGameOver(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	useFixedRandom(t, c)
	// Left frees only the last cell; the spawned 2 fills the board with no
	// merges left.
	load(t, c, board.Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{8, 8, 32, 64},
	})

	sig, err := c.HandleMove(board.Left)
	if err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}
	if sig != SignalStop {
		t.Fatalf("signal = %s, want stop; grid:\n%s", sig, c.Snapshot().Grid)
	}
	if c.State() != StateLost {
		t.Errorf("State() = %s, want lost", c.State())
	}
	if len(r.gameOvers) != 1 || r.gameOvers[0] != 16 {
		t.Errorf("RenderGameOver = %v, want [16]", r.gameOvers)
	}
	if len(m.results) != 1 || m.results[0] != ResultLoss {
		t.Errorf("OnGameEnd = %v, want [loss]", m.results)
	}
}

func TestRestart(t *testing.T) {
	c, _, m := newTestController(t, config.Default())
	load(t, c, board.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	if _, err := c.HandleMove(board.Left); err != nil {
		t.Fatalf("HandleMove() failed: %v", err)
	}

	if err := c.Restart(); err != nil {
		t.Fatalf("Restart() failed: %v", err)
	}
	snap := c.Snapshot()
	if snap.Score != 0 || snap.Moves != 0 || snap.State != StatePlaying || snap.Won {
		t.Errorf("restart left stale state: %+v", snap)
	}
	if snap.Grid.TileCount() != 2 {
		t.Errorf("tile count after restart = %d, want 2", snap.Grid.TileCount())
	}
	if m.starts != 1 {
		t.Errorf("OnGameStart = %d, want 1", m.starts)
	}
}

func TestPanickingObserverDoesNotAbortMove(t *testing.T) {
	c, r, m := newTestController(t, config.Default())
	r.panicOn = "board"
	load(t, c, board.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	sig, err := c.HandleMove(board.Left)
	if err != nil || sig != SignalContinue {
		t.Fatalf("HandleMove() = %s, %v", sig, err)
	}
	if c.Score() != 4 {
		t.Errorf("Score() = %d, want 4", c.Score())
	}
	if len(m.scores) != 1 {
		t.Error("later observers were skipped after a panic")
	}
	if len(m.errors) != 1 || m.errors[0] != ErrorKindObserverPanic {
		t.Errorf("OnError = %v, want [%s]", m.errors, ErrorKindObserverPanic)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	c, _, _ := newTestController(t, config.Default())
	c.Start()

	snap := c.Snapshot()
	snap.Grid[0][0] = 1 << 20
	snap.LastSpawn.Value = 1 << 20

	again := c.Snapshot()
	if again.Grid[0][0] == 1<<20 || again.LastSpawn.Value == 1<<20 {
		t.Error("mutating a snapshot changed the controller")
	}
}

func TestMultiRenderer(t *testing.T) {
	a, b := &fakeRenderer{}, &fakeRenderer{}
	multi := MultiRenderer{a, b}
	multi.RenderBoard(Snapshot{Score: 8})
	multi.RenderWin(2048)
	multi.RenderGameOver(12)

	for i, r := range []*fakeRenderer{a, b} {
		if len(r.boards) != 1 || len(r.wins) != 1 || len(r.gameOvers) != 1 {
			t.Errorf("renderer %d missed a notification: %+v", i, r)
		}
	}
}
