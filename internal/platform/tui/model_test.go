package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-2048/internal/board"
	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var arrowKeys = []tea.KeyMsg{
	{Type: tea.KeyUp},
	{Type: tea.KeyLeft},
	{Type: tea.KeyDown},
	{Type: tea.KeyRight},
}

func newTestModel(t *testing.T, cfg config.Config, store *storage.Store) Model {
	t.Helper()
	m, err := NewModel(Options{
		Config:        cfg,
		Seed:          1,
		Player:        "tester",
		Store:         store,
		Width:         80,
		Height:        24,
		ScreenshotDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

// moveOnce presses arrow keys until one of them changes the board.
func moveOnce(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	before := m.ctrl.Moves()
	for _, k := range arrowKeys {
		var cmd tea.Cmd
		m, cmd = update(t, m, k)
		if m.ctrl.Moves() != before {
			return m, cmd
		}
	}
	t.Fatal("no direction changed the board")
	return m, nil
}

func TestKeyMapDirection(t *testing.T) {
	keys := DefaultKeyMap()

	tests := []struct {
		msg  tea.KeyMsg
		want board.Direction
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, board.Up, true},
		{runes("w"), board.Up, true},
		{runes("k"), board.Up, true},
		{tea.KeyMsg{Type: tea.KeyDown}, board.Down, true},
		{runes("s"), board.Down, true},
		{runes("j"), board.Down, true},
		{tea.KeyMsg{Type: tea.KeyLeft}, board.Left, true},
		{runes("a"), board.Left, true},
		{runes("h"), board.Left, true},
		{tea.KeyMsg{Type: tea.KeyRight}, board.Right, true},
		{runes("d"), board.Right, true},
		{runes("l"), board.Right, true},
		{runes("r"), 0, false},
		{runes("q"), 0, false},
		{runes("x"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			got, ok := keys.Direction(tt.msg)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Direction(%q) = %v, %v; want %v, %v", tt.msg.String(), got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatTile(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{2, "2"},
		{2048, "2048"},
		{65536, "65536"},
		{131072, "128K"},
		{1 << 20, "1M"},
		{1 << 29, "512M"},
		{1 << 30, "1G"},
	}

	for _, tt := range tests {
		if got := formatTile(tt.value); got != tt.want {
			t.Errorf("formatTile(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestBoardViewDraw(t *testing.T) {
	v := NewBoardView()
	screen := core.NewScreen(80, 24)

	// Nothing rendered yet
	v.Draw(screen, false)
	if strings.TrimSpace(screen.String()) != "" {
		t.Error("view without a snapshot should draw nothing")
	}

	v.RenderBoard(game.Snapshot{
		Grid:      board.Grid{{2, 0}, {0, 4}},
		Size:      2,
		Score:     12,
		MaxTile:   4,
		Moves:     3,
		WinScore:  2048,
		LastSpawn: &board.Tile{Position: board.Position{Row: 1, Col: 1}, Value: 4},
	})
	v.SetBest(500)
	v.Draw(screen, false)

	out := screen.String()
	for _, want := range []string{"2048", "Score: 12", "Best: 500", "Moves: 3", "Max: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen missing %q:\n%s", want, out)
		}
	}

	// A 2x2 board is 17 wide under a 32x9 frame at (24, 8), so the grid
	// starts at (31, 12). Tiles sit inside the borders.
	if got := screen.GetCell(35, 13); got.Rune != '2' || got.Color != core.TileColor(2) {
		t.Errorf("tile 2 cell = %+v, want '2' in %v", got, core.TileColor(2))
	}
	if got := screen.GetCell(43, 15); got.Rune != '4' || got.Color != core.TileColor(4) {
		t.Errorf("tile 4 cell = %+v, want '4' in %v", got, core.TileColor(4))
	}

	v.Draw(screen, true)
	if got := screen.GetCell(42, 15); got.Rune != '*' || got.Color != core.ColorBrightWhite {
		t.Errorf("highlighted spawn cell = %+v, want '*'", got)
	}
}

func TestBoardViewOverlays(t *testing.T) {
	v := NewBoardView()
	screen := core.NewScreen(80, 24)
	v.RenderBoard(game.Snapshot{Grid: board.Grid{{2, 0}, {0, 0}}, Size: 2, WinScore: 2048})

	v.RenderWin(2100)
	if !v.Finished() {
		t.Fatal("Finished() = false after RenderWin")
	}
	v.Draw(screen, false)
	out := screen.String()
	if !strings.Contains(out, "Congratulations! You've reached 2048!") || !strings.Contains(out, "Score: 2100") {
		t.Errorf("win overlay missing:\n%s", out)
	}

	v.ClearOverlay()
	v.Draw(screen, false)
	if strings.Contains(screen.String(), "Congratulations") {
		t.Error("overlay still drawn after ClearOverlay")
	}

	v.RenderGameOver(3000)
	v.Draw(screen, false)
	out = screen.String()
	if !strings.Contains(out, "Game Over!") || !strings.Contains(out, "Final Score: 3000") {
		t.Errorf("game over overlay missing:\n%s", out)
	}
}

func TestBoardViewTooSmall(t *testing.T) {
	v := NewBoardView()
	v.RenderBoard(game.Snapshot{Grid: board.NewGrid(4), Size: 4, WinScore: 2048})

	screen := core.NewScreen(20, 10)
	v.Draw(screen, false)
	if !strings.Contains(screen.String(), "Window too small") {
		t.Errorf("expected resize hint, got:\n%s", screen.String())
	}
}

func TestNewModelRejectsInvalidConfig(t *testing.T) {
	_, err := NewModel(Options{Config: config.Config{BoardSize: 4, WinScore: 3}})
	if err == nil {
		t.Error("NewModel() with win score 3 should fail")
	}
}

func TestModelStartsGame(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)

	snap := m.ctrl.Snapshot()
	if snap.Grid.TileCount() != 2 || snap.State != game.StatePlaying {
		t.Errorf("new model snapshot = %+v", snap)
	}
	if !strings.Contains(m.View(), "Score: 0") {
		t.Error("View() should show the score")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)

	m, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestModelMoveHighlight(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)

	m, cmd := moveOnce(t, m)
	if !m.highlight || cmd == nil {
		t.Fatalf("highlight=%v cmd=%v after a move, want highlight with a tick", m.highlight, cmd != nil)
	}
	if m.ctrl.Snapshot().Grid.TileCount() < 2 {
		t.Error("move should spawn a tile")
	}

	// A tick from an older move leaves the highlight on
	m, _ = update(t, m, HighlightDoneMsg{Seq: m.seq - 1})
	if !m.highlight {
		t.Error("stale highlight tick cleared the highlight")
	}
	m, _ = update(t, m, HighlightDoneMsg{Seq: m.seq})
	if m.highlight {
		t.Error("highlight still on after its tick")
	}
}

func TestModelNoHighlightWithoutDelay(t *testing.T) {
	cfg := config.Default()
	cfg.AnimationDelay = 0
	m := newTestModel(t, cfg, nil)

	m, cmd := moveOnce(t, m)
	if m.highlight || cmd != nil {
		t.Errorf("highlight=%v cmd=%v with zero delay", m.highlight, cmd != nil)
	}
}

func TestModelRestart(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)
	m, _ = moveOnce(t, m)

	m, _ = update(t, m, runes("r"))
	snap := m.ctrl.Snapshot()
	if snap.Moves != 0 || snap.Score != 0 || snap.Grid.TileCount() != 2 {
		t.Errorf("snapshot after restart = %+v", snap)
	}
	if m.view.Finished() {
		t.Error("restart should clear any overlay")
	}
}

func TestModelResizeAndHelp(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.screen.Width() != 100 || m.screen.Height() != 39 {
		t.Errorf("screen = %dx%d, want 100x39", m.screen.Width(), m.screen.Height())
	}

	m, _ = update(t, m, runes("?"))
	if !m.help.ShowAll || m.screen.Height() != 36 {
		t.Errorf("full help: ShowAll=%v height=%d, want true and 36", m.help.ShowAll, m.screen.Height())
	}
}

func TestModelScreenshot(t *testing.T) {
	m := newTestModel(t, config.Default(), nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.HasPrefix(m.status, "Saved ") {
		t.Fatalf("status = %q, want a saved path", m.status)
	}

	files, err := filepath.Glob(filepath.Join(m.screenshotDir, "t2048_*.txt"))
	if err != nil || len(files) != 1 {
		t.Fatalf("screenshots = %v (err %v), want one file", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), "Score: 0") {
		t.Errorf("screenshot missing HUD:\n%s", data)
	}

	// Any other key clears the status line
	m, _ = update(t, m, runes("x"))
	if m.status != "" {
		t.Errorf("status = %q after another key", m.status)
	}
}

func TestModelRecordsFinishedGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{BoardSize: 3, WinScore: 16}
	m := newTestModel(t, cfg, store)

	// Cycle through the arrows, keeping on after a win, until the game is lost.
	for i := 0; i < 10000 && m.ctrl.State() != game.StateLost; i++ {
		if m.view.Finished() {
			m, _ = update(t, m, runes("c"))
			continue
		}
		m, _ = update(t, m, arrowKeys[i%len(arrowKeys)])
	}
	if m.ctrl.State() != game.StateLost {
		t.Fatalf("game did not end; state %s", m.ctrl.State())
	}
	if !m.view.Finished() {
		t.Error("game over overlay not shown")
	}

	// Moves are ignored behind the overlay
	moves := m.ctrl.Moves()
	for _, k := range arrowKeys {
		m, _ = update(t, m, k)
	}
	if m.ctrl.Moves() != moves {
		t.Error("moves applied while the game over overlay was showing")
	}

	records, err := store.TopScores(3, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	snap := m.ctrl.Snapshot()
	if snap.Score == 0 {
		if len(records) != 0 {
			t.Errorf("scoreless game recorded: %+v", records)
		}
		return
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	wantResult := string(game.ResultLoss)
	if snap.Won {
		wantResult = string(game.ResultWin)
	}
	if rec.Score != snap.Score || rec.Moves != snap.Moves || rec.MaxTile != snap.MaxTile || rec.Result != wantResult {
		t.Errorf("record = %+v, want score %d moves %d max %d result %s",
			rec, snap.Score, snap.Moves, snap.MaxTile, wantResult)
	}
	if rec.Player != "tester" || rec.BoardSize != 3 {
		t.Errorf("record player/size = %q/%d", rec.Player, rec.BoardSize)
	}

	// A new game gets its own record
	m, _ = update(t, m, runes("r"))
	if m.recordID != 0 {
		t.Error("restart kept the previous record id")
	}
}

func TestScoreboardTabs(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, rec := range []storage.GameRecord{
		{BoardSize: 3, Score: 300, MaxTile: 64, Result: "loss", Moves: 40},
		{BoardSize: 4, Score: 4000, MaxTile: 512, Result: "loss", Moves: 300},
		{BoardSize: 4, Score: 25000, MaxTile: 2048, Result: "win", Moves: 1000},
	} {
		if _, err := store.SaveGame(rec); err != nil {
			t.Fatalf("SaveGame() failed: %v", err)
		}
	}

	sb := NewScoreboardModel(store, 4, 100, 30)
	if size, _ := sb.SelectedSize(); size != 4 || len(sb.scores) != 2 {
		t.Fatalf("initial tab size %d with %d scores, want 4 with 2", size, len(sb.scores))
	}
	if sb.scores[0].Score != 25000 {
		t.Errorf("top score = %d, want 25000", sb.scores[0].Score)
	}
	if !strings.Contains(sb.View(), "HIGH SCORES - 4x4") {
		t.Error("title should name the board size")
	}

	next, _ := sb.Update(tea.KeyMsg{Type: tea.KeyTab})
	sb = next.(ScoreboardModel)
	if size, _ := sb.SelectedSize(); size != 3 || len(sb.scores) != 1 {
		t.Errorf("after tab: size %d with %d scores, want 3 with 1", size, len(sb.scores))
	}

	empty := NewScoreboardModel(nil, 4, 80, 24)
	if _, ok := empty.SelectedSize(); ok {
		t.Error("scoreboard without a store has no tabs")
	}
	if !strings.Contains(empty.View(), "No scores recorded yet.") {
		t.Error("empty scoreboard should say so")
	}
}
