package tui

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/logging"
	"github.com/vovakirdan/tui-2048/internal/metrics"
	"github.com/vovakirdan/tui-2048/internal/spectate"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// Options configures one interactive game.
type Options struct {
	Config    config.Config
	Seed      int64  // 0 seeds from the clock
	Player    string // Stored with finished games
	SessionID string // Spectator stream key

	// Optional collaborators; nil disables each.
	Store      *storage.Store
	Collectors *metrics.Collectors
	Hub        *spectate.Hub
	Logger     *log.Logger

	Width, Height int
	// ScreenshotDir defaults to ~/.t2048/screenshots.
	ScreenshotDir string
}

// Model is the Bubble Tea model for one game session.
type Model struct {
	ctrl   *game.Controller
	view   *BoardView
	screen *core.Screen
	store  *storage.Store
	logger *log.Logger
	keys   KeyMap
	help   help.Model

	cfg           config.Config
	player        string
	screenshotDir string
	width, height int

	now       func() time.Time
	started   time.Time
	recordID  int64 // Row of the saved record for the current game; 0 if unsaved
	seq       int   // Applied move counter used to match highlight ticks
	highlight bool
	status    string
	quitting  bool
}

// NewModel creates the model and starts a game.
func NewModel(opts Options) (Model, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.SessionID != "" {
		logger = logger.With("session", opts.SessionID)
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 80, 24
	}

	view := NewBoardView()
	renderers := game.MultiRenderer{view}
	if opts.Hub != nil {
		renderers = append(renderers, opts.Hub.Session(opts.SessionID))
	}
	var recorder game.Metrics = game.NopMetrics{}
	if opts.Collectors != nil {
		recorder = metrics.NewRecorder(opts.Collectors)
	}

	ctrl, err := game.New(opts.Config, rand.New(rand.NewSource(seed)),
		game.WithRenderer(renderers),
		game.WithMetrics(recorder),
		game.WithLogger(logger),
	)
	if err != nil {
		return Model{}, err
	}

	h := help.New()
	h.Width = width

	m := Model{
		ctrl:          ctrl,
		view:          view,
		store:         opts.Store,
		logger:        logger,
		keys:          DefaultKeyMap(),
		help:          h,
		cfg:           opts.Config,
		player:        opts.Player,
		screenshotDir: opts.ScreenshotDir,
		width:         width,
		height:        height,
		now:           time.Now,
	}
	m.screen = core.NewScreen(width, m.boardHeight())
	m.loadBest()

	ctrl.Start()
	m.started = m.now()
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(m.width, m.boardHeight())
		return m, nil

	case HighlightDoneMsg:
		if msg.Seq == m.seq {
			m.highlight = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.screen.Resize(m.width, m.boardHeight())
		return m, nil

	case key.Matches(msg, m.keys.Screenshot):
		if path, err := m.saveScreenshot(); err != nil {
			m.logger.Warn("screenshot failed", "error", err)
			m.status = "Screenshot failed"
		} else {
			m.status = "Saved " + path
		}
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		return m.restart()

	case key.Matches(msg, m.keys.Continue):
		if m.view.Finished() && m.ctrl.State() == game.StateWon {
			m.view.ClearOverlay()
			if m.ctrl.Continue() == game.SignalStop {
				m.recordGame()
			}
		}
		return m, nil
	}

	dir, ok := m.keys.Direction(msg)
	if !ok || m.view.Finished() {
		return m, nil
	}

	before := m.ctrl.Moves()
	sig, err := m.ctrl.HandleMove(dir)
	if err != nil {
		return m, nil
	}

	var cmd tea.Cmd
	if m.ctrl.Moves() != before {
		m.seq++
		m.highlight = true
		cmd = highlightCmd(m.cfg.Delay(), m.seq)
		if cmd == nil {
			m.highlight = false
		}
	}
	if sig == game.SignalStop {
		m.recordGame()
	}
	return m, cmd
}

func (m Model) restart() (tea.Model, tea.Cmd) {
	m.view.ClearOverlay()
	if err := m.ctrl.Restart(); err != nil {
		m.logger.Error("restart failed", "error", err)
		m.status = "Restart failed"
		return m, nil
	}
	m.started = m.now()
	m.recordID = 0
	m.highlight = false
	m.loadBest()
	return m, nil
}

// recordGame stores the finished game. A game that continues after a win
// and ends again updates its existing record.
func (m *Model) recordGame() {
	snap := m.ctrl.Snapshot()
	if m.store == nil || snap.Score == 0 {
		return
	}

	result := game.ResultLoss
	if snap.Won {
		result = game.ResultWin
	}
	rec := storage.GameRecord{
		Player:    m.player,
		BoardSize: snap.Size,
		Score:     snap.Score,
		MaxTile:   snap.MaxTile,
		Result:    string(result),
		Moves:     snap.Moves,
		Duration:  int(m.now().Sub(m.started).Seconds()),
	}

	if m.recordID != 0 {
		if err := m.store.UpdateGame(m.recordID, rec); err != nil {
			m.logger.Warn("could not update game record", "error", err)
		}
		return
	}
	id, err := m.store.SaveGame(rec)
	if err != nil {
		m.logger.Warn("could not save game record", "error", err)
		return
	}
	m.recordID = id
	m.logger.Debug("game recorded", "id", id, "score", rec.Score, "result", rec.Result)
}

func (m *Model) loadBest() {
	if m.store == nil {
		return
	}
	best, err := m.store.HighScore(m.cfg.BoardSize)
	if err != nil {
		m.logger.Warn("could not load high score", "error", err)
		return
	}
	m.view.SetBest(best)
}

// saveScreenshot writes the current board as plain text.
func (m *Model) saveScreenshot() (string, error) {
	m.view.Draw(m.screen, false)

	dir := m.screenshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		dir = filepath.Join(home, ".t2048", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create screenshot directory: %w", err)
	}

	filename := fmt.Sprintf("t2048_%s.txt", m.now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(m.screen.String()+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("cannot write screenshot: %w", err)
	}
	return path, nil
}

// boardHeight is the terminal height left after the help bar.
func (m Model) boardHeight() int {
	lines := 1
	if m.help.ShowAll {
		lines = 4
	}
	return max(m.height-lines, 0)
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.view.Draw(m.screen, m.highlight)
	bar := m.help.View(m.keys)
	if m.status != "" {
		bar += "  " + m.status
	}
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(bar)
}

// Controller exposes the running game.
func (m Model) Controller() *game.Controller {
	return m.ctrl
}

// Run starts the Bubble Tea program for a local game.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
