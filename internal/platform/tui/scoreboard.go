package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

const maxScores = 100 // Max scores to load per board size

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextSize key.Binding
	PrevSize key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSize, k.PrevSize, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextSize, k.PrevSize},
		{k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextSize: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next size"),
		),
		PrevSize: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev size"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the high score screen.
// Scores are grouped by board size, one tab per size.
type ScoreboardModel struct {
	sizes      []int
	cursor     int
	store      *storage.Store
	scores     []storage.GameRecord
	stats      *storage.Stats
	err        error
	table      table.Model
	showPlayer bool // Wide enough for a player column
	help       help.Model
	keys       ScoreboardKeyMap
	width      int
	height     int
	quitting   bool
}

// NewScoreboardModel creates a scoreboard. The tab for preferredSize is
// selected first when it has scores.
func NewScoreboardModel(store *storage.Store, preferredSize, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}

	if store != nil {
		sizes, err := store.BoardSizes()
		if err != nil {
			m.err = err
		}
		m.sizes = sizes
	}
	if i := slices.Index(m.sizes, preferredSize); i >= 0 {
		m.cursor = i
	}

	m.table = m.createTable()
	m.loadScores()
	return m
}

// createTable creates a new table sized to the terminal.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Score", Width: 10},
		{Title: "Max", Width: 7},
		{Title: "Result", Width: 7},
		{Title: "Moves", Width: 7},
		{Title: "Date", Width: 14},
	}

	// Give leftover space to the player column when there is room
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	if extra := m.width - 6 - used; extra >= 10 {
		columns = slices.Insert(columns, 2, table.Column{Title: "Player", Width: min(extra-2, 16)})
		m.showPlayer = true
	} else {
		m.showPlayer = false
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, stats and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadScores loads scores and stats for the selected board size.
func (m *ScoreboardModel) loadScores() {
	m.scores, m.stats = nil, nil
	if m.store == nil || len(m.sizes) == 0 {
		m.updateTableRows()
		return
	}

	size := m.sizes[m.cursor]
	scores, err := m.store.TopScores(size, maxScores)
	if err != nil {
		m.err = err
	} else {
		m.scores = scores
	}
	if stats, err := m.store.GameStats(size); err == nil {
		m.stats = stats
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		row := table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", s.Score),
		}
		if m.showPlayer {
			row = append(row, s.Player)
		}
		rows[i] = append(row,
			fmt.Sprintf("%d", s.MaxTile),
			s.Result,
			fmt.Sprintf("%d", s.Moves),
			s.CreatedAt.Format("Jan 02 15:04"),
		)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSize):
			if len(m.sizes) > 0 {
				m.cursor = (m.cursor + 1) % len(m.sizes)
				m.loadScores()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevSize):
			if len(m.sizes) > 0 {
				m.cursor = (m.cursor - 1 + len(m.sizes)) % len(m.sizes)
				m.loadScores()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "HIGH SCORES"
	if size, ok := m.SelectedSize(); ok {
		title = fmt.Sprintf("HIGH SCORES - %dx%d", size, size)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width, lipgloss.Width(title)))
	b.WriteString("\n\n")

	if tabs := m.renderTabs(); tabs != "" {
		b.WriteString(tabs)
		b.WriteString("\n\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))
	b.WriteString("\n")

	if line := m.renderStats(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderTabs renders one tab per board size.
func (m ScoreboardModel) renderTabs() string {
	if len(m.sizes) < 2 {
		return ""
	}

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.sizes))
	for i, size := range m.sizes {
		label := fmt.Sprintf("%dx%d", size, size)
		if i == m.cursor {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m ScoreboardModel) renderStats() string {
	if m.stats == nil || m.stats.GamesCount == 0 {
		return ""
	}
	s := m.stats
	return helpStyle.Render(fmt.Sprintf("Games: %d  Wins: %d  Best tile: %d  Avg: %.0f",
		s.GamesCount, s.Wins, s.BestTile, s.AvgScore))
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Padding(1, 2).
			Render("Could not load scores: " + m.err.Error())
	}
	if len(m.scores) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}

	return m.table.View()
}

// SelectedSize returns the board size of the active tab.
func (m ScoreboardModel) SelectedSize() (int, bool) {
	if len(m.sizes) == 0 {
		return 0, false
	}
	return m.sizes[m.cursor], true
}

// centerText left-pads text so it sits centered in width. textWidth is the
// visible width of text, which differs from len for styled strings.
func centerText(text string, width, textWidth int) string {
	if textWidth >= width {
		return text
	}
	return strings.Repeat(" ", (width-textWidth)/2) + text
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(store *storage.Store, preferredSize, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(store, preferredSize, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
