package tui

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
)

const (
	cellWidth  = 8 // Width of each cell including its left border
	cellHeight = 2 // Height of each cell including its top border
	hudHeight  = 3
	hudWidth   = 32 // Minimum frame width so the score and best never overlap
)

type overlay int

const (
	overlayNone overlay = iota
	overlayWin
	overlayGameOver
)

// BoardView is the terminal renderer. The controller pushes state into it
// and the Bubble Tea model draws it on every frame.
type BoardView struct {
	snap      game.Snapshot
	hasSnap   bool
	overlay   overlay
	lastScore int
	best      int
}

// NewBoardView creates an empty view.
func NewBoardView() *BoardView {
	return &BoardView{}
}

// RenderBoard keeps the snapshot for the next Draw.
func (v *BoardView) RenderBoard(snap game.Snapshot) {
	v.snap = snap
	v.hasSnap = true
}

// RenderGameOver shows the game-over overlay with the final score.
func (v *BoardView) RenderGameOver(score int) {
	v.overlay = overlayGameOver
	v.lastScore = score
}

// RenderWin shows the win overlay.
func (v *BoardView) RenderWin(score int) {
	v.overlay = overlayWin
	v.lastScore = score
}

// ClearOverlay hides the win or game-over message.
func (v *BoardView) ClearOverlay() {
	v.overlay = overlayNone
}

// Finished reports whether a win or game-over message is showing.
func (v *BoardView) Finished() bool {
	return v.overlay != overlayNone
}

// SetBest sets the best score shown in the HUD.
func (v *BoardView) SetBest(score int) {
	v.best = score
}

// Size returns the screen area the board needs, HUD included.
func (v *BoardView) Size() (w, h int) {
	return max(v.boardWidth(), hudWidth), hudHeight + 1 + v.snap.Size*cellHeight + 1
}

func (v *BoardView) boardWidth() int {
	return v.snap.Size*cellWidth + 1
}

// Draw renders the view into dst. When highlight is set the most recently
// spawned tile stands out.
func (v *BoardView) Draw(dst *core.Screen, highlight bool) {
	dst.Clear()
	if !v.hasSnap {
		return
	}

	area := core.NewRect(0, 0, dst.Width(), dst.Height())
	w, h := v.Size()
	if !area.Fits(w, h) {
		v.drawTooSmall(dst)
		return
	}

	frame := area.Centered(w, h)
	bw := v.boardWidth()
	boardRect := core.NewRect(frame.X+(w-bw)/2, frame.Y+hudHeight+1, bw, h-hudHeight-1)

	v.drawHUD(dst, frame)
	v.drawGrid(dst, boardRect)
	v.drawTiles(dst, boardRect, highlight)

	switch v.overlay {
	case overlayWin:
		drawOverlay(dst, boardRect, core.ColorGreen,
			fmt.Sprintf("Congratulations! You've reached %d!", v.snap.WinScore),
			fmt.Sprintf("Score: %d", v.lastScore),
			"c: keep playing  r: new game",
		)
	case overlayGameOver:
		drawOverlay(dst, boardRect, core.ColorRed,
			"Game Over!",
			fmt.Sprintf("Final Score: %d", v.lastScore),
			"r: new game  q: quit",
		)
	}
}

func (v *BoardView) drawTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorYellow)
	dst.DrawTextCentered(y+1, "Please resize terminal", core.ColorDefault)
}

// drawHUD draws the title, score and best score above the board.
func (v *BoardView) drawHUD(dst *core.Screen, frame core.Rect) {
	title := "2048"
	if v.snap.WinScore != 2048 {
		title = fmt.Sprintf("2048 · goal %d", v.snap.WinScore)
	}
	dst.DrawTextColored(frame.X+(frame.W-utf8.RuneCountInString(title))/2, frame.Y, title, core.ColorBrightYellow)

	dst.DrawTextColored(frame.X, frame.Y+1, fmt.Sprintf("Score: %d", v.snap.Score), core.ColorBrightWhite)

	best := fmt.Sprintf("Best: %d", max(v.best, v.snap.Score))
	dst.DrawText(frame.Right()-len(best), frame.Y+1, best)

	info := fmt.Sprintf("Moves: %d  Max: %d", v.snap.Moves, v.snap.MaxTile)
	dst.DrawTextColored(frame.X, frame.Y+2, info, core.ColorGray)
}

// drawGrid draws the cell borders.
func (v *BoardView) drawGrid(dst *core.Screen, r core.Rect) {
	n := v.snap.Size
	for y := range n + 1 {
		for x := range n + 1 {
			px := r.X + x*cellWidth
			py := r.Y + y*cellHeight

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == n:
				corner = '┐'
			case y == n && x == 0:
				corner = '└'
			case y == n && x == n:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == n:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == n:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetCell(px, py, core.Cell{Rune: corner, Color: core.ColorGray})

			if x < n {
				for i := 1; i < cellWidth; i++ {
					dst.SetCell(px+i, py, core.Cell{Rune: '─', Color: core.ColorGray})
				}
			}
			if y < n {
				for i := 1; i < cellHeight; i++ {
					dst.SetCell(px, py+i, core.Cell{Rune: '│', Color: core.ColorGray})
				}
			}
		}
	}
}

func (v *BoardView) drawTiles(dst *core.Screen, r core.Rect, highlight bool) {
	spawn := v.snap.LastSpawn
	for row, cells := range v.snap.Grid {
		for col, val := range cells {
			if val == 0 {
				continue
			}

			text := formatTile(val)
			color := core.TileColor(val)
			if highlight && spawn != nil && spawn.Row == row && spawn.Col == col {
				text = "*" + text + "*"
				color = core.ColorBrightWhite
			}

			inner := cellWidth - 1
			pad := max((inner-len(text))/2, 0)
			x := r.X + col*cellWidth + 1 + pad
			y := r.Y + row*cellHeight + 1
			dst.DrawTextColored(x, y, text, color)
		}
	}
}

// drawOverlay draws a boxed message centered on r.
func drawOverlay(dst *core.Screen, r core.Rect, color core.Color, lines ...string) {
	width := 0
	for _, line := range lines {
		width = max(width, utf8.RuneCountInString(line))
	}

	box := r.Centered(width+4, len(lines)+2)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box, color)

	cx, _ := box.Center()
	for i, line := range lines {
		lineColor := core.ColorBrightWhite
		if i == 0 {
			lineColor = color
		}
		dst.DrawTextColored(cx-utf8.RuneCountInString(line)/2, box.Y+1+i, line, lineColor)
	}
}

// formatTile fits a tile value into a cell, abbreviating large values.
func formatTile(v int) string {
	s := strconv.Itoa(v)
	const width = cellWidth - 3 // Leave room for the highlight markers
	if len(s) <= width {
		return s
	}
	// Largest unit first so 2^30 reads 1G rather than 1024M
	for _, unit := range []struct {
		shift  uint
		suffix string
	}{{30, "G"}, {20, "M"}, {10, "K"}} {
		if v >= 1<<unit.shift {
			return strconv.Itoa(v>>unit.shift) + unit.suffix
		}
	}
	return s
}

var _ game.Renderer = (*BoardView)(nil)
