package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Start a game of 2048.

Controls:
  Arrows/WASD/HJKL - Slide tiles
  R                - New game
  C                - Keep playing after a win
  Ctrl+S           - Save a text screenshot
  ?                - Toggle help
  Q/Ctrl+C         - Quit

While playing, spectators can watch at ws://localhost:<metrics-port>/live.

Examples:
  t2048 play
  t2048 play --seed 42
  t2048 play --config ./my-2048.yaml
  T2048_BOARD_SIZE=5 t2048 play`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	// The alt screen owns the terminal, so logs go nowhere unless --log-file is set.
	rt, err := setupRuntime(nil, "t2048")
	if err != nil {
		return err
	}
	defer rt.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	player := os.Getenv("USER")
	err = tui.Run(tui.Options{
		Config:     rt.cfg,
		Seed:       flagSeed,
		Player:     player,
		SessionID:  "local",
		Store:      rt.store,
		Collectors: rt.collectors,
		Hub:        rt.hub,
		Logger:     rt.logger,
		Width:      width,
		Height:     height,
	})
	if err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}
