package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagScoresSize  int
	flagScoresLimit int
	flagInteractive bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top scores for each board size.

Examples:
  t2048 scores
  t2048 scores --size 5
  t2048 scores -i
  t2048 scores --size 3 --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresSize, "size", 0, "Only show this board size")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores per board size")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in a full screen table")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the scores of --size")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if flagScoresSize == 0 {
			return errors.New("--clear needs --size")
		}
		if err := store.ClearScores(flagScoresSize); err != nil {
			return err
		}
		fmt.Printf("Cleared %dx%d scores\n", flagScoresSize, flagScoresSize)
		return nil
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		preferred := flagScoresSize
		if preferred == 0 {
			preferred = config.Default().BoardSize
		}
		return tui.RunScoreboard(store, preferred, width, height)
	}

	sizes := []int{flagScoresSize}
	if flagScoresSize == 0 {
		if sizes, err = store.BoardSizes(); err != nil {
			return fmt.Errorf("error retrieving scores: %w", err)
		}
	}

	if len(sizes) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 't2048' to set the first high score!")
		return nil
	}

	for i, size := range sizes {
		if i > 0 {
			fmt.Println()
		}
		if err := printScores(store, size); err != nil {
			return err
		}
	}
	return nil
}

func printScores(store *storage.Store, size int) error {
	scores, err := store.TopScores(size, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("error retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %dx%d\n", size, size)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-6s  %-6s  %-6s  %-12s  %s\n", "Rank", "Score", "Max", "Result", "Moves", "Player", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-6s  %-6s  %-12s  %s\n", "----", "-----", "---", "------", "-----", "------", "----")

	for i, r := range scores {
		fmt.Printf("  %-4d  %-8d  %-6d  %-6s  %-6d  %-12s  %s\n",
			i+1, r.Score, r.MaxTile, r.Result, r.Moves, r.Player, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GameStats(size); err == nil {
		fmt.Println()
		fmt.Printf("Best: %d  Games: %d  Wins: %d  Best tile: %d\n",
			stats.HighScore, stats.GamesCount, stats.Wins, stats.BestTile)
	}
	return nil
}
