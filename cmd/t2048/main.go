// t2048 is the 2048 sliding tile game for the terminal.
//
// Usage:
//
//	t2048                    - Play a game (same as t2048 play)
//	t2048 play               - Play a game
//	t2048 scores             - Show high scores per board size
//	t2048 serve              - Start SSH server for remote play
//	t2048 config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>       - Game config YAML (default search: ~/.t2048, ./configs)
//	--seed <value>        - Set RNG seed for reproducible gameplay
//	--db <path>           - Set database path (default: ~/.t2048/scores.db)
//	--log-level <level>   - debug, info, warn, error
//	--log-file <path>     - Write logs to a file
//	--metrics-port <port> - Prometheus and spectator port (0 disables)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	// Global flags
	flagConfig      string
	flagSeed        int64
	flagDBPath      string
	flagLogLevel    string
	flagLogFile     string
	flagMetricsPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "t2048",
	Short: "2048 - Slide and merge tiles in your terminal",
	Long: `2048 for the terminal. Slide the tiles with the arrow keys, merge equal
tiles and reach the 2048 tile.

Available commands:
  play     - Play a game (default)
  scores   - View high scores
  serve    - Start SSH server for remote play
  config   - Print the effective configuration

Examples:
  t2048
  t2048 play --seed 42
  t2048 --config ./big-board.yaml
  t2048 serve --addr :2222
  t2048 scores --size 5`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().IntVar(&flagMetricsPort, "metrics-port", 8888, "Port for /metrics and /live (0 disables)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
