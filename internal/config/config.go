// Package config provides YAML-based game configuration loading with
// environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

const (
	minBoardSize = 2
	// maxBoardSize keeps the rendered board inside a reasonable terminal.
	maxBoardSize = 16
)

// Config contains all configuration for a 2048 game.
type Config struct {
	BoardSize      int     `yaml:"board_size" env:"T2048_BOARD_SIZE"`
	WinScore       int     `yaml:"win_score" env:"T2048_WIN_SCORE"`
	AnimationDelay float64 `yaml:"animation_delay" env:"T2048_ANIMATION_DELAY"` // Seconds, presentation only
}

// Delay returns AnimationDelay as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.AnimationDelay * float64(time.Second))
}

// Validate checks every field and reports the first problem found.
func (c Config) Validate() error {
	if c.BoardSize < minBoardSize || c.BoardSize > maxBoardSize {
		return fmt.Errorf("%w: board_size %d must be between %d and %d",
			ErrInvalidConfig, c.BoardSize, minBoardSize, maxBoardSize)
	}

	if c.WinScore < 4 || c.WinScore&(c.WinScore-1) != 0 {
		return fmt.Errorf("%w: win_score %d must be a power of two >= 4", ErrInvalidConfig, c.WinScore)
	}
	if maxTile := MaxReachableTile(c.BoardSize); maxTile > 0 && c.WinScore > maxTile {
		return fmt.Errorf("%w: win_score %d is unreachable on a %dx%d board (max %d)",
			ErrInvalidConfig, c.WinScore, c.BoardSize, c.BoardSize, maxTile)
	}

	if c.AnimationDelay < 0 {
		return fmt.Errorf("%w: animation_delay %v must not be negative", ErrInvalidConfig, c.AnimationDelay)
	}
	return nil
}

// MaxReachableTile returns the largest tile that can appear on a size×size
// board, 2^(size²+1), or 0 if that does not fit in an int.
func MaxReachableTile(size int) int {
	exp := size*size + 1
	if exp >= 62 {
		return 0
	}
	return 1 << exp
}
