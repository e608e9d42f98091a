package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/logging"
	"github.com/vovakirdan/tui-2048/internal/spectate"
)

func TestNewSSHServer(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")

	hub := spectate.NewHub(logging.Discard())
	srv, err := NewSSHServer(cfg, SSHDeps{Hub: hub})
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}
	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", srv.Addr())
	}
	if _, err := os.Stat(cfg.HostKeyPath); err != nil {
		t.Errorf("host key not generated: %v", err)
	}

	a := srv.sessionOptions("alice", 100, 30)
	if a.Player != "alice" || a.Width != 100 || a.Height != 30 || a.Hub != hub {
		t.Errorf("sessionOptions() = %+v", a)
	}
	if !strings.HasPrefix(a.SessionID, "alice-") {
		t.Errorf("session id %q should carry the user", a.SessionID)
	}
	if a.Seed != 0 {
		t.Error("sessions should seed from the clock")
	}
}

func TestNewSSHServerRejectsInvalidGame(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")
	cfg.Game.BoardSize = 1

	if _, err := NewSSHServer(cfg, SSHDeps{}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("NewSSHServer() error = %v, want ErrInvalidConfig", err)
	}
}
