package silo

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestConfigPageSize tests that page sizes round up to a power of two
func TestConfigPageSize(t *testing.T) {
	defer restoreConfig(Config)

	tests := []struct {
		set  int
		want int
	}{
		{1, 1},
		{3, 4},
		{16, 16},
		{1000, 1024},
	}
	for _, tt := range tests {
		Config.SetPageSize(tt.set)
		if got := Config.PageSize(); got != tt.want {
			t.Errorf("SetPageSize(%d): %d, want %d", tt.set, got, tt.want)
		}
	}
}

// TestConfigLogger tests that worlds report skipped queued work and teardown to the configured logger
func TestConfigLogger(t *testing.T) {
	defer restoreConfig(Config)

	var buf bytes.Buffer
	Config.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	pos, _, _ := newTestComponents(t)
	world := Factory.NewWorld()
	e, _ := world.NewEntity()
	world.DestroyEntity(e)

	world.Lock()
	world.EnqueueAddComponent(pos, e)
	world.Unlock()
	world.Destroy()

	out := buf.String()
	for _, want := range []string{"skipped queued operation", "operation=add", "world destroyed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Log output missing %q:\n%s", want, out)
		}
	}

	Config.SetLogger(nil)
	if Config.Logger() == nil {
		t.Errorf("Logger() returned nil after reset")
	}
}
