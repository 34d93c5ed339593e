package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// The postgres default demands a DSN; supply it the way a deployment
	// would, through the environment.
	t.Setenv("AWTC_STORE_DSN", "postgres://localhost:5432/awtc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8087" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("store.driver = %q", cfg.Store.Driver)
	}
	if cfg.Store.DSN != "postgres://localhost:5432/awtc" {
		t.Errorf("store.dsn = %q, env override ignored", cfg.Store.DSN)
	}
	if cfg.Push.Enabled {
		t.Error("push enabled by default without VAPID keys")
	}
	if cfg.Messaging.Page != "/messages" {
		t.Errorf("messaging.page = %q", cfg.Messaging.Page)
	}
	if cfg.Messaging.MailboxSize != 256 {
		t.Errorf("messaging.mailbox_size = %d", cfg.Messaging.MailboxSize)
	}
	if cfg.Messaging.SendTimeout != 500*time.Millisecond {
		t.Errorf("messaging.send_timeout = %s", cfg.Messaging.SendTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
store:
  driver: memory
messaging:
  page: "/inbox"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("store.driver = %q", cfg.Store.Driver)
	}
	if cfg.Messaging.Page != "/inbox" {
		t.Errorf("messaging.page = %q", cfg.Messaging.Page)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{"bad driver", "store:\n  driver: sqlite\n"},
		{"bad log level", "store:\n  driver: memory\nlog:\n  level: verbose\n"},
		{"push without keys", "store:\n  driver: memory\npush:\n  enabled: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("Load accepted invalid config")
			}
		})
	}
}

func TestHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	write := func(page string, limit int, level string) {
		t.Helper()
		content := fmt.Sprintf(
			"store:\n  driver: memory\nmessaging:\n  page: %q\n  history_limit: %d\nlog:\n  level: %s\n",
			page, limit, level)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	write("/inbox", 50, "info")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MessagingPage() != "/inbox" || cfg.HistoryLimit() != 50 {
		t.Fatalf("initial live values = (%q, %d)", cfg.MessagingPage(), cfg.HistoryLimit())
	}
	if cfg.LogLevel().Level() != slog.LevelInfo {
		t.Fatalf("initial level = %v", cfg.LogLevel().Level())
	}

	// Hammer the accessors from another goroutine while the watcher applies
	// rewrites; the race detector guards the snapshot swap.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if cfg.MessagingPage() == "/messages" && cfg.HistoryLimit() == 75 &&
				cfg.LogLevel().Level() == slog.LevelDebug {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	write("/messages", 75, "debug")
	<-done

	if cfg.MessagingPage() != "/messages" || cfg.HistoryLimit() != 75 {
		t.Fatalf("reloaded live values = (%q, %d)", cfg.MessagingPage(), cfg.HistoryLimit())
	}
	if cfg.LogLevel().Level() != slog.LevelDebug {
		t.Fatalf("reloaded level = %v", cfg.LogLevel().Level())
	}
	// Non-reloadable values keep their boot-time reading.
	if cfg.Server.Addr != ":8087" {
		t.Fatalf("server.addr = %q changed across reload", cfg.Server.Addr)
	}
}

func TestHotReloadSkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	valid := "store:\n  driver: memory\nmessaging:\n  page: \"/inbox\"\n"
	if err := os.WriteFile(path, []byte(valid), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// An invalid rewrite must leave the live snapshot untouched.
	invalid := "store:\n  driver: memory\nmessaging:\n  page: \"\"\n"
	if err := os.WriteFile(path, []byte(invalid), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cfg.MessagingPage() != "/inbox" {
			t.Fatalf("invalid reload applied: page = %q", cfg.MessagingPage())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (LogConfig{Level: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
