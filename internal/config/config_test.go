package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subxbot.yaml")
	cfg := Default()
	cfg.Admin.Addr = ":9999"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Admin.Addr != ":9999" {
		t.Fatalf("expected :9999, got %q", got.Admin.Addr)
	}
	if got.Storage.DBPath != cfg.Storage.DBPath {
		t.Fatalf("db path mismatch: %q", got.Storage.DBPath)
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("BOT_API_KEY", "k123")
	cfg := Default()
	cfg.ResolveEnv()
	if cfg.Admin.APIKey != "k123" {
		t.Fatalf("expected env key, got %q", cfg.Admin.APIKey)
	}
}
