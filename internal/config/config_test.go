package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RemoteServerPort != Default().RemoteServerPort {
		t.Errorf("expected default port, got %d", cfg.RemoteServerPort)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")

	cfg := Default()
	cfg.RemoteServerPort = 9001
	cfg.FrameQuality = 55

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.RemoteServerPort != 9001 {
		t.Errorf("expected port 9001, got %d", loaded.RemoteServerPort)
	}
	if loaded.FrameQuality != 55 {
		t.Errorf("expected frame quality 55, got %d", loaded.FrameQuality)
	}
}
