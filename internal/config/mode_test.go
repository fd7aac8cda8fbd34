package config

import "testing"

func TestLoadModeDefaultsToClientWhenNoFileExists(t *testing.T) {
	configDirOverride = t.TempDir()
	t.Cleanup(func() { configDirOverride = "" })

	if got := LoadMode(); got != ModeClient {
		t.Errorf("expected default mode Client, got %s", got)
	}
}

func TestSaveModeRoundTrip(t *testing.T) {
	configDirOverride = t.TempDir()
	t.Cleanup(func() { configDirOverride = "" })

	if err := SaveMode(ModeTeacher); err != nil {
		t.Fatalf("unexpected error saving mode: %v", err)
	}

	got := LoadMode()
	if got != ModeTeacher {
		t.Errorf("expected persisted mode Teacher, got %s", got)
	}
}
