package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Mode is this node's role.
type Mode string

const (
	ModeTeacher Mode = "Teacher"
	ModeClient  Mode = "Client"
)

const modeFileName = "mode.json"

type modeFile struct {
	Mode Mode `json:"mode"`
}

// LoadMode reads the persisted mode, checking the file next to the
// current executable first (portable install) and falling back to the
// platform user-config directory. An missing or invalid file defaults
// to Client, matching the "unconfigured node observes, doesn't teach"
// default.
func LoadMode() Mode {
	for _, path := range modeSearchPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var mf modeFile
		if err := json.Unmarshal(data, &mf); err != nil {
			continue
		}
		if mf.Mode == ModeTeacher || mf.Mode == ModeClient {
			return mf.Mode
		}
	}
	return ModeClient
}

// SaveMode writes mode to whichever of the search locations already
// exists; if neither exists, it creates the user-config directory and
// writes there.
func SaveMode(mode Mode) error {
	paths := modeSearchPaths()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return writeModeFile(path, mode)
		}
	}

	dir := modeDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return writeModeFile(filepath.Join(dir, modeFileName), mode)
}

func writeModeFile(path string, mode Mode) error {
	data, err := json.Marshal(modeFile{Mode: mode})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// modeSearchPaths returns the ordered candidate locations for the mode
// file: next to the current executable, then the platform user-config
// directory.
func modeSearchPaths() []string {
	var paths []string
	if exePath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exePath), modeFileName))
	}
	paths = append(paths, filepath.Join(modeDir(), modeFileName))
	return paths
}

// modeDir returns the platform user-config directory for the mode file,
// falling back to configDir() if the user-config directory is unknown.
func modeDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "SmartLab")
	}
	return configDir()
}
