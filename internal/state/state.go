// Package state persists the small slice of UI state that survives a
// restart. It is a best-effort key/value store: a missing or corrupt
// file degrades to defaults and never surfaces an error to the caller.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const stateDir = ".askdesk"
const stateFile = "state.json"

type State struct {
	IsOpen       bool   `json:"is_open"`
	IsFullscreen bool   `json:"is_fullscreen"`
	SessionID    string `json:"session_id,omitempty"`
}

func statePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, stateDir, stateFile), nil
}

// Load reads the persisted state. Any failure returns defaults.
func Load() *State {
	path, err := statePath()
	if err != nil {
		return &State{}
	}
	return loadFrom(path)
}

func loadFrom(path string) *State {
	data, err := os.ReadFile(path)
	if err != nil {
		return &State{}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return &State{}
	}
	return &st
}

// Save writes the state. Best effort: the returned error is informative
// only and safe to ignore.
func (s *State) Save() error {
	path, err := statePath()
	if err != nil {
		return err
	}
	return s.saveTo(path)
}

func (s *State) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
