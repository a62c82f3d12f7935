package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	st := &State{IsOpen: true, IsFullscreen: true, SessionID: "sess-42"}
	if err := st.saveTo(path); err != nil {
		t.Fatalf("saveTo() = %v", err)
	}

	got := loadFrom(path)
	if got.IsOpen != true || got.IsFullscreen != true || got.SessionID != "sess-42" {
		t.Errorf("loadFrom() = %+v, want saved values", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file mode = %o, want 0600", perm)
	}
}

func TestLoadDegradesToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.json")
			},
		},
		{
			name: "corrupt json",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "state.json")
				if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "state.json")
				if err := os.WriteFile(path, nil, 0600); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loadFrom(tt.setup(t))
			if got.IsOpen || got.IsFullscreen || got.SessionID != "" {
				t.Errorf("loadFrom() = %+v, want zero-value defaults", got)
			}
		})
	}
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	data := []byte(`{"is_open": true, "future_field": 7, "session_id": "s-1"}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	got := loadFrom(path)
	if !got.IsOpen || got.SessionID != "s-1" {
		t.Errorf("loadFrom() = %+v, want known fields preserved", got)
	}
}
