package main

import "testing"

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"long token", "abcd1234efgh5678", "abcd...5678"},
		{"short token fully masked", "abc", "********"},
		{"boundary length", "12345678", "********"},
		{"nine characters", "123456789", "1234...6789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskToken(tt.token); got != tt.want {
				t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestOrUnset(t *testing.T) {
	if got := orUnset(""); got != "(not set)" {
		t.Errorf("orUnset(\"\") = %q", got)
	}
	if got := orUnset("http://x"); got != "http://x" {
		t.Errorf("orUnset() = %q, want passthrough", got)
	}
}
