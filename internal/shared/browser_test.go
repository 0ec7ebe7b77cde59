package shared

import (
	"errors"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	tests := []struct {
		goos    string
		program string
		wantErr bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }

			cmd, err := browserCommand("https://open.spotify.com/track/abc")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd.Args[0] != tt.program {
				t.Errorf("program = %s, want %s", cmd.Args[0], tt.program)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "https://open.spotify.com/track/abc" {
				t.Errorf("url arg = %s", last)
			}
		})
	}
}

func TestOpenBrowserEmptyURL(t *testing.T) {
	if err := OpenBrowser(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
