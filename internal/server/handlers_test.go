package server

import (
	"testing"
	"time"
)

func TestParseInstallTimeout(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"empty defers to default", "", 0, false},
		{"minutes", "10m", 10 * time.Minute, false},
		{"composite", "1h30m", 90 * time.Minute, false},
		{"zero rejected", "0s", 0, true},
		{"negative rejected", "-5m", 0, true},
		{"garbage rejected", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInstallTimeout(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseInstallTimeout(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInstallTimeout(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseInstallTimeout(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
