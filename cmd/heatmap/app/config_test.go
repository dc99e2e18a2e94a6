package app

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestParseArgs(t *testing.T) {
	c, err := ParseArgs("heatmap", []string{
		"-db", "capture.sqlite",
		"-s", "3",
		"-o", "out/waterfall",
		"-f", "JPEG",
		"-theme", "thermal",
		"-tz", "UTC",
		"-from", "2024-05-01T12:00:00Z",
		"-min-power", "-120.5",
		"-complete-only",
	}, io.Discard)
	if err != nil {
		t.Fatalf("Failed to parse args: %v", err)
	}

	if c.SessionID != 3 || c.Format != ImageJPEG || c.Theme != ThermalTheme {
		t.Errorf("Unexpected config %+v", c)
	}
	if c.OutputFile != "out/waterfall.jpeg" {
		t.Errorf("Expected output file out/waterfall.jpeg, got %s", c.OutputFile)
	}
	if c.TimeZone != time.UTC {
		t.Errorf("Expected UTC, got %s", c.TimeZone)
	}
	if c.StartTime == nil || !c.StartTime.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start time %v", c.StartTime)
	}
	if c.EndTime != nil {
		t.Errorf("Expected no end time, got %v", c.EndTime)
	}
	if c.MinPower == nil || *c.MinPower != -120.5 || c.MaxPower != nil {
		t.Errorf("Expected only min power set, got %v / %v", c.MinPower, c.MaxPower)
	}
	if !c.CompleteOnly {
		t.Error("Expected complete only")
	}
}

func TestParseArgs_KeepsExtension(t *testing.T) {
	c, err := ParseArgs("heatmap", []string{"-db", "a.sqlite", "-o", "w.png"}, io.Discard)
	if err != nil {
		t.Fatalf("Failed to parse args: %v", err)
	}
	if c.OutputFile != "w.png" {
		t.Errorf("Expected w.png, got %s", c.OutputFile)
	}
}

func TestParseArgs_List(t *testing.T) {
	c, err := ParseArgs("heatmap", []string{"-db", "a.sqlite", "-list"}, io.Discard)
	if err != nil {
		t.Fatalf("Failed to parse args: %v", err)
	}
	if !c.ListSessions {
		t.Error("Expected list sessions")
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no db", args: []string{"-o", "x"}, want: "db path"},
		{name: "no output", args: []string{"-db", "a"}, want: "output file"},
		{name: "session", args: []string{"-db", "a", "-o", "x", "-s", "0"}, want: "session id"},
		{name: "format", args: []string{"-db", "a", "-o", "x", "-f", "gif"}, want: "image format"},
		{name: "theme", args: []string{"-db", "a", "-o", "x", "-theme", "neon"}, want: "color theme"},
		{name: "time zone", args: []string{"-db", "a", "-o", "x", "-tz", "Mars/Olympus"}, want: "time zone"},
		{name: "time", args: []string{"-db", "a", "-o", "x", "-to", "yesterday"}, want: "end time"},
		{name: "range", args: []string{"-db", "a", "-o", "x", "-from", "2024-05-02T00:00:00Z", "-to", "2024-05-01T00:00:00Z"}, want: "after end time"},
		{name: "power", args: []string{"-db", "a", "-o", "x", "-min-power", "-50", "-max-power", "-60"}, want: "min power"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs("heatmap", tt.args, io.Discard)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
