package cli

import (
	"testing"

	"github.com/ardnew/cose/log"
)

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"--log-level", "debug", "--log-format", "text", "build"},
			want: logConfig{Level: "debug", Format: "text"},
		},
		{
			name: "assigned values",
			args: []string{"fmt", "--log-level=trace", "tree", "--log-format=json"},
			want: logConfig{Level: "trace", Format: "json"},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Caller: true, Pretty: false},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-caller=false", "--log-pretty=true", "--log-pretty=maybe"},
			want: logConfig{Caller: false, Pretty: true},
		},
		{
			name: "flag-like value is not consumed",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "stops at separator",
			args: []string{"--", "--log-level=error"},
			want: logConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := log.Default()
			t.Cleanup(func() { log.SetDefault(original) })

			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestLogConfig_Scan_ConfiguresLogger(t *testing.T) {
	original := log.Default()
	t.Cleanup(func() { log.SetDefault(original) })

	var f logConfig

	f.scan([]string{"--log-level=warn", "--log-format", "text"})

	if got := log.Default().Level(); got != log.LevelWarn {
		t.Errorf("level = %v, want warn", got)
	}

	if got := log.Default().Format(); got != log.FormatText {
		t.Errorf("format = %v, want text", got)
	}
}
