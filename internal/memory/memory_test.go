package memory

import (
	"math"
	"runtime/debug"
	"testing"
)

func restoreMemLimit(t *testing.T) {
	t.Helper()
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })
}

func TestConfigureFromEnvUnset(t *testing.T) {
	restoreMemLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")

	result := ConfigureFromEnv()
	if result.Configured {
		t.Error("should not configure without any limit env var")
	}
	if result.Source != "none" {
		t.Errorf("Source = %q, want none", result.Source)
	}
}

func TestConfigureFromEnvMemoryLimit(t *testing.T) {
	restoreMemLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1073741824")

	result := ConfigureFromEnv()
	if !result.Configured {
		t.Fatal("should configure from MEMORY_LIMIT")
	}
	if result.Source != "MEMORY_LIMIT" {
		t.Errorf("Source = %q", result.Source)
	}
	limit := float64(1073741824)
	want := int64(limit * DefaultMemoryRatio)
	if result.GoMemLimit != want {
		t.Errorf("GoMemLimit = %d, want %d", result.GoMemLimit, want)
	}
}

func TestConfigureFromEnvCustomRatio(t *testing.T) {
	restoreMemLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000")
	t.Setenv("MEMORY_RATIO", "0.5")

	result := ConfigureFromEnv()
	if result.GoMemLimit != 500000 {
		t.Errorf("GoMemLimit = %d, want 500000", result.GoMemLimit)
	}
}

func TestConfigureFromEnvInvalidLimit(t *testing.T) {
	restoreMemLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "notanumber")

	result := ConfigureFromEnv()
	if result.Configured {
		t.Error("invalid MEMORY_LIMIT should not configure")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{1572864, "1.5 MiB"},
		{math.MaxInt64, "8.0 EiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
