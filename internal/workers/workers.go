// Package workers sizes background worker pools from the CPUs available
// to the process.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count scaled from GOMAXPROCS, which reflects
// container CPU limits. The multiplier adjusts for task characteristics
// (1.0 CPU-bound, 2.0 I/O-bound); limit caps the result, 0 means no cap.
// THUMBNAIL_WORKERS overrides the computed value.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("THUMBNAIL_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
