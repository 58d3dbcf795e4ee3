package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the variable that pins the worker count.
const EnvOverride = "TAGS_WORKERS"

// Count returns the worker count for a pool: GOMAXPROCS scaled by
// multiplier, at least 1 and at most limit (0 for no cap). A positive
// TAGS_WORKERS value replaces the computed count but is still capped.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS follows the container CPU quota.
	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForIO returns the worker count for database-bound pools (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
