package utils

import (
	"strconv"
	"time"
)

// parse string, return time.Duration or default. Plain numbers are seconds like php timeouts.
func DurationOr(input string, defval time.Duration) time.Duration {
	if dt, err := time.ParseDuration(input); err == nil {
		return dt
	}
	if sec, err := strconv.ParseFloat(input, 64); err == nil && sec >= 0 {
		return time.Duration(sec * float64(time.Second))
	}
	return defval
}
