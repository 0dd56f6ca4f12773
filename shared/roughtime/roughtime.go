// Package roughtime is a thin wrapper around the local wall clock, used
// only by the replay harness's logging cadence — never by the
// deterministic kernel itself, which takes no wall-clock input.
package roughtime

import "time"

// Since returns the duration since t.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// Until returns the duration until t.
func Until(t time.Time) time.Duration {
	return t.Sub(Now())
}

// Now returns the current local time.
func Now() time.Time {
	return time.Now()
}
