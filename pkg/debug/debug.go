// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Metrics controls whether per-tick metric logs are shown (motion,
// sharpness, stability score). Use --debug-metrics to enable these very
// verbose logs.
var Metrics bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// MetricsLog prints a message only if metrics debug mode is enabled
func MetricsLog(format string, args ...interface{}) {
	if Metrics {
		fmt.Printf(format, args...)
	}
}
