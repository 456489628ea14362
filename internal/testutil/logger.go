package testutil

import "github.com/shibalabs/inspection-console/internal/logging"

// NullLogger returns a logger that discards all output
func NullLogger() *logging.Logger {
	return logging.NewNop()
}
