package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the logger a command hands to the driver packages.
// Verbose raises the level from warn to debug.
func NewLogger(w io.Writer, prefix string, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: verbose,
	})
}
