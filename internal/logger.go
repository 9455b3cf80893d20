package internal

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger returns a logger at debug level when debug is set, or error
// level when quiet is set.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
