// Package logging constructs the single *zap.Logger each binary hands
// to its session for the lifetime of the process; connections and the
// world carry no logger of their own.
package logging

import "go.uber.org/zap"

// New builds a production logger, or a development one (human-readable,
// debug level enabled) when debug is true.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
