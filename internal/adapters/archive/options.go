package archive

import "github.com/okian/gage/pkg/logger"

// Option applies a configuration option to the Archive.
type Option func(*Archive)

// WithQueueSize bounds the in-memory write queue.
func WithQueueSize(size int) Option {
	return func(a *Archive) {
		if size > 0 {
			a.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the archive writer.
func WithLogger(log logger.Logger) Option {
	return func(a *Archive) {
		if log != nil {
			a.log = log
		}
	}
}
