package download

import "time"

// Logger is an optional logging interface that can be provided to the
// Downloader. This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

type config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// ChunkTimeout is the deadline for a full chunk reply
	ChunkTimeout time.Duration

	// AckTimeout is the deadline for handshake and key replies
	AckTimeout time.Duration

	// HandshakePause separates the two download-mode commands
	HandshakePause time.Duration

	// Progress is invoked after each completed chunk (optional)
	Progress Progress

	// SeedOnly restricts the download to the first chunk
	SeedOnly bool
}

func defaultConfig() config {
	return config{
		ChunkTimeout:   15 * time.Second,
		AckTimeout:     5 * time.Second,
		HandshakePause: handshakePause,
	}
}

// Option is a functional option for configuring the Downloader.
type Option func(*config)

// WithLogger sets a logger for downloader operations.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.Logger = logger
	}
}

// WithChunkTimeout sets the deadline for a full chunk reply.
func WithChunkTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.ChunkTimeout = timeout
		}
	}
}

// WithAckTimeout sets the deadline for handshake and key replies.
func WithAckTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.AckTimeout = timeout
		}
	}
}

// WithHandshakePause overrides the pause between the two download-mode
// commands. Mainly useful in tests.
func WithHandshakePause(pause time.Duration) Option {
	return func(c *config) {
		if pause >= 0 {
			c.HandshakePause = pause
		}
	}
}

// WithProgress sets a callback invoked after each completed chunk.
func WithProgress(fn Progress) Option {
	return func(c *config) {
		c.Progress = fn
	}
}

// WithSeedOnly restricts the download to the first chunk, which covers
// the security bytes near the start of the image.
func WithSeedOnly(seedOnly bool) Option {
	return func(c *config) {
		c.SeedOnly = seedOnly
	}
}
