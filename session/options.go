package session

import (
	"time"

	"github.com/opentech2/go-tech2/protocol"
	"github.com/opentech2/go-tech2/seedkey"
)

// Config holds the client configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout is the deadline for a complete response frame per attempt
	Timeout time.Duration

	// Retries is the total number of send attempts before a request fails
	// with a timeout
	Retries int

	// RetryDelay is the pause between send attempts
	RetryDelay time.Duration

	// KeepAliveInterval is the idle period after which a TesterPresent is
	// sent automatically while a session is active
	KeepAliveInterval time.Duration

	// Level is the security access tier requested from the device
	Level protocol.AccessLevel

	// Algorithm derives the key from the seed the device hands out
	Algorithm seedkey.Algorithm
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:           time.Second,
		Retries:           3,
		RetryDelay:        0,
		KeepAliveInterval: 2 * time.Second,
		Level:             protocol.LevelHighest,
		Algorithm:         seedkey.Trionic8{},
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithLogger sets a logger for client operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the per-attempt response deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithRetries sets the total number of send attempts per request.
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.Retries = retries
		}
	}
}

// WithRetryDelay sets the pause between send attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.RetryDelay = delay
		}
	}
}

// WithKeepAliveInterval sets the idle period before an automatic
// TesterPresent.
func WithKeepAliveInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.KeepAliveInterval = interval
		}
	}
}

// WithAccessLevel sets the security tier requested from the device.
func WithAccessLevel(level protocol.AccessLevel) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// WithKeyAlgorithm selects the seed-to-key derivation. The default is the
// level-aware Trionic8 pipeline.
func WithKeyAlgorithm(algo seedkey.Algorithm) Option {
	return func(c *Config) {
		if algo != nil {
			c.Algorithm = algo
		}
	}
}

// Logger is an optional logging interface that can be provided to the
// client. This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
