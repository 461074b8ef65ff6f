package amqp

import "time"

// Copy of defaults from streadway amqp
const (
	defaultHeartbeat = 10 * time.Second
	defaultLocale    = "en_US"
)

// DefaultConfig returns the default config for Dial as it is in the streadway
// library.
func DefaultConfig() Config {
	return Config{
		Heartbeat: defaultHeartbeat,
		Locale:    defaultLocale,
	}
}
