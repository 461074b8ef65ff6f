package amqp

import (
	"fmt"

	streadway "github.com/streadway/amqp"
)

// Connection wraps a streadway connection and implements ChannelOpener.
type Connection struct {
	*streadway.Connection
}

// OpenChannel opens a new Channel on the connection.
func (conn Connection) OpenChannel() (RouteChannel, error) {
	channel, err := conn.Connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening channel: %w", err)
	}
	return Channel{Channel: channel}, nil
}

// Dial accepts a string in the AMQP URI format and returns a new Connection over TCP
// using PlainAuth.
func Dial(url string) (Connection, error) {
	return DialConfig(url, DefaultConfig())
}

// DialConfig accepts a string in the AMQP URI format and a configuration for the
// transport and connection setup, returning a new Connection.
func DialConfig(url string, config Config) (Connection, error) {
	conn, err := streadway.DialConfig(url, config)
	if err != nil {
		return Connection{}, fmt.Errorf("error dialing broker: %w", err)
	}
	return Connection{Connection: conn}, nil
}
