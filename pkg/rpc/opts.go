package rpc

import (
	"time"

	"github.com/peake100/coworkers-go/internal"
	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/rs/zerolog"
)

// RequestOpts bundles the options of a single request.
type RequestOpts struct {
	// SendOpts are used when publishing the request. CorrelationID and ReplyTo are
	// always overwritten.
	SendOpts amqp.PublishOpts
	// QueueOpts are used to declare the server-named reply queue. Exclusive and
	// AutoDelete are always set.
	QueueOpts amqp.QueueOpts
	// ConsumeOpts are used to consume the reply queue. NoAck is always set.
	ConsumeOpts amqp.ConsumeOpts
}

// Opts holds options for a Client.
type Opts struct {
	// timeout is the longest a request waits for its reply. 0 means no limit other
	// than the request context.
	timeout time.Duration
	// logger is used for debug logging of requests and replies.
	logger zerolog.Logger
}

// it's correct that we are modifying value-receivers here. Disable the revive check
// for this.

// revive:disable:modifies-value-receiver

// WithTimeout sets the longest time Request will wait for a reply. If 0 or less, only
// the request context limits the wait.
//
// Default: 0.
func (opts Opts) WithTimeout(timeout time.Duration) Opts {
	opts.timeout = timeout
	return opts
}

// WithLogger sets the zerolog.Logger the client logs with.
//
// Default: lockless, pretty-printed logger set to Info level.
func (opts Opts) WithLogger(logger zerolog.Logger) Opts {
	opts.logger = logger
	return opts
}

// revive:enable:modifies-value-receiver

// DefaultOpts returns new Opts object with default settings.
func DefaultOpts() Opts {
	return Opts{
		timeout: 0,
		logger:  internal.CreateDefaultLogger(zerolog.InfoLevel),
	}
}
