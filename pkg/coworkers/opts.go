package coworkers

import (
	"github.com/peake100/coworkers-go/internal"
	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/rs/zerolog"
)

// ErrorHandler is called with every error that sends a message down the error path.
type ErrorHandler func(ctx *Context, err error)

// Opts holds options for an Application.
type Opts struct {
	// The maximum number of deliveries that can be handled at one time.
	maxWorkers int
	// prefetchCount is passed to the consumer channel Qos. 0 leaves Qos untouched.
	prefetchCount int

	// errorRequeue is whether OnError requeues the message it nacks.
	errorRequeue bool
	// errorHandler is called by OnError.
	errorHandler ErrorHandler

	// queueOpts are the defaults for queues registered with nil QueueOpts.
	queueOpts amqp.QueueOpts
	// consumeOpts are the defaults for queues registered with nil ConsumeOpts.
	consumeOpts amqp.ConsumeOpts

	// dialConfig is used by Application.Connect.
	dialConfig amqp.Config
	// rpc is the request / reply client used by Context.Request and Context.Reply.
	rpc RPC

	// noLoggingMiddleware is true if we should not add logging middleware.
	noLoggingMiddleware bool
	// logger to use in the default logging middleware and as SharedContext.Logger.
	logger zerolog.Logger
	// logSuccessLevel is the level at which the default logger should log a
	// successfully processed delivery.
	logSuccessLevel zerolog.Level
	// logDeliveryLevel is the level at which the default logger should log the full
	// delivery object.
	logDeliveryLevel zerolog.Level
}

// it's correct that we are modifying value-receivers here. Disable the revive check
// for this.

// revive:disable:modifies-value-receiver

// WithMaxWorkers sets the maximum number of deliveries that can be handled at the
// same time. If 0 or less, no limit will be used.
//
// Default: 0.
func (opts Opts) WithMaxWorkers(max int) Opts {
	opts.maxWorkers = max
	return opts
}

// WithPrefetch sets the prefetch count of the consumer channel.
//
// Default: 0 (broker default).
func (opts Opts) WithPrefetch(count int) Opts {
	opts.prefetchCount = count
	return opts
}

// WithErrorRequeue sets whether messages nacked by the error path are requeued.
//
// Default: false.
func (opts Opts) WithErrorRequeue(requeue bool) Opts {
	opts.errorRequeue = requeue
	return opts
}

// WithErrorHandler sets a handler to be called with every error that sends a message
// down the error path.
//
// Default: nil.
func (opts Opts) WithErrorHandler(handler ErrorHandler) Opts {
	opts.errorHandler = handler
	return opts
}

// WithQueueOpts sets the QueueOpts used by queues registered without their own.
//
// Default: amqp.QueueOpts{}.
func (opts Opts) WithQueueOpts(queueOpts amqp.QueueOpts) Opts {
	opts.queueOpts = queueOpts
	return opts
}

// WithConsumeOpts sets the ConsumeOpts used by queues registered without their own.
//
// Default: amqp.ConsumeOpts{}.
func (opts Opts) WithConsumeOpts(consumeOpts amqp.ConsumeOpts) Opts {
	opts.consumeOpts = consumeOpts
	return opts
}

// WithDialConfig sets the amqp.Config used by Application.Connect.
//
// Default: amqp.DefaultConfig().
func (opts Opts) WithDialConfig(config amqp.Config) Opts {
	opts.dialConfig = config
	return opts
}

// WithRPC sets the request / reply client.
//
// Default: rpc.New(nil).
func (opts Opts) WithRPC(client RPC) Opts {
	opts.rpc = client
	return opts
}

// WithDefaultLogging enables the default zerolog.Logger logging middleware. If false
// all other logging settings have no effect on the middleware.
//
// Default: true
func (opts Opts) WithDefaultLogging(log bool) Opts {
	opts.noLoggingMiddleware = !log
	return opts
}

// WithLogger sets the zerolog.Logger for the default logging middleware and the
// SharedContext.
//
// Default: lockless, pretty-printed logger set to Info level.
func (opts Opts) WithLogger(logger zerolog.Logger) Opts {
	opts.logger = logger
	return opts.WithLoggingLevel(logger.GetLevel())
}

// WithLoggingLevel sets the level of the logger passed to WithLogger.
func (opts Opts) WithLoggingLevel(level zerolog.Level) Opts {
	opts.logger = opts.logger.Level(level)
	return opts
}

// WithLogSuccessLevel is the minimum logging level to log a successful delivery at.
//
// Default: zerolog.DebugLevel.
func (opts Opts) WithLogSuccessLevel(level zerolog.Level) Opts {
	opts.logSuccessLevel = level
	return opts
}

// WithLogDeliveryLevel is the minimum logging level to log the full delivery object at.
//
// Default: zerolog.ErrorLevel.
func (opts Opts) WithLogDeliveryLevel(level zerolog.Level) Opts {
	opts.logDeliveryLevel = level
	return opts
}

// revive:enable:modifies-value-receiver

// DefaultOpts returns new Opts object with default settings.
func DefaultOpts() Opts {
	opts := Opts{
		maxWorkers:          0,
		prefetchCount:       0,
		errorRequeue:        false,
		errorHandler:        nil,
		queueOpts:           amqp.QueueOpts{},
		consumeOpts:         amqp.ConsumeOpts{},
		dialConfig:          amqp.DefaultConfig(),
		rpc:                 nil,
		noLoggingMiddleware: false,
		logger:              internal.CreateDefaultLogger(zerolog.InfoLevel),
		logSuccessLevel:     zerolog.DebugLevel,
		logDeliveryLevel:    zerolog.ErrorLevel,
	}

	return opts
}
