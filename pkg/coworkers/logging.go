package coworkers

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLoggingTypeID is the ProviderTypeID for DefaultLogging.
const DefaultLoggingTypeID ProviderTypeID = "DefaultLogging"

// DefaultLogging provides logging middleware for Application queues. It wraps the
// whole chain, including acknowledgement, so ack and nack errors are logged.
type DefaultLogging struct {
	Logger           zerolog.Logger
	LogDeliveryLevel zerolog.Level
	SuccessLogLevel  zerolog.Level
}

// TypeID implements ProvidesMiddleware.
func (middleware DefaultLogging) TypeID() ProviderTypeID {
	return DefaultLoggingTypeID
}

// Delivery implements ProvidesDelivery for logging. The delivery-scoped logger is set
// as Context.Logger for downstream handlers.
func (middleware DefaultLogging) Delivery(next HandlerFunc) HandlerFunc {
	return func(ctx *Context) error {
		logger := middleware.Logger.With().
			Str("QUEUE", ctx.QueueName).
			Uint64("DELIVERY_TAG", ctx.DeliveryTag).
			Logger()
		ctx.Logger = logger

		start := time.Now().UTC()
		err := next(ctx)
		middleware.logDeliveryResult(ctx, err, start, logger)

		return err
	}
}

// logDeliveryResult logs the result of a delivery handler to logger.
func (middleware DefaultLogging) logDeliveryResult(
	ctx *Context,
	err error,
	start time.Time,
	logger zerolog.Logger,
) {
	var event *zerolog.Event
	var eventLevel zerolog.Level
	if err != nil {
		event = logger.Err(err)
		var errPanic PanicError
		if errors.As(err, &errPanic) {
			event.Str("STACKTRACE", errPanic.StackTrace)
		}
		eventLevel = zerolog.ErrorLevel
	} else {
		event = logger.WithLevel(middleware.SuccessLogLevel)
		eventLevel = middleware.SuccessLogLevel
	}

	if !event.Enabled() {
		return
	}

	event.TimeDiff("DURATION", time.Now().UTC(), start).
		Str("ACK", ctx.intent.kind.String())
	if middleware.LogDeliveryLevel <= eventLevel {
		// The acknowledger is the live channel and does not serialize.
		delivery := ctx.Message.Delivery
		delivery.Acknowledger = nil
		event.Interface("DELIVERY", delivery)
	}

	event.Msg("delivery processed")
}

// NewDefaultLogging returns a new DefaultLogging as a ProvidesDelivery interface.
func NewDefaultLogging(
	logger zerolog.Logger,
	logDeliveryLevel zerolog.Level,
	successLogLevel zerolog.Level,
) ProvidesDelivery {
	return DefaultLogging{
		Logger:           logger,
		LogDeliveryLevel: logDeliveryLevel,
		SuccessLogLevel:  successLogLevel,
	}
}
