package coworkers

import (
	"fmt"
	"runtime"
)

// recoverPanicMiddleware is used as the innermost required middleware. It catches
// panics and converts them to PanicError errors.
func recoverPanicMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx *Context) (err error) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = PanicError{
				Recovered:  recovered,
				StackTrace: string(buf[:n]),
			}
		}()
		return next(ctx)
	}
}

// respondMiddleware is a Middleware that applies the ack intent of a Context
// to its consumer channel after the chain returns, or hands the Context to OnError if
// the chain failed. We want to implement this as a middleware so that other
// middlewares, like logging middlewares, have access to any ack or nack errors.
func respondMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx *Context) error {
		err := next(ctx)
		if err != nil {
			nackErr := ctx.OnError(err)
			if nackErr != nil {
				return fmt.Errorf("%w (error nacking delivery: %v)", err, nackErr)
			}
			return err
		}

		err = respond(ctx)
		if err != nil {
			ctx.App.reportError(ctx, err)
		}
		return err
	}
}

// allOutstandingTag used with multiple=true addresses every outstanding delivery on a
// channel.
const allOutstandingTag uint64 = 0

// respond applies the ack intent of ctx. An unset intent acks the single delivery.
func respond(ctx *Context) error {
	if ctx.ConsumeOpts.NoAck {
		return nil
	}

	channel := ctx.ConsumerChannel
	intent := ctx.intent

	var err error
	switch intent.kind {
	case ackKindPoisoned:
		// OnError was called by a handler and has already nacked the delivery.
		return nil
	case ackKindNone:
		err = channel.Ack(ctx.DeliveryTag, false)
	case ackKindAck:
		opts := intent.opts.(AckOpts)
		err = channel.Ack(ctx.DeliveryTag, opts.AllUpTo)
	case ackKindNack:
		opts := intent.opts.(NackOpts)
		err = channel.Nack(ctx.DeliveryTag, opts.AllUpTo, opts.Requeue)
	case ackKindAckAll:
		err = channel.Ack(allOutstandingTag, true)
	case ackKindNackAll:
		opts := intent.opts.(NackAllOpts)
		err = channel.Nack(allOutstandingTag, true, opts.Requeue)
	}

	if err != nil {
		return fmt.Errorf("error applying %v to delivery: %w", intent.kind, err)
	}
	return nil
}
