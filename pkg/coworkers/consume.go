package coworkers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/peake100/coworkers-go/pkg/amqp"
)

// buildHandler wraps the handler of registration in its queue middleware, the
// application middleware and the required middleware. From the outside in:
// default logging, respond, panic recovery, application middleware, queue middleware.
func (app *Application) buildHandler(registration *queueRegistration) HandlerFunc {
	handler := wrap(registration.handler, registration.middleware)
	handler = wrap(handler, app.middleware.delivery)
	handler = recoverPanicMiddleware(handler)
	handler = respondMiddleware(handler)

	if !app.opts.noLoggingMiddleware {
		logging := NewDefaultLogging(
			app.opts.logger,
			app.opts.logDeliveryLevel,
			app.opts.logSuccessLevel,
		)
		handler = logging.Delivery(handler)
	}

	return handler
}

// handleDelivery handles a single delivery.
func (app *Application) handleDelivery(
	ctx context.Context,
	queueName string,
	handler HandlerFunc,
	delivery amqp.Delivery,
	throttle chan struct{},
	done *sync.WaitGroup,
) {
	defer done.Done()
	// If we are throttling workers, free a space on the throttle at the end of this
	// work.
	if throttle != nil {
		defer func() {
			<-throttle
		}()
	}

	// Create a context for this delivery derived from the run context.
	deliveryCtx, deliveryCancel := context.WithCancel(ctx)
	defer deliveryCancel()

	msgCtx := NewContext(app, queueName, NewMessage(delivery))
	msgCtx.SetContext(deliveryCtx)

	// Errors have been reported and logged by the required middleware.
	_ = handler(msgCtx)
}

// processDeliveries pulls deliveries for one queue until ctx is cancelled or the
// delivery channel closes.
func (app *Application) processDeliveries(
	ctx context.Context,
	registration *queueRegistration,
	deliveries <-chan amqp.Delivery,
	throttle chan struct{},
) error {
	// WaitGroup for workers to close when done.
	workersComplete := new(sync.WaitGroup)
	// Wait for all outstanding workers to be complete before we exit
	defer workersComplete.Wait()

	handler := app.buildHandler(registration)

	for {
		var delivery amqp.Delivery
		var ok bool

		// Pull a delivery or exit on context close.
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok = <-deliveries:
		}

		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("consumer for queue '%v' closed before shutdown", registration.name)
		}

		// If we are throttling simultaneous worker count, we need to push to the
		// throttle channel, if the channel is full (max workers reached) this will
		// block.
		if throttle != nil {
			select {
			case throttle <- struct{}{}:
			case <-ctx.Done():
				if !registration.consumeOpts.NoAck {
					_ = app.ConsumerChannel.Nack(delivery.DeliveryTag, false, true)
				}
				return nil
			}
		}

		workersComplete.Add(1)
		go app.handleDelivery(ctx, registration.name, handler, delivery, throttle, workersComplete)
	}
}

// consume declares every registered queue and starts consuming it.
func (app *Application) consume(
	queues []*queueRegistration,
) ([]<-chan amqp.Delivery, error) {
	consumers := make([]<-chan amqp.Delivery, len(queues))
	for i, registration := range queues {
		_, err := app.ConsumerChannel.QueueDeclare(registration.name, registration.queueOpts)
		if err != nil {
			return nil, fmt.Errorf("error declaring queue '%v': %w", registration.name, err)
		}

		consumers[i], err = app.ConsumerChannel.Consume(registration.name, registration.consumeOpts)
		if err != nil {
			return nil, fmt.Errorf("error consuming from queue '%v': %w", registration.name, err)
		}
	}
	return consumers, nil
}

// Run declares and consumes every registered queue and handles deliveries until ctx
// is cancelled or the consumer channel closes. This method blocks until all in-flight
// deliveries have been handled.
//
// No queues or middleware can be registered once Run has been called.
func (app *Application) Run(ctx context.Context) error {
	app.lock.Lock()
	if app.started {
		app.lock.Unlock()
		return ErrAppStarted
	}
	if app.ConsumerChannel == nil {
		app.lock.Unlock()
		return ErrNotConnected
	}
	app.started = true
	queues := app.queues
	app.lock.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.opts.prefetchCount > 0 {
		err := app.ConsumerChannel.Qos(app.opts.prefetchCount, 0, false)
		if err != nil {
			return fmt.Errorf("error setting consumer prefetch: %w", err)
		}
	}

	// Only the first processor error is kept.
	runErrs := make(chan error, len(queues))

	// Create a monitor routine to signal shutdown in case the consumer channel
	// unexpectedly closes.
	notifyClose := app.ConsumerChannel.NotifyClose(make(chan *amqp.Error, 1))
	monitorDone := make(chan struct{})
	var closeErr error
	go func() {
		defer close(monitorDone)
		select {
		case amqpErr, ok := <-notifyClose:
			closeErr = channelClosedError(amqpErr, ok)
			cancel()
		case <-ctx.Done():
		}
	}()

	consumers, err := app.consume(queues)
	if err != nil {
		return err
	}

	app.opts.logger.Info().Int("QUEUE_COUNT", len(queues)).Msg("consuming queues")

	var throttle chan struct{}
	if app.opts.maxWorkers > 0 {
		throttle = make(chan struct{}, app.opts.maxWorkers)
	}

	// Launch the individual queue processors.
	processorsDone := new(sync.WaitGroup)
	for i, registration := range queues {
		processorsDone.Add(1)
		go func(registration *queueRegistration, deliveries <-chan amqp.Delivery) {
			defer processorsDone.Done()
			processErr := app.processDeliveries(ctx, registration, deliveries, throttle)
			if processErr != nil {
				runErrs <- processErr
				cancel()
			}
		}(registration, consumers[i])
	}

	// Wait for the processors to all exit.
	processorsDone.Wait()

	cancel()
	<-monitorDone

	// The client notifies close listeners before closing the delivery streams, so a
	// processor may have exited on a closed stream before the monitor saw the close.
	// The channel close is the cause and takes precedence.
	if closeErr == nil {
		select {
		case amqpErr, ok := <-notifyClose:
			closeErr = channelClosedError(amqpErr, ok)
		default:
		}
	}
	if closeErr != nil {
		return closeErr
	}

	select {
	case runErr := <-runErrs:
		return runErr
	default:
		return nil
	}
}

// channelClosedError builds the Run error for a consumer channel close notification.
func channelClosedError(amqpErr *amqp.Error, ok bool) error {
	if ok && amqpErr != nil {
		return fmt.Errorf("consumer channel closed: %w", amqpErr)
	}
	return errors.New("consumer channel closed")
}
