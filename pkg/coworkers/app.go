package coworkers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/peake100/coworkers-go/pkg/rpc"
	"github.com/rs/zerolog"
)

// reservedAppKey is never copied from SharedContext.Values onto a Context.
const reservedAppKey = "app"

// RPC is the request / reply client used by Context.Request and Context.Reply.
// rpc.Client implements it.
type RPC interface {
	Request(
		ctx context.Context,
		conn amqp.ChannelOpener,
		queue string,
		content []byte,
		opts rpc.RequestOpts,
	) (amqp.Delivery, error)
	Reply(
		channel amqp.Publisher,
		message amqp.Delivery,
		content interface{},
		opts amqp.PublishOpts,
	) error
}

// SharedContext holds the application values copied onto every Context.
type SharedContext struct {
	// Logger becomes Context.Logger.
	Logger zerolog.Logger
	// Values are shallow-copied into Context.Values. The "app" key is reserved and is
	// never copied.
	Values map[string]interface{}
}

// copyValues returns a shallow copy of Values without the reserved key.
func (shared SharedContext) copyValues() map[string]interface{} {
	values := make(map[string]interface{}, len(shared.Values))
	for key, value := range shared.Values {
		if key == reservedAppKey {
			continue
		}
		values[key] = value
	}
	return values
}

// queueRegistration is a queue registered through Application.Queue.
type queueRegistration struct {
	name        string
	queueOpts   amqp.QueueOpts
	consumeOpts amqp.ConsumeOpts
	handler     HandlerFunc
	middleware  []Middleware
}

// Application consumes from registered queues, builds a Context for every delivery
// and runs it through the middleware chain of its queue.
type Application struct {
	// Connection is the broker connection. Set by Connect.
	Connection amqp.ChannelOpener
	// ConsumerChannel is the channel queues are consumed from. Set by Connect.
	ConsumerChannel amqp.RouteChannel
	// PublisherChannel is the channel handlers publish on. Set by Connect.
	PublisherChannel amqp.Publisher
	// Shared is copied onto every Context.
	Shared SharedContext
	// RPC is used by Context.Request and Context.Reply.
	RPC RPC

	// lock guards queues, middleware, started and the connection set by Connect.
	lock sync.RWMutex
	// queues in registration order.
	queues []*queueRegistration
	// queuesByName indexes queues.
	queuesByName map[string]*queueRegistration
	// middleware registered through Use and UseProvider.
	middleware middlewareRegistry
	// started is set by Run. No more registrations are allowed afterwards.
	started bool

	// closers are closed by Close, in order.
	closers []io.Closer

	// Caller options.
	opts Opts
}

// Use adds middleware to every queue of the application. Middleware run in
// registration order, before any queue middleware.
func (app *Application) Use(middleware ...Middleware) error {
	app.lock.Lock()
	defer app.lock.Unlock()

	if app.started {
		return ErrAppStarted
	}
	app.middleware.add(middleware...)
	return nil
}

// UseProvider adds the middleware provided by the methods of provider to every queue
// of the application.
func (app *Application) UseProvider(provider ProvidesMiddleware) error {
	app.lock.Lock()
	defer app.lock.Unlock()

	if app.started {
		return ErrAppStarted
	}
	err := app.middleware.addProvider(provider)
	if err != nil {
		return fmt.Errorf("could not register middleware provider '%v': %w", provider.TypeID(), err)
	}
	return nil
}

// Queue registers handler to consume queueName. queueOpts and consumeOpts are merged
// over the application defaults with amqp.QueueOpts.Merge and amqp.ConsumeOpts.Merge.
// middleware wrap handler in order, after all application middleware.
func (app *Application) Queue(
	queueName string,
	queueOpts *amqp.QueueOpts,
	consumeOpts *amqp.ConsumeOpts,
	handler HandlerFunc,
	middleware ...Middleware,
) error {
	if queueName == "" {
		return ErrEmptyQueueName
	}
	if handler == nil {
		return ErrNoHandler
	}

	app.lock.Lock()
	defer app.lock.Unlock()

	if app.started {
		return ErrAppStarted
	}
	if _, ok := app.queuesByName[queueName]; ok {
		return fmt.Errorf("%w: '%v'", ErrDuplicateQueue, queueName)
	}

	registration := &queueRegistration{
		name:        queueName,
		queueOpts:   app.opts.queueOpts,
		consumeOpts: app.opts.consumeOpts,
		handler:     handler,
		middleware:  middleware,
	}
	if queueOpts != nil {
		registration.queueOpts = registration.queueOpts.Merge(*queueOpts)
	}
	if consumeOpts != nil {
		registration.consumeOpts = registration.consumeOpts.Merge(*consumeOpts)
	}

	app.queues = append(app.queues, registration)
	app.queuesByName[queueName] = registration
	return nil
}

// queueDefaults returns the options registered for queueName, or the application
// defaults if it was never registered.
func (app *Application) queueDefaults(queueName string) (amqp.QueueOpts, amqp.ConsumeOpts) {
	app.lock.RLock()
	defer app.lock.RUnlock()

	registration, ok := app.queuesByName[queueName]
	if !ok {
		return app.opts.queueOpts, app.opts.consumeOpts
	}
	return registration.queueOpts, registration.consumeOpts
}

// reportError passes err to the application error handler. Without the default
// logging middleware, err is also logged here.
func (app *Application) reportError(ctx *Context, err error) {
	if app.opts.noLoggingMiddleware {
		ctx.Logger.Error().
			Err(err).
			Str("QUEUE", ctx.QueueName).
			Uint64("DELIVERY_TAG", ctx.DeliveryTag).
			Msg("error handling delivery")
	}

	if app.opts.errorHandler != nil {
		app.opts.errorHandler(ctx, err)
	}
}

// Connect dials url and opens the consumer and publisher channels. Returns
// ErrAlreadyConnected if a connection is already set: call Close first.
func (app *Application) Connect(url string) error {
	app.lock.Lock()
	defer app.lock.Unlock()

	if app.Connection != nil {
		return ErrAlreadyConnected
	}

	conn, err := amqp.DialConfig(url, app.opts.dialConfig)
	if err != nil {
		return err
	}

	consumerChannel, err := conn.OpenChannel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("error opening consumer channel: %w", err)
	}

	publisherChannel, err := conn.OpenChannel()
	if err != nil {
		_ = consumerChannel.Close()
		_ = conn.Close()
		return fmt.Errorf("error opening publisher channel: %w", err)
	}

	app.Connection = conn
	app.ConsumerChannel = consumerChannel
	app.PublisherChannel = publisherChannel
	app.closers = []io.Closer{publisherChannel, consumerChannel, conn}

	app.opts.logger.Debug().Msg("connected to broker")
	return nil
}

// Close closes the channels and connection opened by Connect. The first error
// encountered is returned.
func (app *Application) Close() error {
	app.lock.Lock()
	defer app.lock.Unlock()

	if app.closers == nil {
		return nil
	}

	var firstErr error
	for _, closer := range app.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	app.closers = nil
	app.Connection = nil
	app.ConsumerChannel = nil
	app.PublisherChannel = nil
	return firstErr
}

// New returns a new Application. If opts is nil, default options will be used.
//
// The Application is not connected: call Connect, or set Connection, ConsumerChannel
// and PublisherChannel directly.
func New(opts *Opts) *Application {
	if opts == nil {
		defaultOpts := DefaultOpts()
		opts = &defaultOpts
	}

	rpcClient := opts.rpc
	if rpcClient == nil {
		rpcOpts := rpc.DefaultOpts().WithLogger(opts.logger)
		rpcClient = rpc.New(&rpcOpts)
	}

	app := &Application{
		Shared: SharedContext{
			Logger: opts.logger,
			Values: make(map[string]interface{}),
		},
		RPC:          rpcClient,
		queuesByName: make(map[string]*queueRegistration),
		middleware:   newMiddlewareRegistry(),
		opts:         *opts,
	}

	// Reserve the default logger id so it cannot be registered twice.
	if !opts.noLoggingMiddleware {
		_ = app.middleware.reserve(DefaultLoggingTypeID)
	}

	return app
}
