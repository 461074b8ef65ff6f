package coworkers

import (
	"context"

	"github.com/peake100/coworkers-go/internal"
	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/peake100/coworkers-go/pkg/rpc"
	"github.com/rs/zerolog"
)

// Context is built once per inbound message and passed through the middleware chain.
// It carries references to the application's connection and channels, the shared
// application values, the message itself and the acknowledgement intent set by the
// handlers.
//
// A Context is not safe for concurrent use: one message is handled by one chain
// invocation at a time.
type Context struct {
	// App is the Application that received the message.
	App *Application
	// Connection is the application connection, used for rpc requests.
	Connection amqp.ChannelOpener
	// ConsumerChannel is the channel the message was consumed from.
	ConsumerChannel amqp.RouteChannel
	// PublisherChannel is the channel used by Publish, SendToQueue and Reply.
	PublisherChannel amqp.Publisher

	// Logger is copied from the application's SharedContext. The default logging
	// middleware replaces it with a logger scoped to this delivery.
	Logger zerolog.Logger
	// Values is a shallow copy of the application's SharedContext.Values.
	Values map[string]interface{}

	// QueueName is the queue the message was consumed from.
	QueueName string
	// Message is the inbound message.
	Message *Message
	// DeliveryTag addresses Message for acknowledgement.
	DeliveryTag uint64
	// QueueOpts are the options the queue was declared with.
	QueueOpts amqp.QueueOpts
	// ConsumeOpts are the options the queue is consumed with.
	ConsumeOpts amqp.ConsumeOpts

	// State is free for use by the middleware chain.
	State map[string]interface{}

	baseCtx context.Context
	intent  ackIntent
}

// NewContext builds the Context for message received on queueName, using the queue
// options registered on app.
func NewContext(app *Application, queueName string, message *Message) *Context {
	return NewContextWithOpts(app, queueName, message, nil, nil)
}

// NewContextWithOpts builds the Context for message received on queueName. Non-nil
// queueOpts and consumeOpts are merged over the options registered on app: fields set
// in the overrides win on conflict.
func NewContextWithOpts(
	app *Application,
	queueName string,
	message *Message,
	queueOpts *amqp.QueueOpts,
	consumeOpts *amqp.ConsumeOpts,
) *Context {
	registeredQueueOpts, registeredConsumeOpts := app.queueDefaults(queueName)
	if queueOpts != nil {
		registeredQueueOpts = registeredQueueOpts.Merge(*queueOpts)
	}
	if consumeOpts != nil {
		registeredConsumeOpts = registeredConsumeOpts.Merge(*consumeOpts)
	}

	ctx := &Context{
		App:              app,
		Connection:       app.Connection,
		ConsumerChannel:  app.ConsumerChannel,
		PublisherChannel: app.PublisherChannel,
		Logger:           app.Shared.Logger,
		Values:           app.Shared.copyValues(),
		QueueName:        queueName,
		Message:          message,
		DeliveryTag:      message.DeliveryTag,
		QueueOpts:        registeredQueueOpts,
		ConsumeOpts:      registeredConsumeOpts,
		State:            make(map[string]interface{}),
		baseCtx:          context.Background(),
	}

	message.context = ctx
	return ctx
}

// Context returns the context.Context of this message. Request is cancelled with it.
func (ctx *Context) Context() context.Context {
	return ctx.baseCtx
}

// SetContext replaces the context.Context of this message. Useful for middleware that
// adds values or deadlines.
func (ctx *Context) SetContext(baseCtx context.Context) {
	ctx.baseCtx = baseCtx
}

// Publish sends content to exchange with routingKey on the publisher channel. Byte
// slices are sent raw and strings as text. Errors from the channel are returned
// unmodified.
func (ctx *Context) Publish(
	exchange string, routingKey string, content interface{}, opts amqp.PublishOpts,
) error {
	body, err := internal.EncodeContent(content)
	if err != nil {
		return err
	}
	return ctx.PublisherChannel.Publish(exchange, routingKey, body, opts)
}

// SendToQueue sends content to queueName on the publisher channel. content is always
// JSON encoded, strings included. Errors from the channel are returned unmodified.
func (ctx *Context) SendToQueue(
	queueName string, content interface{}, opts amqp.PublishOpts,
) error {
	body, err := internal.EncodeJSON(content)
	if err != nil {
		return err
	}
	return ctx.PublisherChannel.SendToQueue(queueName, body, opts)
}

// Reply answers the rpc request carried by the message of this context.
func (ctx *Context) Reply(content interface{}, opts amqp.PublishOpts) error {
	return ctx.App.RPC.Reply(ctx.PublisherChannel, ctx.Message.Delivery, content, opts)
}

// Request sends an rpc request with content to queueName over the application
// connection and blocks until the reply is received or the context of this message is
// cancelled.
func (ctx *Context) Request(
	queueName string,
	content interface{},
	sendOpts amqp.PublishOpts,
	queueOpts amqp.QueueOpts,
	consumeOpts amqp.ConsumeOpts,
) (amqp.Delivery, error) {
	body, err := internal.EncodeContent(content)
	if err != nil {
		return amqp.Delivery{}, err
	}

	return ctx.App.RPC.Request(
		ctx.baseCtx,
		ctx.Connection,
		queueName,
		body,
		rpc.RequestOpts{
			SendOpts:    sendOpts,
			QueueOpts:   queueOpts,
			ConsumeOpts: consumeOpts,
		},
	)
}

// OnError takes over acknowledgement of the message after err escaped the middleware
// chain. Every ack intent accessor fails with ErrAckUnavailable afterwards. err is
// reported to the application error handler, then the message is nacked unless it was
// consumed with NoAck. Calls after the first do nothing.
//
// The returned error is the nack error, if any.
func (ctx *Context) OnError(err error) error {
	if ctx.Errored() {
		return nil
	}
	ctx.intent = ackIntent{kind: ackKindPoisoned}

	ctx.App.reportError(ctx, err)

	if ctx.ConsumeOpts.NoAck || ctx.ConsumerChannel == nil {
		return nil
	}

	return ctx.ConsumerChannel.Nack(ctx.DeliveryTag, false, ctx.App.opts.errorRequeue)
}
