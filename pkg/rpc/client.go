// Package rpc implements request / reply messaging over AMQP queues. Requests are
// published with a reply-to queue and a correlation id, and replies are matched back
// to their request by that id.
package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/peake100/coworkers-go/internal"
	"github.com/peake100/coworkers-go/pkg/amqp"
)

// Client sends rpc requests and replies.
type Client struct {
	opts Opts
}

// Reply answers the rpc request carried by message. content is encoded the same way
// as for a publication: bytes are sent raw, strings as text and anything else as JSON.
// The correlation id of message is copied onto opts.
func (client Client) Reply(
	channel amqp.Publisher,
	message amqp.Delivery,
	content interface{},
	opts amqp.PublishOpts,
) error {
	if message.ReplyTo == "" {
		return ErrNoReplyTo
	}

	body, err := internal.EncodeContent(content)
	if err != nil {
		return err
	}

	opts.CorrelationID = message.CorrelationId
	return channel.SendToQueue(message.ReplyTo, body, opts)
}

// Request sends content to queue and blocks until the matching reply is received,
// ctx is cancelled or the client timeout elapses.
//
// A dedicated channel is opened on conn for each request and closed before return.
func (client Client) Request(
	ctx context.Context,
	conn amqp.ChannelOpener,
	queue string,
	content []byte,
	opts RequestOpts,
) (reply amqp.Delivery, err error) {
	parentCtx := ctx
	if client.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.opts.timeout)
		defer cancel()
	}

	channel, err := conn.OpenChannel()
	if err != nil {
		return reply, fmt.Errorf("error opening rpc channel: %w", err)
	}
	defer func() {
		closeErr := channel.Close()
		if closeErr != nil {
			client.opts.logger.Debug().Err(closeErr).Msg("error closing rpc channel")
		}
	}()

	// Exclusive queues live until their connection closes. The reply queue is deleted
	// with its consumer instead.
	queueOpts := opts.QueueOpts
	queueOpts.Exclusive = true
	queueOpts.AutoDelete = true
	replyQueue, err := channel.QueueDeclare("", queueOpts)
	if err != nil {
		return reply, fmt.Errorf("error declaring reply queue: %w", err)
	}

	consumeOpts := opts.ConsumeOpts
	consumeOpts.NoAck = true
	replies, err := channel.Consume(replyQueue.Name, consumeOpts)
	if err != nil {
		return reply, fmt.Errorf("error consuming reply queue: %w", err)
	}

	correlationID := uuid.NewString()
	sendOpts := opts.SendOpts
	sendOpts.CorrelationID = correlationID
	sendOpts.ReplyTo = replyQueue.Name

	logger := client.opts.logger.With().
		Str("QUEUE", queue).
		Str("CORRELATION_ID", correlationID).
		Logger()

	err = channel.SendToQueue(queue, content, sendOpts)
	if err != nil {
		return reply, fmt.Errorf("error sending rpc request: %w", err)
	}
	logger.Debug().Str("REPLY_TO", replyQueue.Name).Msg("rpc request sent")

	for {
		select {
		case <-ctx.Done():
			if parentCtx.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return reply, fmt.Errorf("%w after %v", ErrTimeout, client.opts.timeout)
			}
			return reply, fmt.Errorf("rpc request cancelled: %w", ctx.Err())
		case delivery, ok := <-replies:
			if !ok {
				return reply, ErrReplyChannelClosed
			}
			if delivery.CorrelationId != correlationID {
				logger.Debug().
					Str("RECEIVED_ID", delivery.CorrelationId).
					Msg("discarding reply with unknown correlation id")
				continue
			}
			logger.Debug().Msg("rpc reply received")
			return delivery, nil
		}
	}
}

// New returns a new Client. Default options are used if opts is nil.
func New(opts *Opts) Client {
	if opts == nil {
		defaultOpts := DefaultOpts()
		opts = &defaultOpts
	}
	return Client{opts: *opts}
}
