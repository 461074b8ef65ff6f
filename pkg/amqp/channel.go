package amqp

import streadway "github.com/streadway/amqp"

// Publisher is the publishing surface of a channel.
type Publisher interface {
	// Publish sends content to exchange with routing key.
	Publish(exchange string, key string, content []byte, opts PublishOpts) error
	// SendToQueue sends content directly to queue through the default exchange.
	SendToQueue(queue string, content []byte, opts PublishOpts) error
}

// Acknowledger is the acknowledgement surface of a channel.
type Acknowledger interface {
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple bool, requeue bool) error
}

// RouteChannel is the full channel surface used by consumers and rpc requests.
type RouteChannel interface {
	Publisher
	Acknowledger

	QueueDeclare(name string, opts QueueOpts) (Queue, error)
	Qos(prefetchCount int, prefetchSize int, global bool) error
	Consume(queue string, opts ConsumeOpts) (<-chan Delivery, error)
	NotifyClose(receiver chan *Error) chan *Error
	Close() error
}

// ChannelOpener opens new channels, usually a *Connection.
type ChannelOpener interface {
	OpenChannel() (RouteChannel, error)
}

// Channel wraps a streadway channel and implements RouteChannel. The embedded
// streadway channel remains reachable for methods not covered here.
type Channel struct {
	*streadway.Channel
}

// Publish sends content to exchange with routing key, building the Publishing from
// opts.
func (channel Channel) Publish(
	exchange string, key string, content []byte, opts PublishOpts,
) error {
	return channel.Channel.Publish(
		exchange,
		key,
		opts.Mandatory,
		opts.Immediate,
		opts.Publishing(content),
	)
}

// SendToQueue sends content to queue through the default exchange.
func (channel Channel) SendToQueue(queue string, content []byte, opts PublishOpts) error {
	return channel.Publish("", queue, content, opts)
}

// QueueDeclare declares queue with opts. An empty name lets the server generate one.
func (channel Channel) QueueDeclare(name string, opts QueueOpts) (Queue, error) {
	return channel.Channel.QueueDeclare(
		name,
		opts.Durable,
		opts.AutoDelete,
		opts.Exclusive,
		opts.NoWait,
		opts.Args,
	)
}

// Consume starts delivering messages from queue.
func (channel Channel) Consume(queue string, opts ConsumeOpts) (<-chan Delivery, error) {
	return channel.Channel.Consume(
		queue,
		opts.ConsumerTag,
		opts.NoAck,
		opts.Exclusive,
		opts.NoLocal,
		opts.NoWait,
		opts.Args,
	)
}
