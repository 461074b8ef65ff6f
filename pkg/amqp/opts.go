package amqp

import "time"

// PublishOpts holds the options for a single publication. Every field other than
// Mandatory and Immediate is copied onto the resulting Publishing.
type PublishOpts struct {
	// Mandatory requests a basic.return from the broker if the message cannot be
	// routed to a queue.
	Mandatory bool
	// Immediate requests a basic.return if the message cannot be delivered to a
	// consumer immediately.
	Immediate bool

	Headers         Table
	ContentType     string
	ContentEncoding string
	// Persistent sets the delivery mode to Persistent when true, Transient otherwise.
	Persistent    bool
	Priority      uint8
	CorrelationID string
	ReplyTo       string
	Expiration    string
	MessageID     string
	Timestamp     time.Time
	Type          string
	UserID        string
	AppID         string
}

// Publishing builds the streadway Publishing for content with these options applied.
func (opts PublishOpts) Publishing(content []byte) Publishing {
	deliveryMode := Transient
	if opts.Persistent {
		deliveryMode = Persistent
	}

	return Publishing{
		Headers:         CopyTable(opts.Headers),
		ContentType:     opts.ContentType,
		ContentEncoding: opts.ContentEncoding,
		DeliveryMode:    deliveryMode,
		Priority:        opts.Priority,
		CorrelationId:   opts.CorrelationID,
		ReplyTo:         opts.ReplyTo,
		Expiration:      opts.Expiration,
		MessageId:       opts.MessageID,
		Timestamp:       opts.Timestamp,
		Type:            opts.Type,
		UserId:          opts.UserID,
		AppId:           opts.AppID,
		Body:            content,
	}
}

// QueueOpts are the args a queue is declared with.
type QueueOpts struct {
	// Durable queues survive broker restarts.
	Durable bool
	// AutoDelete queues are deleted when their last consumer unsubscribes.
	AutoDelete bool
	// Exclusive queues are only accessible by the declaring connection.
	Exclusive bool
	// NoWait declares the queue without waiting for a server response.
	NoWait bool
	// Args are additional declaration arguments, like "x-message-ttl".
	Args Table
}

// Merge returns opts with every field set in override written over it. Flags set in
// override are kept and Args are merged key-wise, with override winning on conflict.
func (opts QueueOpts) Merge(override QueueOpts) QueueOpts {
	opts.Durable = opts.Durable || override.Durable
	opts.AutoDelete = opts.AutoDelete || override.AutoDelete
	opts.Exclusive = opts.Exclusive || override.Exclusive
	opts.NoWait = opts.NoWait || override.NoWait
	opts.Args = mergeTables(opts.Args, override.Args)
	return opts
}

// ConsumeOpts are the args a queue consumer is created with.
type ConsumeOpts struct {
	// ConsumerTag identifies the consumer with the broker. The broker generates one
	// when empty.
	ConsumerTag string
	// NoAck consumers have deliveries acknowledged by the broker as soon as they are
	// sent.
	NoAck bool
	// Exclusive consumers are the only consumer allowed on the queue.
	Exclusive bool
	// NoLocal is not supported by RabbitMQ but is kept for protocol parity.
	NoLocal bool
	// NoWait starts the consumer without waiting for a server response.
	NoWait bool
	// Args are additional consume arguments.
	Args Table
}

// Merge returns opts with every field set in override written over it. A non-empty
// ConsumerTag in override wins, flags set in override are kept and Args are merged
// key-wise, with override winning on conflict.
func (opts ConsumeOpts) Merge(override ConsumeOpts) ConsumeOpts {
	if override.ConsumerTag != "" {
		opts.ConsumerTag = override.ConsumerTag
	}
	opts.NoAck = opts.NoAck || override.NoAck
	opts.Exclusive = opts.Exclusive || override.Exclusive
	opts.NoLocal = opts.NoLocal || override.NoLocal
	opts.NoWait = opts.NoWait || override.NoWait
	opts.Args = mergeTables(opts.Args, override.Args)
	return opts
}
