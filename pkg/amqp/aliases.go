/*
In this file we create type aliases for the streadway types we pass through without
re-implementing.
*/

package amqp

import streadway "github.com/streadway/amqp"

// Config is used in DialConfig to specify the desired tuning parameters used during a
// connection open handshake.
type Config = streadway.Config

// Error captures the code and reason a channel or connection has been closed by the
// server.
type Error = streadway.Error

// Delivery captures the fields for a previously delivered message resident in a queue
// to be delivered by the server to a consumer.
type Delivery = streadway.Delivery

// Publishing captures the client message sent to the server.
type Publishing = streadway.Publishing

// Queue captures the current server state of the queue on the server returned from
// Channel.QueueDeclare.
type Queue = streadway.Queue

// Table stores user supplied fields for headers and declaration arguments. RabbitMQ
// expects int32 for integer values.
type Table = streadway.Table

// ErrClosed is returned when the channel or connection is not open.
var ErrClosed = streadway.ErrClosed

// Persistent and Transient are the DeliveryMode values of a Publishing.
const (
	Transient  = streadway.Transient
	Persistent = streadway.Persistent
)
