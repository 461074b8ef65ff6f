// Package amqptest provides testify mocks of the channel, connection and rpc surfaces
// used by the coworkers packages, so handlers can be tested without a live broker.
package amqptest

import (
	"context"
	"sync"

	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/peake100/coworkers-go/pkg/rpc"
	"github.com/stretchr/testify/mock"
)

// Publisher is a mock amqp.Publisher.
type Publisher struct {
	mock.Mock
}

// Publish implements amqp.Publisher.
func (publisher *Publisher) Publish(
	exchange string, key string, content []byte, opts amqp.PublishOpts,
) error {
	args := publisher.Called(exchange, key, content, opts)
	return args.Error(0)
}

// SendToQueue implements amqp.Publisher.
func (publisher *Publisher) SendToQueue(
	queue string, content []byte, opts amqp.PublishOpts,
) error {
	args := publisher.Called(queue, content, opts)
	return args.Error(0)
}

// Channel is a mock amqp.RouteChannel. NotifyClose is not mocked: receivers are
// stored and fired by SimulateClose.
type Channel struct {
	Publisher

	closeLock      sync.Mutex
	closeReceivers []chan *amqp.Error
}

// Ack implements amqp.Acknowledger.
func (channel *Channel) Ack(tag uint64, multiple bool) error {
	args := channel.Called(tag, multiple)
	return args.Error(0)
}

// Nack implements amqp.Acknowledger.
func (channel *Channel) Nack(tag uint64, multiple bool, requeue bool) error {
	args := channel.Called(tag, multiple, requeue)
	return args.Error(0)
}

// QueueDeclare implements amqp.RouteChannel.
func (channel *Channel) QueueDeclare(name string, opts amqp.QueueOpts) (amqp.Queue, error) {
	args := channel.Called(name, opts)
	queue, _ := args.Get(0).(amqp.Queue)
	return queue, args.Error(1)
}

// Qos implements amqp.RouteChannel.
func (channel *Channel) Qos(prefetchCount int, prefetchSize int, global bool) error {
	args := channel.Called(prefetchCount, prefetchSize, global)
	return args.Error(0)
}

// Consume implements amqp.RouteChannel. The first return value should be set as a
// (<-chan amqp.Delivery).
func (channel *Channel) Consume(
	queue string, opts amqp.ConsumeOpts,
) (<-chan amqp.Delivery, error) {
	args := channel.Called(queue, opts)
	deliveries, _ := args.Get(0).(<-chan amqp.Delivery)
	return deliveries, args.Error(1)
}

// Close implements amqp.RouteChannel.
func (channel *Channel) Close() error {
	args := channel.Called()
	return args.Error(0)
}

// NotifyClose implements amqp.RouteChannel.
func (channel *Channel) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	channel.closeLock.Lock()
	defer channel.closeLock.Unlock()

	channel.closeReceivers = append(channel.closeReceivers, receiver)
	return receiver
}

// SimulateClose sends err to, then closes, every receiver registered through
// NotifyClose.
func (channel *Channel) SimulateClose(err *amqp.Error) {
	channel.closeLock.Lock()
	defer channel.closeLock.Unlock()

	for _, receiver := range channel.closeReceivers {
		if err != nil {
			receiver <- err
		}
		close(receiver)
	}
	channel.closeReceivers = nil
}

// ChannelOpener is a mock amqp.ChannelOpener.
type ChannelOpener struct {
	mock.Mock
}

// OpenChannel implements amqp.ChannelOpener.
func (opener *ChannelOpener) OpenChannel() (amqp.RouteChannel, error) {
	args := opener.Called()
	channel, _ := args.Get(0).(amqp.RouteChannel)
	return channel, args.Error(1)
}

// RPC is a mock of the request / reply client used by coworkers.Context.
type RPC struct {
	mock.Mock
}

// Request mocks rpc.Client.Request.
func (client *RPC) Request(
	ctx context.Context,
	conn amqp.ChannelOpener,
	queue string,
	content []byte,
	opts rpc.RequestOpts,
) (amqp.Delivery, error) {
	args := client.Called(ctx, conn, queue, content, opts)
	reply, _ := args.Get(0).(amqp.Delivery)
	return reply, args.Error(1)
}

// Reply mocks rpc.Client.Reply.
func (client *RPC) Reply(
	channel amqp.Publisher,
	message amqp.Delivery,
	content interface{},
	opts amqp.PublishOpts,
) error {
	args := client.Called(channel, message, content, opts)
	return args.Error(0)
}
