//revive:disable:import-shadowing

package amqptest

import (
	"testing"

	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// TestDialAddress is the default address for a test broker.
const TestDialAddress = "amqp://localhost:57018"

// BrokerSuiteOpts is used to configure BrokerSuite.
type BrokerSuiteOpts struct {
	dialAddress string
	dialConfig  *amqp.Config
}

// WithDialAddress configures the address to dial for our test connections.
// Default: amqp://localhost:57018
func (opts *BrokerSuiteOpts) WithDialAddress(amqpURI string) *BrokerSuiteOpts {
	opts.dialAddress = amqpURI
	return opts
}

// WithDialConfig sets the amqp.Config object to use when dialing the test broker.
// Default: amqp.DefaultConfig()
func (opts *BrokerSuiteOpts) WithDialConfig(config amqp.Config) *BrokerSuiteOpts {
	opts.dialConfig = &config
	return opts
}

// DialAddress returns the configured broker address.
func (opts *BrokerSuiteOpts) DialAddress() string {
	return opts.dialAddress
}

// NewBrokerSuiteOpts returns a new BrokerSuiteOpts with default values.
func NewBrokerSuiteOpts() *BrokerSuiteOpts {
	return new(BrokerSuiteOpts).
		WithDialAddress(TestDialAddress).
		WithDialConfig(amqp.DefaultConfig())
}

// BrokerSuite is embedded into other suite types to get a connection and channels to a
// live test broker, set up on suite start and closed on suite shutdown, plus helpers
// for test queues and messages.
//
// The whole suite is skipped when the test broker cannot be dialed.
type BrokerSuite struct {
	// Suite is the embedded suite type.
	suite.Suite

	// Opts can be set on suite instantiation or during setup.
	Opts *BrokerSuiteOpts

	conn           amqp.Connection
	channelConsume amqp.Channel
	channelPublish amqp.Channel
}

// openChannel opens a new channel on the suite connection.
func (suite *BrokerSuite) openChannel() amqp.Channel {
	channel, err := suite.conn.Connection.Channel()
	if err != nil {
		suite.T().Errorf("error getting channel: %v", err)
		suite.T().FailNow()
	}
	return amqp.Channel{Channel: channel}
}

// Conn returns the suite connection.
func (suite *BrokerSuite) Conn() amqp.Connection {
	return suite.conn
}

// ChannelConsume returns the channel to be used for consuming methods.
func (suite *BrokerSuite) ChannelConsume() amqp.Channel {
	return suite.channelConsume
}

// ChannelPublish returns the channel to be used for publishing methods.
func (suite *BrokerSuite) ChannelPublish() amqp.Channel {
	return suite.channelPublish
}

// CreateTestQueue declares a basic test queue. If cleanup is true, a cleanup
// function will be registered on the current suite.T() to delete the queue at the end
// of the test.
func (suite *BrokerSuite) CreateTestQueue(name string, cleanup bool) amqp.Queue {
	queue, err := suite.channelPublish.QueueDeclare(name, amqp.QueueOpts{})
	if !suite.NoError(err, "create queue") {
		suite.T().FailNow()
	}

	if cleanup {
		channel := suite.channelPublish
		suite.T().Cleanup(func() {
			_, _ = channel.QueueDelete(name, false, false, false)
		})
	}

	return queue
}

// PublishMessages sends count messages to queue through the default exchange. Message
// bodies are the index of the message starting at 0.
func (suite *BrokerSuite) PublishMessages(t *testing.T, queue string, count int) {
	assert := assert.New(t)

	for i := 0; i < count; i++ {
		err := suite.channelPublish.SendToQueue(
			queue, []byte{byte('0' + i%10)}, amqp.PublishOpts{},
		)
		if !assert.NoErrorf(err, "publish %v", i) {
			t.FailNow()
		}
	}
}

// GetMessage gets a single message, failing the test immediately if there is not a
// message waiting or the get fails.
func (suite *BrokerSuite) GetMessage(queueName string, autoAck bool) amqp.Delivery {
	delivery, ok, err := suite.channelConsume.Get(queueName, autoAck)
	if !suite.NoError(err, "get message") {
		suite.T().FailNow()
	}

	if !suite.True(ok, "message was fetched") {
		suite.T().FailNow()
	}

	return delivery
}

// SetupSuite implements suite.SetupAllSuite. It dials the test broker and opens the
// suite channels, skipping the suite if the broker is unreachable.
func (suite *BrokerSuite) SetupSuite() {
	if suite.Opts == nil {
		suite.Opts = NewBrokerSuiteOpts()
	}

	config := amqp.DefaultConfig()
	if suite.Opts.dialConfig != nil {
		config = *suite.Opts.dialConfig
	}

	conn, err := amqp.DialConfig(suite.Opts.dialAddress, config)
	if err != nil {
		suite.T().Skipf("test broker unavailable: %v", err)
	}
	suite.conn = conn

	suite.channelConsume = suite.openChannel()
	suite.channelPublish = suite.openChannel()
}

// TearDownSuite implements suite.TearDownAllSuite, and closes the suite connection
// and channels.
func (suite *BrokerSuite) TearDownSuite() {
	if suite.conn.Connection == nil {
		return
	}
	if suite.channelConsume.Channel != nil {
		_ = suite.channelConsume.Close()
	}
	if suite.channelPublish.Channel != nil {
		_ = suite.channelPublish.Close()
	}
	_ = suite.conn.Close()
}
