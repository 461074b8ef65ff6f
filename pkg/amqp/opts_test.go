package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishOptsPublishing(t *testing.T) {
	assert := assert.New(t)

	timestamp := time.Now().UTC()
	opts := PublishOpts{
		Mandatory:     true,
		Headers:       Table{"key": "value"},
		ContentType:   "application/json",
		Persistent:    true,
		Priority:      3,
		CorrelationID: "correlation",
		ReplyTo:       "reply-queue",
		MessageID:     "message",
		Timestamp:     timestamp,
		AppID:         "app",
	}

	publishing := opts.Publishing([]byte("content"))
	assert.Equal([]byte("content"), publishing.Body, "body")
	assert.Equal(Persistent, publishing.DeliveryMode, "delivery mode")
	assert.Equal("application/json", publishing.ContentType, "content type")
	assert.Equal(uint8(3), publishing.Priority, "priority")
	assert.Equal("correlation", publishing.CorrelationId, "correlation id")
	assert.Equal("reply-queue", publishing.ReplyTo, "reply to")
	assert.Equal("message", publishing.MessageId, "message id")
	assert.Equal(timestamp, publishing.Timestamp, "timestamp")
	assert.Equal("app", publishing.AppId, "app id")
	assert.Equal(Table{"key": "value"}, publishing.Headers, "headers")

	// The headers table should be a copy.
	publishing.Headers["key"] = "changed"
	assert.Equal("value", opts.Headers["key"], "original headers untouched")
}

func TestPublishOptsTransientByDefault(t *testing.T) {
	publishing := PublishOpts{}.Publishing(nil)
	assert.Equal(t, Transient, publishing.DeliveryMode)
	assert.Nil(t, publishing.Headers)
}

func TestQueueOptsMerge(t *testing.T) {
	assert := assert.New(t)

	defaults := QueueOpts{
		Durable: true,
		Args:    Table{"x-message-ttl": int32(1000), "x-max-length": int32(10)},
	}
	override := QueueOpts{
		Exclusive: true,
		Args:      Table{"x-max-length": int32(20)},
	}

	merged := defaults.Merge(override)
	assert.True(merged.Exclusive, "exclusive from override")
	assert.True(merged.Durable, "durable kept from defaults")
	assert.False(merged.AutoDelete, "auto delete unset in both")
	assert.Equal(
		Table{"x-message-ttl": int32(1000), "x-max-length": int32(20)},
		merged.Args,
		"args merged with override winning",
	)
	assert.Equal(int32(10), defaults.Args["x-max-length"], "defaults untouched")
}

func TestQueueOptsMergeArgsOnly(t *testing.T) {
	registered := QueueOpts{Durable: true, Exclusive: true}
	merged := registered.Merge(QueueOpts{Args: Table{"x-max-length": int32(5)}})

	assert.True(t, merged.Durable, "durable kept")
	assert.True(t, merged.Exclusive, "exclusive kept")
	assert.Equal(t, Table{"x-max-length": int32(5)}, merged.Args)
}

func TestConsumeOptsMerge(t *testing.T) {
	assert := assert.New(t)

	registered := ConsumeOpts{ConsumerTag: "registered", NoAck: true}

	merged := registered.Merge(ConsumeOpts{Exclusive: true})
	assert.Equal("registered", merged.ConsumerTag, "empty tag does not override")
	assert.True(merged.NoAck, "no ack kept")
	assert.True(merged.Exclusive, "exclusive from override")

	merged = registered.Merge(ConsumeOpts{ConsumerTag: "override"})
	assert.Equal("override", merged.ConsumerTag, "tag from override")
}

func TestConsumeOptsMergeNilArgs(t *testing.T) {
	merged := ConsumeOpts{}.Merge(ConsumeOpts{NoAck: true})
	assert.True(t, merged.NoAck)
	assert.Nil(t, merged.Args)
}

func TestCopyTable(t *testing.T) {
	assert.Nil(t, CopyTable(nil))

	original := Table{"a": 1}
	copied := CopyTable(original)
	copied["a"] = 2
	assert.Equal(t, 1, original["a"])
}
