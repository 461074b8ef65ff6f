package coworkers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/peake100/coworkers-go/pkg/amqptest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type LoggingSuite struct {
	suite.Suite

	buffer  *bytes.Buffer
	logging ProvidesDelivery
	ctx     *Context
}

func (suite *LoggingSuite) SetupTest() {
	suite.buffer = new(bytes.Buffer)
	logger := zerolog.New(suite.buffer)

	suite.logging = NewDefaultLogging(logger, zerolog.ErrorLevel, zerolog.InfoLevel)

	opts := testOpts(new(amqptest.RPC))
	app := New(&opts)
	suite.ctx = NewContext(
		app,
		"queue-name",
		NewMessage(amqp.Delivery{DeliveryTag: 1, Body: []byte(`{"foo":1}`)}),
	)
}

// entries decodes every log line written to the buffer.
func (suite *LoggingSuite) entries() []map[string]interface{} {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(suite.buffer.String()), "\n") {
		if line == "" {
			continue
		}
		entry := make(map[string]interface{})
		suite.Require().NoError(json.Unmarshal([]byte(line), &entry), "decode log line")
		entries = append(entries, entry)
	}
	return entries
}

func (suite *LoggingSuite) TestSuccess() {
	handler := suite.logging.Delivery(func(ctx *Context) error {
		ctx.Logger.Info().Msg("inside handler")
		return ctx.SetAck(&AckOpts{})
	})

	suite.NoError(handler(suite.ctx))

	entries := suite.entries()
	suite.Require().Len(entries, 2)

	inner := entries[0]
	suite.Equal("inside handler", inner["message"])
	suite.Equal("queue-name", inner["QUEUE"], "handler logger scoped to delivery")
	suite.Equal(float64(1), inner["DELIVERY_TAG"])

	result := entries[1]
	suite.Equal("info", result["level"])
	suite.Equal("delivery processed", result["message"])
	suite.Equal("ack", result["ACK"])
	suite.Contains(result, "DURATION")
	suite.NotContains(result, "DELIVERY", "delivery only logged at error level")
}

func (suite *LoggingSuite) TestError() {
	handler := suite.logging.Delivery(func(ctx *Context) error {
		return errors.New("handler failed")
	})

	suite.EqualError(handler(suite.ctx), "handler failed")

	entries := suite.entries()
	suite.Require().Len(entries, 1)

	result := entries[0]
	suite.Equal("error", result["level"])
	suite.Equal("handler failed", result["error"])
	suite.Equal("unset", result["ACK"])
	suite.Contains(result, "DELIVERY", "delivery logged on error")
	suite.NotContains(result, "STACKTRACE")
}

func (suite *LoggingSuite) TestPanic() {
	handler := suite.logging.Delivery(recoverPanicMiddleware(func(ctx *Context) error {
		panic("handler panicked")
	}))

	err := handler(suite.ctx)
	suite.EqualError(err, "panic recovered: handler panicked")

	entries := suite.entries()
	suite.Require().Len(entries, 1)
	suite.Contains(entries[0], "STACKTRACE")
}

func (suite *LoggingSuite) TestSuccessBelowLevel() {
	logging := NewDefaultLogging(
		zerolog.New(suite.buffer).Level(zerolog.InfoLevel),
		zerolog.ErrorLevel,
		zerolog.DebugLevel,
	)
	handler := logging.Delivery(func(ctx *Context) error { return nil })

	suite.NoError(handler(suite.ctx))
	suite.Empty(suite.buffer.String(), "debug success not logged")
}

func TestDefaultLogging(t *testing.T) {
	suite.Run(t, new(LoggingSuite))
}
