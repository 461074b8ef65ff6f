package coworkers

import (
	"encoding/json"
	"fmt"

	"github.com/peake100/coworkers-go/pkg/amqp"
	"github.com/tidwall/gjson"
)

// Message is an inbound delivery with a back-reference to the Context built for it.
type Message struct {
	amqp.Delivery

	context *Context
}

// NewMessage wraps delivery.
func NewMessage(delivery amqp.Delivery) *Message {
	return &Message{Delivery: delivery}
}

// Context returns the Context that was built for this message, or nil if none has been
// built yet.
func (message *Message) Context() *Context {
	return message.context
}

// Bind decodes the JSON body of the message into v.
func (message *Message) Bind(v interface{}) error {
	if err := json.Unmarshal(message.Body, v); err != nil {
		return fmt.Errorf("error decoding message body: %w", err)
	}
	return nil
}

// Field looks up path in the JSON body of the message using gjson path syntax. The
// result does not exist if the body is not valid JSON or the path is not found.
func (message *Message) Field(path string) gjson.Result {
	if !gjson.ValidBytes(message.Body) {
		return gjson.Result{}
	}
	return gjson.GetBytes(message.Body, path)
}
