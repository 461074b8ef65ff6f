package coworkers

import (
	"errors"
	"fmt"
)

// ErrAppStarted is returned when registering queues or middleware on an Application
// that is already running.
var ErrAppStarted = errors.New("application already started")

// ErrNotConnected is returned by Application.Run when no consumer channel has been set.
var ErrNotConnected = errors.New("application has no consumer channel")

// ErrAlreadyConnected is returned by Application.Connect when the application already
// has a connection.
var ErrAlreadyConnected = errors.New("application already connected")

// ErrDuplicateQueue is returned when a queue name is registered more than once.
var ErrDuplicateQueue = errors.New("queue already registered")

// ErrEmptyQueueName is returned when registering a queue without a name.
var ErrEmptyQueueName = errors.New("queue name cannot be empty")

// ErrNoHandler is returned when registering a queue without a handler.
var ErrNoHandler = errors.New("queue handler cannot be nil")

// ErrDuplicateProvider is returned when a middleware provider with the same TypeID
// is registered twice.
var ErrDuplicateProvider = errors.New("middleware provider already registered")

// ErrNoMiddlewareMethods is returned when a middleware provider implements no
// middleware methods.
var ErrNoMiddlewareMethods = errors.New("provider implements no middleware methods")

// ErrAckUnavailable is returned by every ack intent accessor of a Context once the
// error path has taken over the acknowledgement of its message.
type ErrAckUnavailable struct {
	// Method is the accessor that was called: ack, nack, ackAll or nackAll.
	Method string
}

// Error implements builtins.error.
func (err ErrAckUnavailable) Error() string {
	return fmt.Sprintf(
		"Ack method '%v' not available: message acknowledgement was taken over by"+
			" the error handler",
		err.Method,
	)
}

// PanicError is returned in place of a panic recovered from a handler.
type PanicError struct {
	// Recovered is the value passed to panic.
	Recovered interface{}
	// StackTrace is the formatted stack of the panicking goroutine.
	StackTrace string
}

// Error implements builtins.error.
func (err PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", err.Recovered)
}

// Unwrap returns the recovered value if it was an error.
func (err PanicError) Unwrap() error {
	recoveredErr, _ := err.Recovered.(error)
	return recoveredErr
}
