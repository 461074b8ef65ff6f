package rpc

import "errors"

// ErrNoReplyTo is returned by Client.Reply when the request message did not carry a
// reply-to queue.
var ErrNoReplyTo = errors.New("request message has no reply-to queue")

// ErrTimeout is returned by Client.Request when no reply arrived within the client
// timeout.
var ErrTimeout = errors.New("rpc request timed out")

// ErrReplyChannelClosed is returned by Client.Request when the reply consumer closed
// before a reply arrived.
var ErrReplyChannelClosed = errors.New("reply consumer closed before reply was received")
