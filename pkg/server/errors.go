package server

import "errors"

// Sentinel errors for connection conditions.
var (
	// ErrClientClosed is returned when a frame is queued for a closed client.
	ErrClientClosed = errors.New("server: client closed")

	// ErrSendQueueFull is returned when a client cannot keep up with the
	// mutation stream. The client is disconnected; it resyncs on reconnect.
	ErrSendQueueFull = errors.New("server: send queue full")
)
