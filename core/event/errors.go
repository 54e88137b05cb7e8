package event

import "errors"

var (
	// ErrBufferFull is returned when the channel buffer is full.
	ErrBufferFull = errors.New("event buffer is full")

	// ErrTransportClosed is returned when dispatching to a closed transport.
	ErrTransportClosed = errors.New("event transport is closed")
)
