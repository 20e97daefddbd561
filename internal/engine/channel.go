// Package engine is the boundary to the MATLAB engine collaborator. The
// engine owns all language semantics: it parses source text into code data,
// resolves names to paths against its ambient working directory, and runs
// bulk background parsing. This package only shapes requests, decodes
// responses, and degrades gracefully when the engine is not there.
package engine

import (
	"context"
)

// Channel is the pre-existing generic request/notification transport to the
// engine process. Request correlation and framing belong to the connection
// layer, not to this package.
type Channel interface {
	// Request sends a request and blocks until the response payload arrives
	// or ctx is done.
	Request(ctx context.Context, method string, payload []byte) ([]byte, error)

	// Subscribe returns a stream of notification payloads published to the
	// named engine channel, plus a cancel function that releases the
	// subscription.
	Subscribe(channel string) (<-chan []byte, func())

	// Connected reports whether the transport is currently usable.
	Connected() bool

	// Close tears down the transport.
	Close() error
}

// ConnectionEvent is the closed set of lifecycle events the indexing core
// reacts to.
type ConnectionEvent int

const (
	EventConnected ConnectionEvent = iota
	EventDisconnected
)

func (e ConnectionEvent) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
