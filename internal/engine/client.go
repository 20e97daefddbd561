package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

// Request methods understood by the engine collaborator.
const (
	methodComputeCodeData = "matlabls/computeCodeData"
	methodResolvePath     = "matlabls/resolvePath"
	methodCd              = "matlabls/changeDirectory"
	methodCapabilities    = "matlabls/capabilities"
	methodProcessFiles    = "matlabls/processFiles"
)

// ErrNotConnected is returned by the few engine calls whose callers need to
// distinguish "engine absent" from a failed request.
var ErrNotConnected = errors.New("engine not connected")

// Core is the engine surface the indexing and resolution components consume.
// *Client implements it; tests substitute fakes.
type Core interface {
	Connected() bool
	OnConnectionEvent(fn func(ConnectionEvent))
	ComputeCodeData(ctx context.Context, sourceText, filePath string, analysisLimit int) *types.FileRecord
	ResolvePath(ctx context.Context, name, contextFilePath string) (string, bool)
	Cd(ctx context.Context, dir string) (string, error)
}

// Client talks to the engine over a Channel. All request failures are
// absorbed here: callers get empty/zero results, never errors, because an
// absent engine is an expected state.
type Client struct {
	mu        sync.RWMutex
	ch        Channel
	observers []func(ConnectionEvent)

	// capability cache, reset on reconnect
	bgChecked   bool
	bgSupported bool
}

// NewClient creates a client. A nil channel means "not connected yet".
func NewClient(ch Channel) *Client {
	return &Client{ch: ch}
}

// Connected reports whether the engine is reachable.
func (c *Client) Connected() bool {
	c.mu.RLock()
	ch := c.ch
	c.mu.RUnlock()
	return ch != nil && ch.Connected()
}

// OnConnectionEvent registers an observer for connect/disconnect events.
func (c *Client) OnConnectionEvent(fn func(ConnectionEvent)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// SetChannel attaches (or detaches, with nil) the transport and notifies
// observers. Called by the connection lifecycle layer.
func (c *Client) SetChannel(ch Channel) {
	c.mu.Lock()
	c.ch = ch
	c.bgChecked = false
	observers := make([]func(ConnectionEvent), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	ev := EventDisconnected
	if ch != nil && ch.Connected() {
		ev = EventConnected
	}
	for _, fn := range observers {
		fn(ev)
	}
}

func (c *Client) channel() Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ch
}

func (c *Client) request(ctx context.Context, method string, payload []byte) (gjson.Result, bool) {
	ch := c.channel()
	if ch == nil || !ch.Connected() {
		return gjson.Result{}, false
	}
	resp, err := ch.Request(ctx, method, payload)
	if err != nil {
		debug.LogEngine("%v", lserrors.NewEngineError(method, err))
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(resp), true
}

// ComputeCodeData asks the engine to parse one file's text into code data.
// Returns an empty record when the engine is unavailable or the call fails;
// records degraded by the analysis limit come back empty-but-valid from the
// engine itself.
func (c *Client) ComputeCodeData(ctx context.Context, sourceText, filePath string, analysisLimit int) *types.FileRecord {
	payload, _ := sjson.SetBytes([]byte(`{}`), "code", sourceText)
	payload, _ = sjson.SetBytes(payload, "filePath", filePath)
	payload, _ = sjson.SetBytes(payload, "analysisLimit", analysisLimit)

	resp, ok := c.request(ctx, methodComputeCodeData, payload)
	if !ok {
		return types.EmptyFileRecord(filePath)
	}
	return DecodeCodeData(filePath, resp)
}

// ResolvePath asks the engine to resolve a bare name given a context file.
// Not found is a normal outcome, reported via the bool.
func (c *Client) ResolvePath(ctx context.Context, name, contextFilePath string) (string, bool) {
	payload, _ := sjson.SetBytes([]byte(`{}`), "name", name)
	payload, _ = sjson.SetBytes(payload, "contextFilePath", contextFilePath)

	resp, ok := c.request(ctx, methodResolvePath, payload)
	if !ok {
		return "", false
	}
	if !resp.Get("isFound").Bool() {
		return "", false
	}
	path := resp.Get("path").String()
	return path, path != ""
}

// Cd changes the engine's ambient working directory and returns the previous
// one so callers can restore it.
func (c *Client) Cd(ctx context.Context, dir string) (string, error) {
	payload, _ := sjson.SetBytes([]byte(`{}`), "path", dir)

	ch := c.channel()
	if ch == nil || !ch.Connected() {
		return "", ErrNotConnected
	}
	resp, err := ch.Request(ctx, methodCd, payload)
	if err != nil {
		err := lserrors.NewEngineError(methodCd, err)
		debug.LogEngine("%v", err)
		return "", err
	}
	return gjson.GetBytes(resp, "previous").String(), nil
}

// SupportsBackgroundProcessing probes (once per connection) whether the
// engine offers the background bulk-parse facility. Older engines do not.
func (c *Client) SupportsBackgroundProcessing(ctx context.Context) bool {
	c.mu.RLock()
	checked, supported := c.bgChecked, c.bgSupported
	c.mu.RUnlock()
	if checked {
		return supported
	}

	resp, ok := c.request(ctx, methodCapabilities, []byte(`{}`))
	supported = ok && resp.Get("backgroundProcessing").Bool()

	c.mu.Lock()
	c.bgChecked = true
	c.bgSupported = supported
	c.mu.Unlock()
	return supported
}

// ProcessFilesInBackground submits a batch to the engine's background worker.
// Results arrive as notifications on the named destination channel.
func (c *Client) ProcessFilesInBackground(ctx context.Context, files []string, analysisLimit int, destChannel string) error {
	payload, _ := sjson.SetBytes([]byte(`{}`), "files", files)
	payload, _ = sjson.SetBytes(payload, "analysisLimit", analysisLimit)
	payload, _ = sjson.SetBytes(payload, "channel", destChannel)

	ch := c.channel()
	if ch == nil || !ch.Connected() {
		return ErrNotConnected
	}
	if _, err := ch.Request(ctx, methodProcessFiles, payload); err != nil {
		err := lserrors.NewEngineError(methodProcessFiles, err)
		debug.LogEngine("%v", err)
		return err
	}
	return nil
}

// SubscribeBulk subscribes to a bulk result destination channel.
func (c *Client) SubscribeBulk(destChannel string) (<-chan []byte, func()) {
	ch := c.channel()
	if ch == nil {
		closed := make(chan []byte)
		close(closed)
		return closed, func() {}
	}
	return ch.Subscribe(destChannel)
}
