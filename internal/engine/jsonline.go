package engine

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
)

// jsonLineChannel is a Channel over a newline-delimited JSON socket.
// Requests carry an id for correlation; notifications carry a channel name.
// This is the minimal transport used when the server is pointed at an
// already-running engine endpoint; richer connection management lives
// outside this subsystem.
type jsonLineChannel struct {
	conn net.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan []byte
	subs    map[string]map[uint64]chan []byte
	subSeq  uint64

	closed atomic.Bool
	done   chan struct{}
}

// Dial connects a json-line channel to the given TCP address.
func Dial(addr string) (Channel, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	ch := &jsonLineChannel{
		conn:    conn,
		pending: make(map[uint64]chan []byte),
		subs:    make(map[string]map[uint64]chan []byte),
		done:    make(chan struct{}),
	}
	go ch.readLoop()
	return ch, nil
}

func (c *jsonLineChannel) Connected() bool {
	return !c.closed.Load()
}

func (c *jsonLineChannel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)
	return c.conn.Close()
}

func (c *jsonLineChannel) Request(ctx context.Context, method string, payload []byte) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrNotConnected
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	respCh := make(chan []byte, 1)
	c.pending[id] = respCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	frame, _ := sjson.SetBytes([]byte(`{}`), "id", id)
	frame, _ = sjson.SetBytes(frame, "method", method)
	frame, _ = sjson.SetRawBytes(frame, "payload", payload)
	frame = append(frame, '\n')

	c.writeMu.Lock()
	_, err := c.conn.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write %s request: %w", method, err)
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrNotConnected
	}
}

func (c *jsonLineChannel) Subscribe(channel string) (<-chan []byte, func()) {
	sub := make(chan []byte, 64)

	c.mu.Lock()
	c.subSeq++
	key := c.subSeq
	if c.subs[channel] == nil {
		c.subs[channel] = make(map[uint64]chan []byte)
	}
	c.subs[channel][key] = sub
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if m := c.subs[channel]; m != nil {
			delete(m, key)
			if len(m) == 0 {
				delete(c.subs, channel)
			}
		}
		c.mu.Unlock()
	}
	return sub, cancel
}

func (c *jsonLineChannel) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())

		parsed := gjson.ParseBytes(line)
		payload := parsed.Get("payload")

		if id := parsed.Get("id"); id.Exists() {
			c.mu.Lock()
			respCh := c.pending[id.Uint()]
			c.mu.Unlock()
			if respCh != nil {
				respCh <- []byte(payload.Raw)
			}
			continue
		}

		if name := parsed.Get("channel"); name.Exists() {
			c.mu.Lock()
			for _, sub := range c.subs[name.String()] {
				select {
				case sub <- []byte(payload.Raw):
				default:
					// slow subscriber: drop rather than stall the reader
					debug.LogEngine("dropping notification on %s: subscriber full", name.String())
				}
			}
			c.mu.Unlock()
			continue
		}

		debug.LogEngine("unroutable engine message: %s", string(line))
	}

	_ = c.Close()
}
