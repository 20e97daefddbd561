package engine

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/debug"
	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

// BulkParser produces a lazy, finite, non-restartable stream of per-file
// code-data messages for a batch of files. The stream always terminates with
// exactly one message whose Done flag is set, and the channel is closed
// after it.
type BulkParser interface {
	Parse(ctx context.Context, files []string, analysisLimit int) <-chan types.CodeDataMessage
}

// NewBulkParser returns the strategy-selecting parser: the engine's
// background worker when the connected engine offers it, otherwise the
// cooperative polling fallback. The capability is probed per connection, so
// a reconnect to a newer engine upgrades the strategy. Callers cannot tell
// which one they got.
func NewBulkParser(client *Client) BulkParser {
	return &dynamicBulkParser{client: client}
}

type dynamicBulkParser struct {
	client *Client
}

func (p *dynamicBulkParser) Parse(ctx context.Context, files []string, analysisLimit int) <-chan types.CodeDataMessage {
	if p.client.SupportsBackgroundProcessing(ctx) {
		bg := &backgroundBulkParser{client: p.client}
		return bg.Parse(ctx, files, analysisLimit)
	}
	return NewPollingBulkParser(p.client, DefaultPollingDelay).Parse(ctx, files, analysisLimit)
}

// DefaultPollingDelay is the fixed pause between per-file engine calls in
// the polling fallback, keeping the engine responsive to interactive work.
const DefaultPollingDelay = 50 * time.Millisecond

var bulkSequence atomic.Uint64

// backgroundBulkParser drives the engine's background worker: one request
// submits the batch, results stream back as notifications on a dedicated
// destination channel.
type backgroundBulkParser struct {
	client *Client
}

func (p *backgroundBulkParser) Parse(ctx context.Context, files []string, analysisLimit int) <-chan types.CodeDataMessage {
	out := make(chan types.CodeDataMessage, len(files)+1)

	go func() {
		defer close(out)

		dest := fmt.Sprintf("bulk/%d", bulkSequence.Add(1))
		msgs, cancel := p.client.SubscribeBulk(dest)
		defer cancel()

		if err := p.client.ProcessFilesInBackground(ctx, files, analysisLimit, dest); err != nil {
			out <- types.CodeDataMessage{Done: true}
			return
		}

		for {
			select {
			case raw, ok := <-msgs:
				if !ok {
					out <- types.CodeDataMessage{Done: true}
					return
				}
				msg, err := DecodeBulkMessage(raw)
				if err != nil {
					continue // malformed message: skip, batch continues
				}
				out <- msg
				if msg.Done {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// pollingBulkParser is the compatibility fallback for engines without the
// background worker: it walks the batch one file at a time through the
// synchronous code-data request, pausing between files, and synthesizes the
// same terminal message semantics.
type pollingBulkParser struct {
	core     Core
	delay    time.Duration
	readFile func(string) ([]byte, error)
}

// NewPollingBulkParser creates the polling fallback over any engine core.
func NewPollingBulkParser(core Core, delay time.Duration) BulkParser {
	return &pollingBulkParser{core: core, delay: delay, readFile: os.ReadFile}
}

func (p *pollingBulkParser) Parse(ctx context.Context, files []string, analysisLimit int) <-chan types.CodeDataMessage {
	out := make(chan types.CodeDataMessage, len(files)+1)

	go func() {
		defer close(out)

		for i, file := range files {
			select {
			case <-ctx.Done():
				return
			default:
			}

			last := i == len(files)-1

			content, err := p.readFile(file)
			if err != nil {
				debug.LogEngine("%v", lserrors.NewIndexingError("bulk read", err).WithFile(file))
				if last {
					out <- types.CodeDataMessage{FilePath: file, Done: true}
				}
				continue
			}

			record := p.core.ComputeCodeData(ctx, string(content), file, analysisLimit)
			out <- types.CodeDataMessage{FilePath: file, Record: record, Done: last}

			if !last && p.delay > 0 {
				select {
				case <-time.After(p.delay):
				case <-ctx.Done():
					return
				}
			}
		}

		if len(files) == 0 {
			out <- types.CodeDataMessage{Done: true}
		}
	}()

	return out
}
