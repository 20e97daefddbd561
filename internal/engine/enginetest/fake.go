// Package enginetest provides the standard engine double used across the
// indexing and search test suites.
package enginetest

import (
	"context"
	"sync"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/engine"
	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

// Fake implements engine.Core with scripted responses and call accounting.
type Fake struct {
	mu sync.Mutex

	// Records maps file path to the record ComputeCodeData hands back. When
	// a path is missing, ComputeFn is tried, then an empty record.
	Records map[string]*types.FileRecord

	// ComputeFn, when set, computes a record from the source text.
	ComputeFn func(sourceText, filePath string, analysisLimit int) *types.FileRecord

	// Resolvable maps name -> resolved path for the direct lookup.
	// ResolvableFromRoot maps cwd -> name -> path for lookups that only
	// succeed after a Cd to that directory.
	Resolvable         map[string]string
	ResolvableFromRoot map[string]map[string]string

	// Cwd is the ambient working directory.
	Cwd string

	// Disconnected makes the fake behave like an absent engine.
	Disconnected bool

	// CdErr, when set, makes every Cd fail with it.
	CdErr error

	observers []func(engine.ConnectionEvent)

	ComputeCalls []string
	CdCalls      []string
}

// NewFake returns a connected fake with empty scripts.
func NewFake() *Fake {
	return &Fake{
		Records:            map[string]*types.FileRecord{},
		Resolvable:         map[string]string{},
		ResolvableFromRoot: map[string]map[string]string{},
		Cwd:                "/",
	}
}

func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Disconnected
}

func (f *Fake) OnConnectionEvent(fn func(engine.ConnectionEvent)) {
	f.mu.Lock()
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
}

// FireConnected simulates the connection layer reporting a (re)connect.
func (f *Fake) FireConnected() {
	f.mu.Lock()
	f.Disconnected = false
	observers := make([]func(engine.ConnectionEvent), len(f.observers))
	copy(observers, f.observers)
	f.mu.Unlock()
	for _, fn := range observers {
		fn(engine.EventConnected)
	}
}

func (f *Fake) ComputeCodeData(_ context.Context, sourceText, filePath string, analysisLimit int) *types.FileRecord {
	f.mu.Lock()
	f.ComputeCalls = append(f.ComputeCalls, filePath)
	disconnected := f.Disconnected
	record := f.Records[filePath]
	computeFn := f.ComputeFn
	f.mu.Unlock()

	if disconnected {
		return types.EmptyFileRecord(filePath)
	}
	if record != nil {
		return record
	}
	if computeFn != nil {
		return computeFn(sourceText, filePath, analysisLimit)
	}
	return types.EmptyFileRecord(filePath)
}

func (f *Fake) ResolvePath(_ context.Context, name, _ string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Disconnected {
		return "", false
	}
	if byRoot := f.ResolvableFromRoot[f.Cwd]; byRoot != nil {
		if path, ok := byRoot[name]; ok {
			return path, true
		}
	}
	if path, ok := f.Resolvable[name]; ok {
		return path, true
	}
	return "", false
}

func (f *Fake) Cd(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Disconnected {
		return "", engine.ErrNotConnected
	}
	if f.CdErr != nil {
		return "", f.CdErr
	}
	prev := f.Cwd
	f.Cwd = dir
	f.CdCalls = append(f.CdCalls, dir)
	return prev, nil
}

// ComputeCallCount returns how many code-data computations ran for path.
func (f *Fake) ComputeCallCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.ComputeCalls {
		if p == path {
			n++
		}
	}
	return n
}

// WorkingDirectory returns the fake's ambient working directory.
func (f *Fake) WorkingDirectory() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Cwd
}

// ScriptedBulkParser is an engine.BulkParser that replays a fixed message
// sequence, for exercising stream consumers directly.
type ScriptedBulkParser struct {
	Messages []types.CodeDataMessage
}

func (p *ScriptedBulkParser) Parse(_ context.Context, _ []string, _ int) <-chan types.CodeDataMessage {
	out := make(chan types.CodeDataMessage, len(p.Messages))
	go func() {
		defer close(out)
		for _, msg := range p.Messages {
			out <- msg
			if msg.Done {
				return
			}
		}
	}()
	return out
}
