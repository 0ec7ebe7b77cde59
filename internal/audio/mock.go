package audio

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/songview/internal/shared"
)

// MockFactory hands out [MockHandle]s and remembers them in open order.
type MockFactory struct {
	mu      sync.Mutex
	Handles []*MockHandle
	// Fail makes Open return the mapped error for a source.
	Fail map[string]error
}

func NewMockFactory() *MockFactory {
	return &MockFactory{Fail: make(map[string]error)}
}

func (f *MockFactory) Open(_ context.Context, source string, ev Events) (Handle, error) {
	if source == "" {
		return nil, shared.ErrNoSource
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.Fail[source]; ok {
		return nil, err
	}

	h := &MockHandle{source: source, events: ev, paused: true}
	f.Handles = append(f.Handles, h)
	return h, nil
}

// Last returns the most recently opened handle, or nil.
func (f *MockFactory) Last() *MockHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Handles) == 0 {
		return nil
	}
	return f.Handles[len(f.Handles)-1]
}

// Opened returns how many handles were opened.
func (f *MockFactory) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Handles)
}

// Playing counts handles that are neither paused nor closed.
func (f *MockFactory) Playing() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, h := range f.Handles {
		if !h.Paused() && !h.Closed() {
			n++
		}
	}
	return n
}

// MockHandle is a [Handle] whose clock is advanced by the test.
type MockHandle struct {
	mu       sync.Mutex
	source   string
	events   Events
	paused   bool
	closed   bool
	position time.Duration
	duration time.Duration
	plays    int
}

func (h *MockHandle) Source() string { return h.source }

func (h *MockHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	h.plays++
	return nil
}

func (h *MockHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
}

func (h *MockHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

func (h *MockHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Plays counts Play calls.
func (h *MockHandle) Plays() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays
}

func (h *MockHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *MockHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *MockHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.paused = true
	return nil
}

// SimulateTime moves the clock and emits a time update, as a decoder tick would.
// Closed handles still emit, so listeners must ignore stale handles themselves.
func (h *MockHandle) SimulateTime(position, duration time.Duration) {
	h.mu.Lock()
	h.position, h.duration = position, duration
	ev := h.events
	h.mu.Unlock()

	ev.timeUpdate(position, duration)
}

// SimulateEnded finishes the track.
func (h *MockHandle) SimulateEnded() {
	h.mu.Lock()
	h.paused = true
	h.position = h.duration
	ev := h.events
	h.mu.Unlock()

	ev.ended()
}

// SimulateError reports a load failure.
func (h *MockHandle) SimulateError(err error) {
	h.mu.Lock()
	h.paused = true
	ev := h.events
	h.mu.Unlock()

	ev.error(err)
}
