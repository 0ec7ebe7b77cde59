package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// maxPreviewBytes caps a downloaded preview; 30 second clips are well under it.
const maxPreviewBytes = 16 << 20

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// BeepFactory plays mp3 previews through the system speaker.
type BeepFactory struct {
	Client *http.Client
	Logger *log.Logger
	Tick   time.Duration
	Buffer time.Duration
}

// NewBeepFactory builds a factory from [shared.AudioConfig].
func NewBeepFactory(cfg shared.AudioConfig, client *http.Client, logger *log.Logger) *BeepFactory {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	f := &BeepFactory{Client: client, Logger: logger, Tick: 250 * time.Millisecond, Buffer: 100 * time.Millisecond}
	if cfg.TickMillis > 0 {
		f.Tick = time.Duration(cfg.TickMillis) * time.Millisecond
	}
	if cfg.BufferMillis > 0 {
		f.Buffer = time.Duration(cfg.BufferMillis) * time.Millisecond
	}
	return f
}

// Open starts loading source in the background and returns its handle immediately.
func (f *BeepFactory) Open(ctx context.Context, source string, ev Events) (Handle, error) {
	if source == "" {
		return nil, shared.ErrNoSource
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &beepHandle{
		source: source,
		events: ev,
		tick:   f.Tick,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: f.Logger.With("source", source),
	}

	go h.load(ctx, f.Client, f.Buffer)
	return h, nil
}

type memoryStream struct {
	*bytes.Reader
}

func (memoryStream) Close() error { return nil }

type beepHandle struct {
	mu       sync.Mutex
	source   string
	events   Events
	tick     time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *log.Logger
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	loaded   bool
	playing  bool
	started  bool
	closed   bool
}

func (h *beepHandle) Source() string { return h.source }

func (h *beepHandle) load(ctx context.Context, client *http.Client, buffer time.Duration) {
	streamer, format, err := fetchPreview(ctx, client, h.source)
	if err != nil {
		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()
		if !closed {
			h.logger.Error("failed to load preview", "error", err)
			h.events.error(err)
		}
		return
	}

	if err := initSpeaker(format.SampleRate, buffer); err != nil {
		streamer.Close()
		h.events.error(err)
		return
	}

	var play beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		play = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		streamer.Close()
		return
	}
	h.streamer = streamer
	h.format = format
	h.ctrl = &beep.Ctrl{Streamer: play, Paused: !h.playing}
	h.loaded = true
	start := h.playing
	h.mu.Unlock()

	if start {
		h.start()
	}
}

func fetchPreview(ctx context.Context, client *http.Client, source string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("%w: preview returned %d", shared.ErrUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to read preview: %w", err)
	}

	streamer, format, err := mp3.Decode(memoryStream{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode preview: %w", err)
	}
	return streamer, format, nil
}

func initSpeaker(rate beep.SampleRate, buffer time.Duration) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// start hands the stream to the speaker once and begins emitting time updates.
func (h *beepHandle) start() {
	h.mu.Lock()
	if h.started || h.closed {
		h.mu.Unlock()
		return
	}
	h.started = true
	ctrl := h.ctrl
	h.mu.Unlock()

	// The callback runs under the speaker lock, so listeners are notified off that goroutine.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		go h.finish()
	})))

	go h.tickLoop()
}

func (h *beepHandle) finish() {
	h.mu.Lock()
	closed := h.closed
	h.playing = false
	h.mu.Unlock()

	h.stopTicker()
	if !closed {
		h.events.ended()
	}
}

func (h *beepHandle) tickLoop() {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			if h.Paused() {
				continue
			}
			h.events.timeUpdate(h.Position(), h.Duration())
		}
	}
}

func (h *beepHandle) stopTicker() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *beepHandle) Play() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return fmt.Errorf("handle closed")
	}
	h.playing = true
	loaded, started, ctrl := h.loaded, h.started, h.ctrl
	h.mu.Unlock()

	if !loaded {
		return nil
	}
	if !started {
		speaker.Lock()
		ctrl.Paused = false
		speaker.Unlock()
		h.start()
		return nil
	}

	speaker.Lock()
	ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Pause() {
	h.mu.Lock()
	h.playing = false
	ctrl := h.ctrl
	h.mu.Unlock()

	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()
}

func (h *beepHandle) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.playing
}

func (h *beepHandle) Position() time.Duration {
	h.mu.Lock()
	streamer, format := h.streamer, h.format
	h.mu.Unlock()

	if streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return format.SampleRate.D(streamer.Position())
}

// Duration is zero until the preview is decoded or when the length is unknown.
func (h *beepHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.streamer == nil || h.streamer.Len() <= 0 {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len())
}

// Close silences the handle without firing Ended.
func (h *beepHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.playing = false
	ctrl, streamer := h.ctrl, h.streamer
	h.mu.Unlock()

	h.cancel()
	h.stopTicker()

	if ctrl != nil {
		speaker.Lock()
		ctrl.Paused = true
		ctrl.Streamer = nil
		speaker.Unlock()
	}
	if streamer != nil {
		return streamer.Close()
	}
	return nil
}
