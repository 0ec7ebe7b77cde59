package audio

import (
	"context"
	"time"
)

// Events are the notifications a [Handle] emits while it plays.
// Duration is zero while the stream length is unknown.
type Events struct {
	TimeUpdate func(position, duration time.Duration)
	Ended      func()
	Error      func(err error)
}

func (e Events) timeUpdate(pos, dur time.Duration) {
	if e.TimeUpdate != nil {
		e.TimeUpdate(pos, dur)
	}
}

func (e Events) ended() {
	if e.Ended != nil {
		e.Ended()
	}
}

func (e Events) error(err error) {
	if e.Error != nil {
		e.Error(err)
	}
}

// Handle is one loaded preview.
type Handle interface {
	Source() string
	Play() error
	Pause()
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	Close() error
}

// Factory opens handles for preview URLs.
//
// Open returns as soon as the handle exists; loading may continue in the background,
// the way a browser audio element does.
type Factory interface {
	Open(ctx context.Context, source string, ev Events) (Handle, error)
}
