package songlist

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songview/internal/audio"
	"github.com/desertthunder/songview/internal/shared"
)

// Fraction is the progress-bar width for a playback position, in [0, 1].
// An unknown duration (NaN, infinite or zero) reads as 0.
func Fraction(current, total float64) float64 {
	f := current / total
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

// PlaybackSession is the one loaded preview and the control bound to it.
type PlaybackSession struct {
	handle  audio.Handle
	control *PlayControl
}

// Player is the single owner of preview playback.
type Player struct {
	factory audio.Factory
	sched   Scheduler
	logger  *log.Logger
	ctx     context.Context
	session PlaybackSession
}

func NewPlayer(ctx context.Context, factory audio.Factory, sched Scheduler, logger *log.Logger) *Player {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Player{factory: factory, sched: sched, logger: logger, ctx: ctx}
}

// Active returns the control bound to the session, or nil.
func (p *Player) Active() *PlayControl {
	return p.session.control
}

// Playing reports whether the session is audible.
func (p *Player) Playing() bool {
	return p.session.handle != nil && !p.session.handle.Paused()
}

// TogglePlay starts, pauses or resumes ctrl, stopping any other track first.
//
// An inert control is logged and left alone. Only a nil control is an error.
func (p *Player) TogglePlay(ctrl *PlayControl) error {
	if ctrl == nil {
		return shared.ErrNotBound
	}
	if ctrl.Inert() {
		p.logger.Warn("play control has no preview", "error", shared.ErrNoSource)
		return nil
	}

	current := p.session
	if current.control != nil && current.control != ctrl {
		current.handle.Pause()
		current.control.Icon = IconPlay
	}

	switch {
	case current.handle == nil || current.control != ctrl:
		p.start(ctrl)
	case current.handle.Paused():
		if err := current.handle.Play(); err != nil {
			p.logger.Error("failed to resume preview", "error", err, "source", ctrl.Source)
			return nil
		}
		ctrl.Icon = IconPause
	default:
		current.handle.Pause()
		ctrl.Icon = IconPlay
	}
	return nil
}

func (p *Player) start(ctrl *PlayControl) {
	if p.session.handle != nil {
		if err := p.session.handle.Close(); err != nil {
			p.logger.Debug("failed to close previous preview", "error", err)
		}
		p.session = PlaybackSession{}
	}

	var h audio.Handle
	h, err := p.factory.Open(p.ctx, ctrl.Source, audio.Events{
		TimeUpdate: func(pos, dur time.Duration) {
			p.sched.Post(func() { p.timeUpdate(h, ctrl, pos, dur) })
		},
		Ended: func() {
			p.sched.Post(func() { p.ended(h, ctrl) })
		},
		Error: func(err error) {
			p.sched.Post(func() { p.failed(h, ctrl, err) })
		},
	})
	if err != nil {
		p.logger.Error("failed to open preview", "error", err, "source", ctrl.Source)
		ctrl.Icon = IconPlay
		return
	}

	if err := h.Play(); err != nil {
		p.logger.Error("failed to play preview", "error", err, "source", ctrl.Source)
		_ = h.Close()
		ctrl.Icon = IconPlay
		return
	}

	p.session = PlaybackSession{handle: h, control: ctrl}
	ctrl.Icon = IconPause
}

func (p *Player) current(h audio.Handle) bool {
	return h != nil && p.session.handle == h
}

func (p *Player) timeUpdate(h audio.Handle, ctrl *PlayControl, pos, dur time.Duration) {
	if !p.current(h) {
		return
	}
	ctrl.Progress = Fraction(pos.Seconds(), dur.Seconds())
}

func (p *Player) ended(h audio.Handle, ctrl *PlayControl) {
	if !p.current(h) {
		return
	}
	ctrl.Icon = IconPlay
	ctrl.Progress = 0
	// A finished stream cannot resume; the next toggle reopens from the start.
	_ = h.Close()
	p.session = PlaybackSession{}
}

func (p *Player) failed(h audio.Handle, ctrl *PlayControl, err error) {
	if !p.current(h) {
		return
	}
	p.logger.Error("preview playback failed", "error", err, "source", ctrl.Source)
	ctrl.Icon = IconPlay
	ctrl.Progress = 0
	_ = h.Close()
	p.session = PlaybackSession{}
}

// Stop ends the session, as leaving the page does.
func (p *Player) Stop() {
	if p.session.handle == nil {
		return
	}
	_ = p.session.handle.Close()
	p.session.control.Icon = IconPlay
	p.session = PlaybackSession{}
}

// Release forgets ctrl if it owns the session, used when its row is removed.
func (p *Player) Release(ctrl *PlayControl) {
	if ctrl != nil && p.session.control == ctrl {
		p.Stop()
	}
}
