package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songview/internal/songlist"
)

var _ songlist.Scheduler = (*ProgramScheduler)(nil)

// ProgramScheduler runs tasks on goroutines and delivers their completions to a
// [tea.Program] as messages, so view state only changes inside Update.
//
// Messages sent before [ProgramScheduler.Attach] are held and flushed on attach.
type ProgramScheduler struct {
	ctx     context.Context
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	pumping bool
}

func NewProgramScheduler(ctx context.Context) *ProgramScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ProgramScheduler{ctx: ctx}
}

// Attach routes completions to p.
func (s *ProgramScheduler) Attach(p *tea.Program) {
	s.AttachFunc(p.Send)
}

// AttachFunc routes completions to send. Held messages go out first, in order.
func (s *ProgramScheduler) AttachFunc(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.startPump()
	s.mu.Unlock()
}

// deliver queues msg behind every earlier message. It never blocks.
func (s *ProgramScheduler) deliver(msg tea.Msg) {
	s.mu.Lock()
	s.pending = append(s.pending, msg)
	s.startPump()
	s.mu.Unlock()
}

// startPump runs the single sender goroutine if there is work and nothing is
// sending already. Callers hold s.mu.
func (s *ProgramScheduler) startPump() {
	if s.pumping || s.send == nil || len(s.pending) == 0 {
		return
	}
	s.pumping = true
	go s.pump(s.send)
}

func (s *ProgramScheduler) pump(send func(tea.Msg)) {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pumping = false
			s.mu.Unlock()
			return
		}
		msg := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.mu.Unlock()

		send(msg)
	}
}

func (s *ProgramScheduler) Go(task songlist.Task) {
	go func() {
		if done := task(s.ctx); done != nil {
			s.deliver(completionMsg(done))
		}
	}()
}

// Post never blocks the caller, which may be Update itself.
func (s *ProgramScheduler) Post(fn func()) {
	s.deliver(completionMsg(fn))
}
