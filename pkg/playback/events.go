package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

// FrameEvent carries a frame the receiver owns and must Close once done.
type FrameEvent struct {
	Frame videoframe.Frame
	Index int
}

// Listener receives playback notifications. OnFrame may be called from the
// playback worker or from the goroutine calling a seek, never both at once
// for the same player. Implementations must not call back into the player.
type Listener interface {
	OnFrame(FrameEvent)
	OnDone(stopped bool)
}

// ListenerFuncs adapts plain functions to a Listener, nil fields are ignored.
type ListenerFuncs struct {
	Frame func(FrameEvent)
	Done  func(stopped bool)
}

func (l ListenerFuncs) OnFrame(ev FrameEvent) {
	if l.Frame == nil {
		ev.Frame.Close()
		return
	}
	l.Frame(ev)
}

func (l ListenerFuncs) OnDone(stopped bool) {
	if l.Done != nil {
		l.Done(stopped)
	}
}

type noopListener struct{}

func (noopListener) OnFrame(ev FrameEvent) { ev.Frame.Close() }
func (noopListener) OnDone(bool)           {}

var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox is a single slot Listener which only ever holds the most recent
// frame. Publishing over an unconsumed frame closes and counts the old one.
type Mailbox struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  *FrameEvent
	drops    uint64
	finished bool
	dones    int
	closed   bool
	onDrop   func()
}

func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// OnDrop registers fn to be called, outside the mailbox lock, each time a
// pending frame is overwritten.
func (m *Mailbox) OnDrop(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDrop = fn
}

func (m *Mailbox) OnFrame(ev FrameEvent) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		ev.Frame.Close()
		return
	}

	var dropped *FrameEvent
	if m.pending != nil {
		dropped = m.pending
		m.drops++
	}
	m.pending = &ev
	m.finished = false
	onDrop := m.onDrop
	m.cond.Broadcast()
	m.mu.Unlock()

	if dropped != nil {
		dropped.Frame.Close()
		if onDrop != nil {
			onDrop()
		}
	}
}

func (m *Mailbox) OnDone(stopped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = stopped
	m.dones++
	m.cond.Broadcast()
}

// Next blocks until a frame is pending, the mailbox is closed or ctx is done.
func (m *Mailbox) Next(ctx context.Context) (FrameEvent, error) {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for m.pending == nil && !m.closed && ctx.Err() == nil {
		m.cond.Wait()
	}

	if m.pending != nil {
		ev := *m.pending
		m.pending = nil
		return ev, nil
	}
	if m.closed {
		return FrameEvent{}, ErrMailboxClosed
	}
	return FrameEvent{}, ctx.Err()
}

// WaitDone blocks until at least n completion notices have been received.
func (m *Mailbox) WaitDone(ctx context.Context, n int) error {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for m.dones < n && !m.closed && ctx.Err() == nil {
		m.cond.Wait()
	}
	if m.dones >= n {
		return nil
	}
	if m.closed {
		return ErrMailboxClosed
	}
	return ctx.Err()
}

// Latest takes the pending frame without blocking.
func (m *Mailbox) Latest() (FrameEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return FrameEvent{}, false
	}
	ev := *m.pending
	m.pending = nil
	return ev, true
}

func (m *Mailbox) Drops() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}

// Finished reports whether the last completion notice was a natural end of
// playback and no frame has arrived since.
func (m *Mailbox) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.pending != nil {
		m.pending.Frame.Close()
		m.pending = nil
	}
	m.cond.Broadcast()
}
