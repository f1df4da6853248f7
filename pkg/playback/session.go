package playback

import (
	"sync"
	"time"

	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

// Session is the state shared between a player and its playback worker.
// Every field sits behind one mutex which is never held across a decode or
// a listener callback.
type Session struct {
	mu        sync.Mutex
	current   int
	total     int
	frameRate int
	stopped   bool
	speed     Speed
	last      videoframe.Frame
	wake      chan struct{}
}

func NewSession(current, total, frameRate int, speed Speed) *Session {
	if current < InvalidFrameNumber {
		current = InvalidFrameNumber
	}
	if total < 0 {
		total = 0
	}
	return &Session{
		current:   current,
		total:     total,
		frameRate: frameRate,
		stopped:   true,
		speed:     speed,
		wake:      make(chan struct{}, 1),
	}
}

func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) SetCurrent(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = index
}

// Move shifts current by rel in one step, provided the result lies within
// [0, total). It returns the target either way.
func (s *Session) Move(rel int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.current + rel
	if target < 0 || target >= s.total {
		return target, false
	}
	s.current = target
	return target, true
}

func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Session) FrameRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameRate
}

func (s *Session) Speed() Speed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func (s *Session) SetSpeed(speed Speed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
}

func (s *Session) IsStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Stop sets the stopped flag. Setting it wakes a sleeping worker so that it
// observes the flag without waiting out its frame delay.
func (s *Session) Stop(stopped bool) {
	s.mu.Lock()
	s.stopped = stopped
	s.mu.Unlock()
	if stopped {
		s.Wake()
	}
}

// Resume clears the stopped flag and discards any stale wake signal.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	select {
	case <-s.wake:
	default:
	}
}

func (s *Session) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// LastFrame returns a copy of the most recently published frame, or nil.
func (s *Session) LastFrame() videoframe.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	return s.last.Clone()
}

// Seek makes frame, already decoded at index, the current frame and returns
// the event to publish. Used outside of the worker, it is never discarded.
func (s *Session) Seek(index int, frame videoframe.Frame) FrameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = index
	return s.store(index, frame)
}

// Release drops the retained last frame.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil {
		s.last.Close()
		s.last = nil
	}
}

func (s *Session) store(index int, frame videoframe.Frame) FrameEvent {
	if s.last != nil {
		s.last.Close()
	}
	s.last = frame
	return FrameEvent{Frame: frame.Clone(), Index: index}
}

func (s *Session) wakeup() <-chan struct{} {
	return s.wake
}

// advance moves current on by one and returns the index to decode, or false
// if the session has been stopped.
func (s *Session) advance() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, false
	}
	s.current++
	return s.current, true
}

// halt marks the session stopped after a failed read and reports whether it
// was still running, false means a stop request beat the failure.
func (s *Session) halt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	running := !s.stopped
	s.stopped = true
	return running
}

// commit accepts a frame decoded by the worker only if the session is still
// running and current still points at index. Rejected frames are closed.
func (s *Session) commit(index int, frame videoframe.Frame) (FrameEvent, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.current != index {
		frame.Close()
		return FrameEvent{}, 0, false
	}
	return s.store(index, frame), s.speed.Delay(s.frameRate), true
}
