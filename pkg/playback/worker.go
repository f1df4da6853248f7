package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/metrics"
	"github.com/tauraamui/dragonplayer/pkg/process"
)

type worker struct {
	session  *Session
	source   Source
	listener Listener
	metrics  *metrics.Metrics
}

// NewWorker returns a process which, once started, advances session through
// source publishing each decoded frame to listener until the session is
// stopped, the process is stopped or the source fails to produce a frame.
func NewWorker(session *Session, source Source, listener Listener, m *metrics.Metrics) process.Process {
	if listener == nil {
		listener = noopListener{}
	}
	w := worker{
		session:  session,
		source:   source,
		listener: listener,
		metrics:  m,
	}
	return process.New(process.Settings{
		WaitForShutdownMsg: fmt.Sprintf("Stopping playback of [%s]...", source.Name()),
		Process:            w.run,
	})
}

func (w worker) run(ctx context.Context) []chan interface{} {
	stopping := make(chan interface{})
	go w.loop(ctx, stopping)
	return []chan interface{}{stopping}
}

func (w worker) loop(ctx context.Context, stopping chan interface{}) {
	defer close(stopping)

	kind := w.source.Kind().String()
	log.Debug("Playing [%s] from frame %d", w.source.Name(), w.session.Current()+1)
	for {
		index, ok := w.session.advance()
		if !ok {
			log.Debug("Playback of [%s] stopped at frame %d", w.source.Name(), w.session.Current())
			return
		}

		frame, err := w.source.Read(index)
		if err != nil {
			w.metrics.ReadFailed(kind)
			if w.session.halt() {
				if errors.Is(err, ErrSourceExhausted) {
					log.Info("Playback of [%s] reached end at frame %d", w.source.Name(), index)
				} else {
					log.Warn("Playback of [%s] failed at frame %d: %v", w.source.Name(), index, err)
				}
				w.metrics.PlaybackFinished()
				w.listener.OnDone(true)
			}
			return
		}

		ev, delay, ok := w.session.commit(index, frame)
		if ok {
			log.Debug("Publishing frame %d of [%s]", index, w.source.Name())
			w.metrics.FramePublished(kind)
			w.listener.OnFrame(ev)
		}

		if !w.pause(ctx, delay) {
			return
		}
	}
}

// pause waits out delay, returning early on a wake signal. It returns false
// once ctx is done.
func (w worker) pause(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-w.session.wakeup():
		return true
	case <-timer.C:
		return true
	}
}
