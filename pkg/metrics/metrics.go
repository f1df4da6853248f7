package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the playback engine's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	FramesPublished *prometheus.CounterVec
	FramesDropped   prometheus.Counter
	ReadFailures    *prometheus.CounterVec
	PlaybacksRun    prometheus.Counter
	PlaybacksDone   prometheus.Counter
	Seeks           prometheus.Counter
	FramesExported  prometheus.Counter
}

// New creates the collectors and registers them against reg, use
// prometheus.NewRegistry() in tests to avoid clashing on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FramesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dragonplayer_frames_published_total",
				Help: "Total number of frames published to listeners",
			},
			[]string{"kind"},
		),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "dragonplayer_frames_dropped_total",
			Help: "Total number of frames overwritten before a consumer took them",
		}),
		ReadFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dragonplayer_read_failures_total",
				Help: "Total number of frame reads that failed",
			},
			[]string{"kind"},
		),
		PlaybacksRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "dragonplayer_playbacks_started_total",
			Help: "Total number of playback workers started",
		}),
		PlaybacksDone: factory.NewCounter(prometheus.CounterOpts{
			Name: "dragonplayer_playbacks_finished_total",
			Help: "Total number of playbacks which ran off the end of their source",
		}),
		Seeks: factory.NewCounter(prometheus.CounterOpts{
			Name: "dragonplayer_seeks_total",
			Help: "Total number of accepted relative seeks",
		}),
		FramesExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "dragonplayer_frames_exported_total",
			Help: "Total number of video frames written out as images",
		}),
	}
}

func (m *Metrics) FramePublished(kind string) {
	if m == nil {
		return
	}
	m.FramesPublished.WithLabelValues(kind).Inc()
}

func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.FramesDropped.Inc()
}

func (m *Metrics) ReadFailed(kind string) {
	if m == nil {
		return
	}
	m.ReadFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) PlaybackStarted() {
	if m == nil {
		return
	}
	m.PlaybacksRun.Inc()
}

func (m *Metrics) PlaybackFinished() {
	if m == nil {
		return
	}
	m.PlaybacksDone.Inc()
}

func (m *Metrics) Seeked() {
	if m == nil {
		return
	}
	m.Seeks.Inc()
}

func (m *Metrics) FrameExported() {
	if m == nil {
		return
	}
	m.FramesExported.Inc()
}
