package playback_test

import (
	"image"
	"image/color"
	"sync"

	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type fakeSource struct {
	mu        sync.Mutex
	frames    int
	frameRate int
	reads     []int
	// gate, when set, is received from before every read completes.
	gate    chan struct{}
	reading chan int
	closed  bool
}

func newFakeSource(frames int) *fakeSource {
	return &fakeSource{frames: frames, frameRate: 25}
}

func (s *fakeSource) Kind() mediatype.Kind { return mediatype.Video }
func (s *fakeSource) Name() string         { return "fake.avi" }
func (s *fakeSource) StartIndex() int      { return 0 }
func (s *fakeSource) FrameCount() int      { return s.frames }
func (s *fakeSource) FrameRate() int       { return s.frameRate }

func (s *fakeSource) Read(index int) (videoframe.Frame, error) {
	if s.reading != nil {
		s.reading <- index
	}
	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, index)
	if s.closed || index < 0 || index >= s.frames {
		return nil, xerror.Errorf("no frame %d: %w", index, playback.ErrSourceExhausted)
	}
	return frameOf(index), nil
}

func (s *fakeSource) Reads() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.reads...)
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// frameOf encodes index into the red channel of a single pixel.
func frameOf(index int) videoframe.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: uint8(index), A: 255})
	return videoframe.FromImage(img)
}

func indexOf(frame videoframe.Frame) int {
	img := frame.DataRef().(image.Image)
	r, _, _, _ := img.At(0, 0).RGBA()
	return int(r >> 8)
}

type recordingListener struct {
	frames chan playback.FrameEvent
	done   chan bool
}

func newRecordingListener() *recordingListener {
	return &recordingListener{
		frames: make(chan playback.FrameEvent, 256),
		done:   make(chan bool, 16),
	}
}

func (l *recordingListener) OnFrame(ev playback.FrameEvent) { l.frames <- ev }
func (l *recordingListener) OnDone(stopped bool)            { l.done <- stopped }
