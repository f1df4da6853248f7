package framesource

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/codecprobe"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

// VideoSource reads frames out of a single video file. Seeking only happens
// when the requested index is not the next one the capture would decode.
// mu guards the capture; FrameCount and FrameRate never wait on a decode.
type VideoSource struct {
	mu         sync.Mutex
	backend    videobackend.Backend
	fs         afero.Fs
	name       string
	capture    videobackend.Capture
	frameCount int
	frameRate  int
	closed     atomic.Bool
}

func OpenVideo(ctx context.Context, backend videobackend.Backend, fs afero.Fs, path string) (*VideoSource, error) {
	capture, err := backend.Open(ctx, path)
	if err != nil {
		return nil, openFailed("unable to open video [%s]: %v", path, err)
	}
	if !capture.IsOpen() {
		capture.Close()
		return nil, openFailed("video capture for [%s] did not open", path)
	}

	return &VideoSource{
		backend:    backend,
		fs:         fs,
		name:       path,
		capture:    capture,
		frameCount: capture.FrameCount(),
		frameRate:  capture.FrameRate(),
	}, nil
}

func (s *VideoSource) Kind() mediatype.Kind { return mediatype.Video }

func (s *VideoSource) Name() string { return s.name }

func (s *VideoSource) StartIndex() int { return 0 }

// FrameCount is the count as reported by the backend, which may include one
// frame that never decodes.
func (s *VideoSource) FrameCount() int {
	if s.closed.Load() {
		return 0
	}
	return s.frameCount
}

func (s *VideoSource) FrameRate() int {
	if s.closed.Load() {
		return playback.InvalidFrameRate
	}
	return s.frameRate
}

func (s *VideoSource) Read(index int) (videoframe.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, exhausted("video [%s] is closed", s.name)
	}
	if index < 0 || index >= s.frameCount {
		return nil, exhausted("video [%s] has no frame %d", s.name, index)
	}

	if index != s.capture.Position() {
		if err := s.capture.Seek(index); err != nil {
			return nil, exhausted("unable to seek video [%s] to frame %d: %v", s.name, index, err)
		}
	}

	frame := s.backend.NewFrame()
	if err := s.capture.Read(frame); err != nil {
		frame.Close()
		if index >= s.frameCount-1 {
			return nil, exhausted("unable to read final frame %d of video [%s]: %v", index, s.name, err)
		}
		return nil, decodeFailed("unable to read frame %d of video [%s]: %v", index, s.name, err)
	}
	return frame, nil
}

// CodecName returns the capture's four character code, falling back to the
// mp4 sample entry for containers the backend cannot describe.
func (s *VideoSource) CodecName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ""
	}

	if code := s.capture.FourCC(); len(code) > 0 {
		return code
	}

	switch strings.ToLower(filepath.Ext(s.name)) {
	case ".mp4", ".m4v", ".mov":
		if code, err := codecprobe.ProbeFile(s.fs, s.name); err == nil {
			return code
		}
	}
	return ""
}

func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	return s.capture.Close()
}
