package framesource

import (
	"sync"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/imageseq"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

type ImageSequenceOptions struct {
	Digits    int
	FrameRate int
	CountMode imageseq.CountMode
}

// ImageSequenceSource reads numbered still images as frames. Name tracks the
// file most recently decoded.
type ImageSequenceSource struct {
	mu        sync.Mutex
	backend   videobackend.Backend
	fs        afero.Fs
	seq       imageseq.Sequence
	name      string
	dirTotal  int
	count     int
	frameRate int
	closed    bool
}

func OpenImageSequence(backend videobackend.Backend, fs afero.Fs, path string, opts ImageSequenceOptions) (*ImageSequenceSource, error) {
	if _, err := fs.Stat(path); err != nil {
		return nil, openFailed("unable to open image sequence [%s]: %v", path, err)
	}

	seq, err := imageseq.Parse(path, opts.Digits)
	if err != nil {
		return nil, openFailed("%v", err)
	}

	dirTotal, err := imageseq.Count(fs, seq, imageseq.CountAll)
	if err != nil {
		return nil, openFailed("%v", err)
	}
	count := dirTotal
	if opts.CountMode == imageseq.CountRemaining {
		count -= seq.Number
	}

	frameRate := opts.FrameRate
	if frameRate <= 0 {
		frameRate = playback.DefaultFrameRate
	}

	return &ImageSequenceSource{
		backend:   backend,
		fs:        fs,
		seq:       seq,
		name:      path,
		dirTotal:  dirTotal,
		count:     count,
		frameRate: frameRate,
	}, nil
}

func (s *ImageSequenceSource) Kind() mediatype.Kind { return mediatype.ImageSequence }

func (s *ImageSequenceSource) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *ImageSequenceSource) StartIndex() int { return s.seq.Number }

func (s *ImageSequenceSource) Sequence() imageseq.Sequence { return s.seq }

func (s *ImageSequenceSource) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *ImageSequenceSource) FrameRate() int { return s.frameRate }

// Read decodes the image numbered index. The lock is only held to check
// bounds and to record the decoded name, never across the decode itself.
func (s *ImageSequenceSource) Read(index int) (videoframe.Frame, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil, exhausted("image sequence [%s] is closed", s.seq.FileName(s.seq.Number))
	}
	if index < 0 || index > s.dirTotal {
		return nil, exhausted("image sequence [%s] has no frame %d", s.seq.FileName(s.seq.Number), index)
	}

	file := s.seq.FileName(index)
	exists, err := afero.Exists(s.fs, file)
	if err != nil || !exists {
		return nil, exhausted("image [%s] does not exist", file)
	}

	frame, err := s.backend.DecodeImage(file)
	if err != nil {
		return nil, decodeFailed("unable to read image [%s]: %v", file, err)
	}

	s.mu.Lock()
	s.name = file
	s.mu.Unlock()
	return frame, nil
}

func (s *ImageSequenceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
