package videobackend

import (
	"context"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

var fs = afero.NewOsFs()

// Capture is an opened video stream which decodes frames sequentially
// and can be repositioned by frame index.
type Capture interface {
	Read(videoframe.Frame) error
	Seek(int) error
	// Position is the index of the frame the next Read will decode.
	Position() int
	FrameCount() int
	FrameRate() int
	FourCC() string
	IsOpen() bool
	Close() error
}

type Backend interface {
	Open(context.Context, string) (Capture, error)
	NewFrame() videoframe.Frame
	DecodeImage(string) (videoframe.Frame, error)
	EncodeImage(string, videoframe.Frame) error
}

// FourCCToString unpacks a little endian packed codec code, eg. 0x34363258 -> "X264".
func FourCCToString(code int) string {
	if code <= 0 {
		return ""
	}
	b := []byte{
		byte(code & 0xFF),
		byte((code & 0xFF00) >> 8),
		byte((code & 0xFF0000) >> 16),
		byte((code & 0xFF000000) >> 24),
	}
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
