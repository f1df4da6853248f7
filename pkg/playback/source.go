package playback

import (
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

const (
	InvalidFrameNumber = -1
	InvalidFrameRate   = -1
)

// Source produces decoded frames by index. Read failures must wrap
// ErrSourceExhausted or ErrDecodeFailed. Implementations are driven by at
// most one goroutine at a time.
type Source interface {
	Kind() mediatype.Kind
	Name() string
	StartIndex() int
	Read(index int) (videoframe.Frame, error)
	FrameCount() int
	FrameRate() int
	Close() error
}
