package player

import (
	"context"

	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
)

type videoPolicy struct{}

// NewVideoPlayer returns a player for video files. Backends commonly count
// one frame more than they can decode so the reported total is one less than
// the container's.
func NewVideoPlayer(opts Options) Player {
	return newPlayer(videoPolicy{}, opts)
}

func (videoPolicy) kind() mediatype.Kind { return mediatype.Video }

func (videoPolicy) open(ctx context.Context, path string, opts Options) (playback.Source, error) {
	return framesource.OpenAs(ctx, mediatype.Video, path, opts.sourceOptions())
}

func (videoPolicy) numberOfFrames(source playback.Source) int {
	if n := source.FrameCount() - 1; n > 0 {
		return n
	}
	return 0
}

func (videoPolicy) validFrame(index, total int) bool {
	return index > playback.InvalidFrameNumber && index < total
}

func (videoPolicy) closedFrameRate() int { return playback.InvalidFrameRate }

func (videoPolicy) keepNameOnClose() bool { return true }
