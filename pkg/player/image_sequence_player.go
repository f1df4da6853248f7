package player

import (
	"context"

	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
)

type imageSequencePolicy struct{}

// NewImageSequencePlayer returns a player for numbered still images, such as
// pic_0000.png through pic_0199.png. Opening any file in the sequence starts
// playback from that file's number.
func NewImageSequencePlayer(opts Options) Player {
	return newPlayer(imageSequencePolicy{}, opts)
}

func (imageSequencePolicy) kind() mediatype.Kind { return mediatype.ImageSequence }

func (imageSequencePolicy) open(ctx context.Context, path string, opts Options) (playback.Source, error) {
	return framesource.OpenAs(ctx, mediatype.ImageSequence, path, opts.sourceOptions())
}

func (imageSequencePolicy) numberOfFrames(source playback.Source) int {
	return source.FrameCount()
}

func (imageSequencePolicy) validFrame(index, total int) bool {
	return index > playback.InvalidFrameNumber && index <= total
}

func (imageSequencePolicy) closedFrameRate() int { return playback.DefaultFrameRate }

func (imageSequencePolicy) keepNameOnClose() bool { return false }
