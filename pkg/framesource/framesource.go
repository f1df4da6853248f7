package framesource

import (
	"context"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

type Options struct {
	Backend       videobackend.Backend
	Fs            afero.Fs
	Table         mediatype.Table
	ImageSequence ImageSequenceOptions
}

func (o Options) fs() afero.Fs {
	if o.Fs == nil {
		return fs
	}
	return o.Fs
}

func (o Options) table() mediatype.Table {
	if o.Table.Empty() {
		return mediatype.DefaultTable()
	}
	return o.Table
}

// Open resolves path's media kind and opens the matching source.
func Open(ctx context.Context, path string, opts Options) (playback.Source, error) {
	return OpenAs(ctx, opts.table().Detect(path), path, opts)
}

// OpenAs opens path as the given kind regardless of its extension.
func OpenAs(ctx context.Context, kind mediatype.Kind, path string, opts Options) (playback.Source, error) {
	if opts.Backend == nil {
		return nil, openFailed("no video backend to open [%s] with", path)
	}

	switch kind {
	case mediatype.Video:
		source, err := OpenVideo(ctx, opts.Backend, opts.fs(), path)
		if err != nil {
			return nil, err
		}
		return source, nil
	case mediatype.ImageSequence:
		source, err := OpenImageSequence(opts.Backend, opts.fs(), path, opts.ImageSequence)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, openFailed("unsupported media format [%s]", path)
	}
}

func exhausted(format string, a ...interface{}) error {
	return xerror.Errorf(format+": %w", append(a, playback.ErrSourceExhausted)...)
}

func decodeFailed(format string, a ...interface{}) error {
	return xerror.Errorf(format+": %w", append(a, playback.ErrDecodeFailed)...)
}

func openFailed(format string, a ...interface{}) error {
	return xerror.Errorf(format+": %w", append(a, playback.ErrOpenFailed)...)
}
