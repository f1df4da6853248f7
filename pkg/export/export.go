package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/metrics"
	"github.com/tauraamui/dragonplayer/pkg/video/imageseq"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
)

const (
	DefaultExtension = ".jpg"
	DefaultMaxFrames = 10000
)

var ErrExportCanceled = errors.New("export canceled")

// Progress is informed of the export's extent and asked after every frame
// whether to carry on.
type Progress interface {
	SetMaximum(int)
	SetValue(int)
	WasCanceled() bool
}

type Settings struct {
	Prefix    string
	Digits    int
	Extension string
	MaxFrames int
	Metrics   *metrics.Metrics
}

func (s Settings) withDefaults() Settings {
	if s.Digits <= 0 {
		s.Digits = imageseq.DefaultDigits
	}
	if len(s.Extension) == 0 {
		s.Extension = DefaultExtension
	}
	if !strings.HasPrefix(s.Extension, ".") {
		s.Extension = "." + s.Extension
	}
	if s.MaxFrames <= 0 {
		s.MaxFrames = DefaultMaxFrames
	}
	return s
}

// FileName is the path frame index of an export into dir is written to.
func (s Settings) FileName(dir string, index int) string {
	s = s.withDefaults()
	return filepath.Join(dir, fmt.Sprintf("%s%0*d%s", s.Prefix, s.Digits, index, s.Extension))
}

type Result struct {
	Frames  int
	Written int
	Skipped int
}

// VideoToImages writes every frame of the video at videoPath into dir as
// numbered stills. Frames which fail to decode are skipped.
func VideoToImages(
	ctx context.Context, backend videobackend.Backend, fs afero.Fs,
	videoPath, dir string, settings Settings, progress Progress,
) (Result, error) {
	settings = settings.withDefaults()

	source, err := framesource.OpenVideo(ctx, backend, fs, videoPath)
	if err != nil {
		return Result{}, err
	}
	defer source.Close()

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return Result{}, xerror.Errorf("unable to create export directory [%s]: %w", dir, err)
	}

	result := Result{Frames: source.FrameCount()}
	if result.Frames > settings.MaxFrames {
		result.Frames = settings.MaxFrames
	}
	if progress != nil {
		progress.SetMaximum(result.Frames)
	}

	log.Info("Exporting %d frames of [%s] to [%s]", result.Frames, videoPath, dir)
	for i := 0; i < result.Frames; i++ {
		if progress != nil {
			progress.SetValue(i)
		}

		if err := ctx.Err(); err != nil {
			return result, xerror.Errorf("export of [%s] stopped at frame %d: %w", videoPath, i, ErrExportCanceled)
		}

		if frame, err := source.Read(i); err != nil {
			log.Debug("Skipping unreadable frame %d of [%s]: %v", i, videoPath, err)
			result.Skipped++
		} else {
			err = backend.EncodeImage(settings.FileName(dir, i), frame)
			frame.Close()
			if err != nil {
				return result, xerror.Errorf("unable to export frame %d of [%s]: %w", i, videoPath, err)
			}
			settings.Metrics.FrameExported()
			result.Written++
		}

		if progress != nil && progress.WasCanceled() {
			return result, xerror.Errorf("export of [%s] canceled at frame %d: %w", videoPath, i, ErrExportCanceled)
		}
	}
	return result, nil
}
