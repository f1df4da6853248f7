package configdef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tauraamui/dragonplayer/pkg/playback"
	"gopkg.in/dealancer/validate.v2"
)

type ImageSequence struct {
	Digits    int    `json:"digits" validate:"gte=1 & lte=9"`
	FrameRate int    `json:"frame_rate" validate:"gte=1 & lte=240"`
	CountMode string `json:"count_mode" validate:"one_of=all,remaining"`
}

type Export struct {
	Digits    int    `json:"digits" validate:"gte=1 & lte=9"`
	Extension string `json:"extension" validate:"one_of=.jpg,.png,.bmp,.tiff"`
	MaxFrames int    `json:"max_frames" validate:"gte=1 & lte=10000"`
}

type Values struct {
	Debug           bool          `json:"debug"`
	VideoBackend    string        `json:"video_backend" validate:"one_of=opencv,mock"`
	DefaultSpeed    string        `json:"default_speed" validate:"empty=false"`
	ImageSequence   ImageSequence `json:"image_sequence"`
	Export          Export        `json:"export"`
	VideoExtensions []string      `json:"video_extensions"`
	ImageExtensions []string      `json:"image_extensions"`
}

func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if _, err := playback.ParseSpeed(v.DefaultSpeed); err != nil {
		return fmt.Errorf(validationErrorHeader, err)
	}
	if ext, ok := sharedExtension(v.VideoExtensions, v.ImageExtensions); ok {
		return fmt.Errorf(validationErrorHeader, fmt.Errorf("extension %s cannot be both video and image", ext))
	}
	if hasBlank(v.VideoExtensions) || hasBlank(v.ImageExtensions) {
		return fmt.Errorf(validationErrorHeader, errors.New("media extensions must not be blank"))
	}
	return nil
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func sharedExtension(video, image []string) (string, bool) {
	seen := map[string]struct{}{}
	for _, ext := range video {
		seen[normaliseExt(ext)] = struct{}{}
	}
	for _, ext := range image {
		if _, ok := seen[normaliseExt(ext)]; ok {
			return normaliseExt(ext), true
		}
	}
	return "", false
}

func hasBlank(exts []string) bool {
	for _, ext := range exts {
		if len(normaliseExt(ext)) == 0 {
			return true
		}
	}
	return false
}
