package config

import (
	"github.com/tauraamui/dragonplayer/pkg/configdef"
	"github.com/tauraamui/dragonplayer/pkg/export"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/video/imageseq"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
)

type defaultSettingKey uint

const (
	VIDEOBACKEND    defaultSettingKey = 0x0
	DEFAULTSPEED    defaultSettingKey = 0x1
	SEQUENCEDIGITS  defaultSettingKey = 0x2
	SEQUENCEFPS     defaultSettingKey = 0x3
	SEQUENCECOUNT   defaultSettingKey = 0x4
	EXPORTDIGITS    defaultSettingKey = 0x5
	EXPORTEXTENSION defaultSettingKey = 0x6
	EXPORTMAXFRAMES defaultSettingKey = 0x7
	VIDEOEXTENSIONS defaultSettingKey = 0x8
	IMAGEEXTENSIONS defaultSettingKey = 0x9
)

var defaultSettings = map[defaultSettingKey]interface{}{
	VIDEOBACKEND:    "opencv",
	DEFAULTSPEED:    playback.Normal.String(),
	SEQUENCEDIGITS:  imageseq.DefaultDigits,
	SEQUENCEFPS:     playback.DefaultFrameRate,
	SEQUENCECOUNT:   "all",
	EXPORTDIGITS:    imageseq.DefaultDigits,
	EXPORTEXTENSION: export.DefaultExtension,
	EXPORTMAXFRAMES: export.DefaultMaxFrames,
	VIDEOEXTENSIONS: mediatype.DefaultVideoExtensions,
	IMAGEEXTENSIONS: mediatype.DefaultImageExtensions,
}

// defaultValues is the configuration used when no file exists, and the
// content written out by create.
func defaultValues() configdef.Values {
	values := configdef.Values{}
	loadDefaults(&values)
	return values
}

// loadDefaults back-fills every zero valued field.
func loadDefaults(values *configdef.Values) {
	if len(values.VideoBackend) == 0 {
		values.VideoBackend = defaultSettings[VIDEOBACKEND].(string)
	}
	if len(values.DefaultSpeed) == 0 {
		values.DefaultSpeed = defaultSettings[DEFAULTSPEED].(string)
	}
	if values.ImageSequence.Digits == 0 {
		values.ImageSequence.Digits = defaultSettings[SEQUENCEDIGITS].(int)
	}
	if values.ImageSequence.FrameRate == 0 {
		values.ImageSequence.FrameRate = defaultSettings[SEQUENCEFPS].(int)
	}
	if len(values.ImageSequence.CountMode) == 0 {
		values.ImageSequence.CountMode = defaultSettings[SEQUENCECOUNT].(string)
	}
	if values.Export.Digits == 0 {
		values.Export.Digits = defaultSettings[EXPORTDIGITS].(int)
	}
	if len(values.Export.Extension) == 0 {
		values.Export.Extension = defaultSettings[EXPORTEXTENSION].(string)
	}
	if values.Export.MaxFrames == 0 {
		values.Export.MaxFrames = defaultSettings[EXPORTMAXFRAMES].(int)
	}
	if values.VideoExtensions == nil {
		values.VideoExtensions = append([]string{}, defaultSettings[VIDEOEXTENSIONS].([]string)...)
	}
	if values.ImageExtensions == nil {
		values.ImageExtensions = append([]string{}, defaultSettings[IMAGEEXTENSIONS].([]string)...)
	}
}
