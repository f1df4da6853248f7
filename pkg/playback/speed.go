package playback

import (
	"strings"
	"time"

	"github.com/tauraamui/xerror"
)

// Speed is a playback rate level. Its value is the base interval in
// milliseconds which, divided by the source frame rate, gives the pause
// between published frames.
type Speed int

const (
	SpeedDown2x Speed = 4000
	SpeedDown1x Speed = 2000
	Normal      Speed = 1000
	SpeedUp1x   Speed = 500
	SpeedUp2x   Speed = 250
	SpeedUp3x   Speed = 125
	SpeedUp4x   Speed = 75
	SpeedUp5x   Speed = 50
	SpeedUp6x   Speed = 25
	Fast        Speed = 0
)

const DefaultFrameRate = 25

var speedNames = []struct {
	speed Speed
	name  string
}{
	{SpeedDown2x, "down2x"},
	{SpeedDown1x, "down1x"},
	{Normal, "normal"},
	{SpeedUp1x, "up1x"},
	{SpeedUp2x, "up2x"},
	{SpeedUp3x, "up3x"},
	{SpeedUp4x, "up4x"},
	{SpeedUp5x, "up5x"},
	{SpeedUp6x, "up6x"},
	{Fast, "fast"},
}

func ParseSpeed(name string) (Speed, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, sn := range speedNames {
		if sn.name == name {
			return sn.speed, nil
		}
	}
	return Fast, xerror.Errorf("unknown playback speed [%s]", name)
}

func (s Speed) String() string {
	for _, sn := range speedNames {
		if sn.speed == s {
			return sn.name
		}
	}
	return "unknown"
}

func (s Speed) Valid() bool {
	return s.String() != "unknown"
}

// BaseMillis is the un-scaled interval for this level.
func (s Speed) BaseMillis() int {
	return int(s)
}

// Delay is the pause between frames at this level for a source running at
// frameRate frames per second, truncated to whole milliseconds. Non positive
// rates are treated as the default rate.
func (s Speed) Delay(frameRate int) time.Duration {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return time.Duration(s.BaseMillis()/frameRate) * time.Millisecond
}
