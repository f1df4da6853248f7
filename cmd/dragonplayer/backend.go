package main

import (
	"strings"

	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend/opencvbackend"
)

func resolveBackend(name string) videobackend.Backend {
	if strings.EqualFold(name, "mock") {
		return videobackend.Mock(videobackend.MockSettings{})
	}
	return opencvbackend.New()
}
