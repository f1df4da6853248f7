package config

import (
	"github.com/tauraamui/dragonplayer/internal/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
