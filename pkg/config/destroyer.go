package config

import (
	"github.com/tauraamui/dragonplayer/internal/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}
