package config

import (
	"github.com/tauraamui/dragonplayer/internal/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
)

type Resolver interface {
	Load() (configdef.Values, error)
}

func DefaultResolver() Resolver {
	return defaultResolver{}
}

type defaultResolver struct{}

func (d defaultResolver) Load() (configdef.Values, error) {
	return config.DefaultResolver().Resolve()
}
