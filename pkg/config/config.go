package config

import (
	"github.com/tauraamui/dragonplayer/internal/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}
