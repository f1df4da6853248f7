package main

import (
	"os"

	"github.com/tauraamui/dragonplayer/pkg/log"
)

func init() {
	log.SetLevel(os.Getenv("DRAGON_PLAYER_LOGGING_LEVEL"))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
