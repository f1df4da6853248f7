package main

import (
	"errors"
	"fmt"

	"github.com/tauraamui/dragonplayer/pkg/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/urfave/cli/v2"
)

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "write a default config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "replace an existing config file"},
		},
		Action: setup,
	}
}

func setup(c *cli.Context) error {
	log.Info("Setting up dragonplayer...")

	if c.Bool("force") {
		if err := config.DefaultDestroyer().Destroy(); err != nil {
			return err
		}
	}

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return err
		}
		log.Error(err.Error())
	}

	fmt.Fprintln(c.App.Writer, "Setup successful...")
	return nil
}
