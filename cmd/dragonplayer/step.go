package main

import (
	"fmt"
	"strconv"

	"github.com/tauraamui/dragonplayer/pkg/player"
	"github.com/tauraamui/xerror"
	"github.com/urfave/cli/v2"
)

func stepCommand() *cli.Command {
	return &cli.Command{
		Name:      "step",
		Usage:     "seek relative to the first frame and optionally save the frame landed on",
		ArgsUsage: "PATH REL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "write the frame to this image file"},
		},
		Action: step,
	}
}

func step(c *cli.Context) error {
	if err := requireArgs(c, 2, "PATH REL"); err != nil {
		return err
	}

	rel, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return xerror.Errorf("relative frame offset must be a whole number: %w", err)
	}

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}
	opts, err := env.playerOptions(nil)
	if err != nil {
		return err
	}

	p, err := player.Open(c.Args().First(), opts)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Go(rel); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: frame %d of %d\n", p.Name(), p.CurrentFrame(), p.NumberOfFrames())

	out := c.String("out")
	if len(out) == 0 {
		return nil
	}
	frame := p.LastFrame()
	if frame == nil {
		return xerror.New("no frame to write")
	}
	defer frame.Close()
	if err := env.backend.EncodeImage(out, frame); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
	return nil
}
