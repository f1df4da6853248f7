package main

import (
	"fmt"

	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/player"
	"github.com/urfave/cli/v2"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "describe a video or image sequence",
		ArgsUsage: "PATH",
		Action:    info,
	}
}

func info(c *cli.Context) error {
	if err := requireArgs(c, 1, "PATH"); err != nil {
		return err
	}

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}
	opts, err := env.playerOptions(nil)
	if err != nil {
		return err
	}

	path := c.Args().First()
	p, err := player.Open(path, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	w := c.App.Writer
	fmt.Fprintf(w, "name:   %s\n", p.Name())
	fmt.Fprintf(w, "kind:   %s\n", p.Kind())
	fmt.Fprintf(w, "frames: %d\n", p.NumberOfFrames())
	fmt.Fprintf(w, "fps:    %d\n", p.FrameRate())
	fmt.Fprintf(w, "start:  %d\n", p.CurrentFrame())

	if frame := p.LastFrame(); frame != nil {
		dims := frame.Dimensions()
		fmt.Fprintf(w, "size:   %dx%d\n", dims.W, dims.H)
		frame.Close()
	}

	source, err := framesource.Open(c.Context, path, framesource.Options{Backend: env.backend, Table: opts.Table})
	if err != nil {
		return err
	}
	defer source.Close()
	if video, ok := source.(*framesource.VideoSource); ok {
		fmt.Fprintf(w, "codec:  %s\n", video.CodecName())
	}
	return nil
}
