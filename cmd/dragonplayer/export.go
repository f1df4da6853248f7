package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/export"
	"github.com/urfave/cli/v2"
)

var exportFs = afero.NewOsFs()

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write every frame of a video out as numbered images",
		ArgsUsage: "VIDEO DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Usage: "file name prefix for each image"},
		},
		Action: exportVideo,
	}
}

func exportVideo(c *cli.Context) error {
	if err := requireArgs(c, 2, "VIDEO DIR"); err != nil {
		return err
	}

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(c.Context)
	defer stop()

	bar := newConsoleProgress(c.App.Writer, ctx.Done())
	result, err := export.VideoToImages(ctx, env.backend, exportFs, c.Args().Get(0), c.Args().Get(1), export.Settings{
		Prefix:    c.String("prefix"),
		Digits:    env.values.Export.Digits,
		Extension: env.values.Export.Extension,
		MaxFrames: env.values.Export.MaxFrames,
		Metrics:   env.metrics,
	}, bar)
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "exported %d of %d frames, %d skipped\n", result.Written, result.Frames, result.Skipped)
	return nil
}
