package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/player"
	"github.com/urfave/cli/v2"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a video or image sequence until it ends or is interrupted",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "speed", Usage: "down2x, down1x, normal, up1x..up6x or fast"},
			&cli.IntFlag{Name: "from", Usage: "frames to skip forward before playing"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address, eg. :9090"},
		},
		Action: play,
	}
}

func play(c *cli.Context) error {
	if err := requireArgs(c, 1, "PATH"); err != nil {
		return err
	}

	env, err := resolveEnvironment()
	if err != nil {
		return err
	}

	if addr := c.String("metrics-addr"); len(addr) > 0 {
		srv := serveMetrics(addr, env.reg)
		defer srv.Close()
	}

	mailbox := playback.NewMailbox()
	mailbox.OnDrop(env.metrics.FrameDropped)
	finished := make(chan struct{}, 1)
	listener := playback.ListenerFuncs{
		Frame: mailbox.OnFrame,
		Done: func(stopped bool) {
			mailbox.OnDone(stopped)
			select {
			case finished <- struct{}{}:
			default:
			}
		},
	}

	opts, err := env.playerOptions(listener)
	if err != nil {
		return err
	}
	if speed := c.String("speed"); len(speed) > 0 {
		if opts.Speed, err = playback.ParseSpeed(speed); err != nil {
			return err
		}
	}

	ctx, stop := interruptContext(c.Context)
	defer stop()

	path := c.Args().First()
	p, err := player.New(path, opts)
	if err != nil {
		return err
	}
	if err := p.OpenWithCancel(ctx, path); err != nil {
		return err
	}
	defer p.Close()

	if from := c.Int("from"); from != 0 {
		if err := p.Go(from); err != nil {
			return err
		}
	}

	bar := newConsoleProgress(c.App.Writer, ctx.Done())
	bar.SetMaximum(p.NumberOfFrames())
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		consumeFrames(ctx, mailbox, bar)
	}()

	start := time.Now()
	if err := p.Play(); err != nil {
		return err
	}

	select {
	case <-finished:
	case <-ctx.Done():
		log.Warn("Interrupted, stopping playback...")
	}

	p.Stop(true)
	reached := p.CurrentFrame()
	if err := p.Close(); err != nil {
		return err
	}
	mailbox.Close()
	<-consumed
	bar.Finish()

	fmt.Fprintf(c.App.Writer, "played [%s] to frame %d in %s, %d frames dropped by display\n",
		path, reached, time.Since(start).Round(time.Millisecond), mailbox.Drops())
	return nil
}

func consumeFrames(ctx context.Context, mailbox *playback.Mailbox, bar *consoleProgress) {
	for {
		ev, err := mailbox.Next(ctx)
		if err != nil {
			return
		}
		bar.SetValue(ev.Index)
		ev.Frame.Close()
	}
}
