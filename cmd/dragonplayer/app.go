package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tauraamui/dragonplayer/pkg/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/metrics"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/player"
	"github.com/tauraamui/dragonplayer/pkg/video/imageseq"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/xerror"
	"github.com/urfave/cli/v2"
)

const (
	name        = "dragonplayer"
	description = "Plays back video files and numbered image sequences frame by frame"
)

// loadConfig is overridden in tests.
var loadConfig = func() (configdef.Values, error) {
	return config.DefaultResolver().Load()
}

func newApp() *cli.App {
	return &cli.App{
		Name:  name,
		Usage: description,
		Commands: []*cli.Command{
			playCommand(),
			stepCommand(),
			infoCommand(),
			exportCommand(),
			setupCommand(),
		},
	}
}

// environment is everything a command needs resolved from config.
type environment struct {
	values  configdef.Values
	backend videobackend.Backend
	metrics *metrics.Metrics
	reg     *prometheus.Registry
}

func resolveEnvironment() (environment, error) {
	values, err := loadConfig()
	if err != nil {
		return environment{}, err
	}
	if values.Debug {
		log.SetLevel("debug")
	}

	backendName := values.VideoBackend
	if env := os.Getenv("DRAGON_PLAYER_VIDEO_BACKEND"); len(env) > 0 {
		backendName = env
	}

	reg := prometheus.NewRegistry()
	return environment{
		values:  values,
		backend: resolveBackend(backendName),
		metrics: metrics.New(reg),
		reg:     reg,
	}, nil
}

func (e environment) playerOptions(listener playback.Listener) (player.Options, error) {
	countMode, err := imageseq.ParseCountMode(e.values.ImageSequence.CountMode)
	if err != nil {
		return player.Options{}, err
	}
	speed, err := playback.ParseSpeed(e.values.DefaultSpeed)
	if err != nil {
		return player.Options{}, err
	}

	return player.Options{
		Backend: e.backend,
		Table:   e.table(),
		ImageSequence: framesource.ImageSequenceOptions{
			Digits:    e.values.ImageSequence.Digits,
			FrameRate: e.values.ImageSequence.FrameRate,
			CountMode: countMode,
		},
		Speed:    speed,
		Listener: listener,
		Metrics:  e.metrics,
	}, nil
}

func (e environment) table() mediatype.Table {
	if len(e.values.VideoExtensions) == 0 && len(e.values.ImageExtensions) == 0 {
		return mediatype.DefaultTable()
	}
	return mediatype.NewTable(e.values.VideoExtensions, e.values.ImageExtensions)
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped: %v", err)
		}
	}()
	log.Info("Serving metrics on %s/metrics", addr)
	return srv
}

func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return xerror.Errorf("usage: %s %s %s", name, c.Command.Name, usage)
	}
	return nil
}
