package player

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/metrics"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/process"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type Player interface {
	UUID() string
	Kind() mediatype.Kind

	Open(path string) error
	OpenWithCancel(ctx context.Context, path string) error
	Play() error
	Stop(stopped bool)
	Go(rel int) error
	SetCurrentFrame(index int) error
	SetSpeed(speed playback.Speed)
	Close() error

	CurrentFrame() int
	NumberOfFrames() int
	FrameRate() int
	Name() string
	IsStopped() bool
	Speed() playback.Speed
	// LastFrame returns a copy of the most recently published frame which
	// the caller must Close, or nil before anything has been published.
	LastFrame() videoframe.Frame
}

type Options struct {
	Backend       videobackend.Backend
	Fs            afero.Fs
	Table         mediatype.Table
	ImageSequence framesource.ImageSequenceOptions
	Speed         playback.Speed
	Listener      playback.Listener
	Metrics       *metrics.Metrics
}

func (o Options) sourceOptions() framesource.Options {
	return framesource.Options{
		Backend:       o.Backend,
		Fs:            o.Fs,
		Table:         o.Table,
		ImageSequence: o.ImageSequence,
	}
}

// policy captures where the video and image sequence players differ.
type policy interface {
	kind() mediatype.Kind
	open(ctx context.Context, path string, opts Options) (playback.Source, error)
	numberOfFrames(source playback.Source) int
	validFrame(index, total int) bool
	closedFrameRate() int
	keepNameOnClose() bool
}

type player struct {
	uuid   string
	policy policy
	opts   Options

	// ctrlMu serialises controller operations, Stop and the queries never take it.
	ctrlMu sync.Mutex
	worker process.Process

	stateMu sync.RWMutex
	name    string
	speed   playback.Speed
	source  playback.Source
	session *playback.Session
}

func newPlayer(p policy, opts Options) *player {
	if opts.Listener == nil {
		opts.Listener = playback.ListenerFuncs{}
	}
	if !opts.Speed.Valid() {
		opts.Speed = playback.Fast
	}
	return &player{
		uuid:   uuid.NewString(),
		policy: p,
		opts:   opts,
		speed:  opts.Speed,
	}
}

// New returns the player variant matching path's media kind. The player is
// not opened.
func New(path string, opts Options) (Player, error) {
	table := opts.Table
	if table.Empty() {
		table = mediatype.DefaultTable()
	}
	switch table.Detect(path) {
	case mediatype.Video:
		return NewVideoPlayer(opts), nil
	case mediatype.ImageSequence:
		return NewImageSequencePlayer(opts), nil
	}
	return nil, xerror.Errorf("unsupported media format [%s]: %w", path, playback.ErrOpenFailed)
}

// Open creates the player matching path and opens it.
func Open(path string, opts Options) (Player, error) {
	p, err := New(path, opts)
	if err != nil {
		return nil, err
	}
	if err := p.Open(path); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *player) UUID() string { return p.uuid }

func (p *player) Kind() mediatype.Kind { return p.policy.kind() }

func (p *player) state() (*playback.Session, playback.Source) {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.session, p.source
}

func (p *player) Open(path string) error {
	return p.OpenWithCancel(context.Background(), path)
}

func (p *player) OpenWithCancel(ctx context.Context, path string) error {
	p.ctrlMu.Lock()
	defer p.ctrlMu.Unlock()

	if session, source := p.state(); session != nil {
		return xerror.Errorf("player already has [%s] open: %w", source.Name(), playback.ErrConcurrentMisuse)
	}

	source, err := p.policy.open(ctx, path, p.opts)
	if err != nil {
		return err
	}

	start := source.StartIndex()
	frame, err := source.Read(start)
	if err != nil {
		source.Close()
		return xerror.Errorf("unable to read first frame of [%s]: %v: %w", path, err, playback.ErrOpenFailed)
	}

	p.stateMu.Lock()
	session := playback.NewSession(start, p.policy.numberOfFrames(source), source.FrameRate(), p.speed)
	p.session = session
	p.source = source
	p.name = path
	p.stateMu.Unlock()

	p.publish(session.Seek(start, frame), source)
	log.Info("Opened %s [%s] with %d frames at %dfps", p.policy.kind(), path, session.Total(), session.FrameRate())
	return nil
}

func (p *player) publish(ev playback.FrameEvent, source playback.Source) {
	p.opts.Metrics.FramePublished(source.Kind().String())
	p.opts.Listener.OnFrame(ev)
}

// joinStaleWorker waits for a worker which has been asked to stop, or has
// failed, but not yet exited. Callers hold ctrlMu.
func (p *player) joinStaleWorker(session *playback.Session) {
	if p.worker == nil {
		return
	}
	if p.worker.Running() {
		session.Wake()
		p.worker.Wait()
	}
	p.worker = nil
}

func (p *player) playing(session *playback.Session) bool {
	return p.worker != nil && p.worker.Running() && !session.IsStopped()
}

func (p *player) Play() error {
	p.ctrlMu.Lock()
	defer p.ctrlMu.Unlock()

	session, source := p.state()
	if session == nil {
		return xerror.Errorf("unable to play: %w", playback.ErrConcurrentMisuse).WithParam("uuid", p.uuid)
	}
	if p.playing(session) {
		return nil
	}
	p.joinStaleWorker(session)

	session.Resume()
	p.worker = playback.NewWorker(session, source, p.opts.Listener, p.opts.Metrics)
	p.worker.Setup().Start()
	p.opts.Metrics.PlaybackStarted()
	return nil
}

func (p *player) Stop(stopped bool) {
	session, _ := p.state()
	if session == nil {
		return
	}
	session.Stop(stopped)
}

func (p *player) Go(rel int) error {
	p.ctrlMu.Lock()
	defer p.ctrlMu.Unlock()

	session, source := p.state()
	if session == nil {
		return xerror.Errorf("unable to seek: %w", playback.ErrConcurrentMisuse).WithParam("uuid", p.uuid)
	}

	if p.playing(session) {
		target, ok := session.Move(rel)
		if !ok {
			return outOfRange(target, session.Total())
		}
		p.opts.Metrics.Seeked()
		if p.playing(session) {
			return nil
		}
		// the worker ran out before it could pick up the move
		p.joinStaleWorker(session)
		return p.seek(session, source, target)
	}
	p.joinStaleWorker(session)

	target := session.Current() + rel
	if total := session.Total(); target < 0 || target >= total {
		return outOfRange(target, total)
	}
	p.opts.Metrics.Seeked()
	return p.seek(session, source, target)
}

func (p *player) seek(session *playback.Session, source playback.Source, target int) error {
	frame, err := source.Read(target)
	if err != nil {
		return xerror.Errorf("unable to seek to frame %d: %w", target, err)
	}
	p.publish(session.Seek(target, frame), source)
	return nil
}

func outOfRange(target, total int) error {
	return xerror.Errorf("unable to seek to frame %d of %d: %w", target, total, playback.ErrSeekOutOfRange)
}

func (p *player) SetCurrentFrame(index int) error {
	session, _ := p.state()
	if session == nil {
		return xerror.Errorf("unable to set current frame: %w", playback.ErrConcurrentMisuse)
	}
	if total := session.Total(); !p.policy.validFrame(index, total) {
		return xerror.Errorf("unable to set current frame to %d of %d: %w", index, total, playback.ErrSeekOutOfRange)
	}
	session.SetCurrent(index)
	return nil
}

func (p *player) SetSpeed(speed playback.Speed) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.speed = speed
	if p.session != nil {
		p.session.SetSpeed(speed)
	}
}

func (p *player) Speed() playback.Speed {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.speed
}

func (p *player) Close() error {
	p.ctrlMu.Lock()
	defer p.ctrlMu.Unlock()

	session, source := p.state()
	if session == nil {
		return nil
	}

	session.Stop(true)
	if p.worker != nil {
		p.worker.Stop()
		p.worker.Wait()
		p.worker = nil
	}

	err := source.Close()
	session.Release()

	p.stateMu.Lock()
	p.session = nil
	p.source = nil
	if !p.policy.keepNameOnClose() {
		p.name = ""
	}
	p.stateMu.Unlock()

	log.Info("Closed %s [%s]", p.policy.kind(), source.Name())
	if err != nil {
		return xerror.Errorf("unable to close [%s]: %w", source.Name(), err)
	}
	return nil
}

func (p *player) CurrentFrame() int {
	session, _ := p.state()
	if session == nil {
		return 0
	}
	return session.Current()
}

func (p *player) NumberOfFrames() int {
	session, _ := p.state()
	if session == nil {
		return 0
	}
	return session.Total()
}

func (p *player) FrameRate() int {
	session, _ := p.state()
	if session == nil {
		return p.policy.closedFrameRate()
	}
	return session.FrameRate()
}

func (p *player) Name() string {
	p.stateMu.RLock()
	source, name := p.source, p.name
	p.stateMu.RUnlock()

	if source != nil {
		return source.Name()
	}
	return name
}

func (p *player) IsStopped() bool {
	session, _ := p.state()
	if session == nil {
		return true
	}
	return session.IsStopped()
}

func (p *player) LastFrame() videoframe.Frame {
	session, _ := p.state()
	if session == nil {
		return nil
	}
	return session.LastFrame()
}
