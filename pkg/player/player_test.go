package player_test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/dragonplayer/pkg/framesource"
	"github.com/tauraamui/dragonplayer/pkg/log"
	"github.com/tauraamui/dragonplayer/pkg/playback"
	"github.com/tauraamui/dragonplayer/pkg/player"
	"github.com/tauraamui/dragonplayer/pkg/video/imageseq"
	"github.com/tauraamui/dragonplayer/pkg/video/mediatype"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
)

const (
	videoPath   = "/videos/clip.avi"
	videoFrames = 10
)

type eventLog struct {
	mu      sync.Mutex
	indexes []int
	frames  chan int
	done    chan bool
}

func newEventLog() *eventLog {
	return &eventLog{frames: make(chan int, 256), done: make(chan bool, 16)}
}

func (l *eventLog) OnFrame(ev playback.FrameEvent) {
	l.mu.Lock()
	l.indexes = append(l.indexes, ev.Index)
	l.mu.Unlock()
	ev.Frame.Close()
	l.frames <- ev.Index
}

func (l *eventLog) OnDone(stopped bool) { l.done <- stopped }

func (l *eventLog) Indexes() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int{}, l.indexes...)
}

func (l *eventLog) waitDone(t *testing.T) bool {
	t.Helper()
	select {
	case stopped := <-l.done:
		return stopped
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for playback to finish")
	}
	return false
}

func (l *eventLog) waitFrame(t *testing.T) int {
	t.Helper()
	select {
	case index := <-l.frames:
		return index
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return -1
}

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, videoPath, []byte{}, 0644))
	writeSequence(t, fs, 20)
	return fs
}

// writeSequence writes /images/pic_0000.png onwards, each image carrying its
// own number in the red channel of its first pixel.
func writeSequence(t *testing.T, fs afero.Fs, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.Set(0, 0, color.RGBA{R: uint8(i), A: 255})
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/images/pic_%04d.png", i), buf.Bytes(), 0644))
	}
}

func redOf(frame videoframe.Frame) int {
	r, _, _, _ := frame.DataRef().(image.Image).At(0, 0).RGBA()
	return int(r >> 8)
}

func newTestOptions(t *testing.T, listener playback.Listener) player.Options {
	t.Helper()
	fs := newTestFs(t)
	return player.Options{
		Backend: videobackend.Mock(videobackend.MockSettings{
			Fs: fs, Frames: videoFrames, FPS: 25, Width: 32, Height: 24,
		}),
		Fs:       fs,
		Listener: listener,
	}
}

func TestOpenVideoPublishesFirstFrame(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewVideoPlayer(newTestOptions(t, events))

	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	assert.NotEmpty(t, p.UUID())
	assert.Equal(t, mediatype.Video, p.Kind())
	assert.Equal(t, videoFrames-1, p.NumberOfFrames())
	assert.Equal(t, 0, p.CurrentFrame())
	assert.Equal(t, 25, p.FrameRate())
	assert.Equal(t, videoPath, p.Name())
	assert.True(t, p.IsStopped())
	assert.Equal(t, []int{0}, events.Indexes())

	last := p.LastFrame()
	require.NotNil(t, last)
	assert.Equal(t, 32, last.Dimensions().W)
	last.Close()
}

func TestOpenTwiceIsMisuse(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))
	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	assert.ErrorIs(t, p.Open(videoPath), playback.ErrConcurrentMisuse)
}

func TestOpenMissingVideoFails(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))

	assert.ErrorIs(t, p.Open("/videos/missing.avi"), playback.ErrOpenFailed)
	assert.Equal(t, 0, p.NumberOfFrames())
	assert.Equal(t, playback.InvalidFrameRate, p.FrameRate())
	assert.True(t, p.IsStopped())
	assert.Nil(t, p.LastFrame())
}

func TestOperationsBeforeOpenAreMisuse(t *testing.T) {
	p := player.NewVideoPlayer(newTestOptions(t, nil))

	assert.ErrorIs(t, p.Play(), playback.ErrConcurrentMisuse)
	assert.ErrorIs(t, p.Go(1), playback.ErrConcurrentMisuse)
	assert.ErrorIs(t, p.SetCurrentFrame(1), playback.ErrConcurrentMisuse)
	assert.NoError(t, p.Close())
	p.Stop(true)
	assert.Equal(t, 0, p.CurrentFrame())
}

func TestPlayVideoToEnd(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewVideoPlayer(newTestOptions(t, events))
	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	require.NoError(t, p.Play())
	assert.True(t, events.waitDone(t))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, events.Indexes())
	assert.True(t, p.IsStopped())
	assert.Equal(t, videoFrames, p.CurrentFrame())
}

func TestPlayAfterEndFailsAgainImmediately(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewVideoPlayer(newTestOptions(t, events))
	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	require.NoError(t, p.Play())
	events.waitDone(t)
	published := len(events.Indexes())

	require.NoError(t, p.Play())
	assert.True(t, events.waitDone(t))
	assert.Len(t, events.Indexes(), published)
}

func TestStopAndResume(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	opts := newTestOptions(t, events)
	opts.Speed = playback.SpeedDown2x
	p := player.NewVideoPlayer(opts)
	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	assert.Equal(t, 0, events.waitFrame(t))

	require.NoError(t, p.Play())
	require.NoError(t, p.Play())
	assert.Equal(t, 1, events.waitFrame(t))

	p.Stop(true)
	assert.True(t, p.IsStopped())
	stoppedAt := p.CurrentFrame()

	require.NoError(t, p.Play())
	assert.False(t, p.IsStopped())
	assert.Equal(t, stoppedAt+1, events.waitFrame(t))
	p.Stop(true)

	select {
	case <-events.done:
		t.Fatal("explicit stop must not report done")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGoWhileStoppedSeeksAndPublishes(t *testing.T) {
	defer log.Silence()()
	is := is.New(t)
	events := newEventLog()
	p := player.NewVideoPlayer(newTestOptions(t, events))
	is.NoErr(p.Open(videoPath))
	defer p.Close()

	is.NoErr(p.Go(3))
	is.Equal(p.CurrentFrame(), 3)

	is.True(p.Go(-4) != nil)
	is.Equal(p.CurrentFrame(), 3)

	is.True(p.Go(6) != nil)
	is.NoErr(p.Go(5))
	is.Equal(p.CurrentFrame(), 8)
	is.Equal(events.Indexes(), []int{0, 3, 8})
}

func TestGoOutOfRangeWrapsSentinel(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))
	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	assert.ErrorIs(t, p.Go(-1), playback.ErrSeekOutOfRange)
	assert.ErrorIs(t, p.Go(videoFrames-1), playback.ErrSeekOutOfRange)
}

func TestGoWhilePlayingOnlyMovesPosition(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	opts := newTestOptions(t, events)
	opts.Speed = playback.SpeedDown2x
	p := player.NewVideoPlayer(opts)
	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	events.waitFrame(t)

	require.NoError(t, p.Play())
	events.waitFrame(t)
	require.NoError(t, p.Go(5))
	assert.GreaterOrEqual(t, p.CurrentFrame(), 6)
	assert.GreaterOrEqual(t, events.waitFrame(t), 7)
}

func TestSetCurrentFrameBoundsForVideo(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))
	require.NoError(t, p.Open(videoPath))
	defer p.Close()

	assert.NoError(t, p.SetCurrentFrame(0))
	assert.NoError(t, p.SetCurrentFrame(videoFrames-2))
	assert.ErrorIs(t, p.SetCurrentFrame(videoFrames-1), playback.ErrSeekOutOfRange)
	assert.ErrorIs(t, p.SetCurrentFrame(-1), playback.ErrSeekOutOfRange)
	assert.Equal(t, videoFrames-2, p.CurrentFrame())
}

func TestSetSpeedAppliesBeforeAndAfterOpen(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))
	assert.Equal(t, playback.Fast, p.Speed())

	p.SetSpeed(playback.Normal)
	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	assert.Equal(t, playback.Normal, p.Speed())

	p.SetSpeed(playback.SpeedUp3x)
	assert.Equal(t, playback.SpeedUp3x, p.Speed())
}

func TestCloseVideoKeepsName(t *testing.T) {
	defer log.Silence()()
	p := player.NewVideoPlayer(newTestOptions(t, nil))
	require.NoError(t, p.Open(videoPath))
	require.NoError(t, p.Play())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, videoPath, p.Name())
	assert.Equal(t, playback.InvalidFrameRate, p.FrameRate())
	assert.Equal(t, 0, p.CurrentFrame())
	assert.Equal(t, 0, p.NumberOfFrames())
	assert.True(t, p.IsStopped())
	assert.ErrorIs(t, p.Play(), playback.ErrConcurrentMisuse)

	require.NoError(t, p.Open(videoPath))
	assert.NoError(t, p.Close())
}

func TestImageSequencePlaysFromOpenedNumber(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewImageSequencePlayer(newTestOptions(t, events))
	require.NoError(t, p.Open("/images/pic_0015.png"))
	defer p.Close()

	assert.Equal(t, mediatype.ImageSequence, p.Kind())
	assert.Equal(t, 15, p.CurrentFrame())
	assert.Equal(t, 20, p.NumberOfFrames())
	assert.Equal(t, playback.DefaultFrameRate, p.FrameRate())

	require.NoError(t, p.Play())
	assert.True(t, events.waitDone(t))
	assert.Equal(t, []int{15, 16, 17, 18, 19}, events.Indexes())
	assert.Equal(t, "/images/pic_0019.png", p.Name())
}

func TestImageSequenceBoundsAndClose(t *testing.T) {
	defer log.Silence()()
	p := player.NewImageSequencePlayer(newTestOptions(t, nil))
	require.NoError(t, p.Open("/images/pic_0000.png"))

	assert.NoError(t, p.SetCurrentFrame(20))
	assert.ErrorIs(t, p.SetCurrentFrame(21), playback.ErrSeekOutOfRange)
	assert.NoError(t, p.SetCurrentFrame(0))

	require.NoError(t, p.Close())
	assert.Equal(t, "", p.Name())
	assert.Equal(t, playback.DefaultFrameRate, p.FrameRate())
}

func TestNewSelectsPlayerByExtension(t *testing.T) {
	opts := newTestOptions(t, nil)

	p, err := player.New(videoPath, opts)
	require.NoError(t, err)
	assert.Equal(t, mediatype.Video, p.Kind())

	p, err = player.New("/images/pic_0000.png", opts)
	require.NoError(t, err)
	assert.Equal(t, mediatype.ImageSequence, p.Kind())

	p, err = player.New("/docs/readme.md", opts)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, playback.ErrOpenFailed)
}

func TestOpenFactoryOpensPlayer(t *testing.T) {
	defer log.Silence()()
	p, err := player.Open("/images/pic_0002.png", newTestOptions(t, nil))
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 2, p.CurrentFrame())

	p, err = player.Open("/images/pic_0099.png", newTestOptions(t, nil))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, playback.ErrOpenFailed)
}

func TestQueriesAndStopDoNotBlockDuringPlayback(t *testing.T) {
	defer log.Silence()()
	opts := newTestOptions(t, playback.NewMailbox())
	p := player.NewVideoPlayer(opts)
	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	require.NoError(t, p.Play())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.CurrentFrame()
				p.IsStopped()
				p.NumberOfFrames()
				p.Name()
				if f := p.LastFrame(); f != nil {
					f.Close()
				}
			}
		}()
	}
	wg.Wait()
	p.Stop(true)
	assert.True(t, p.IsStopped())
}

func TestSetSpeedDuringPlaybackChangesCadence(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	opts := newTestOptions(t, events)
	opts.Speed = playback.SpeedDown2x
	p := player.NewVideoPlayer(opts)
	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	require.Equal(t, 0, events.waitFrame(t))

	require.NoError(t, p.Play())
	require.Equal(t, 1, events.waitFrame(t))
	start := time.Now()
	require.Equal(t, 2, events.waitFrame(t))
	// 4000ms base over 25fps
	assert.True(t, time.Since(start) >= 120*time.Millisecond)

	p.SetSpeed(playback.Fast)
	require.Equal(t, 3, events.waitFrame(t))
	start = time.Now()
	assert.True(t, events.waitDone(t))
	// six more frames at the old cadence would take close to a second
	assert.True(t, time.Since(start) < 400*time.Millisecond)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, events.Indexes())
}

type afterCloseListener struct {
	closed atomic.Bool
	late   atomic.Int32
	frames atomic.Int32
}

func (l *afterCloseListener) OnFrame(ev playback.FrameEvent) {
	if l.closed.Load() {
		l.late.Add(1)
	}
	l.frames.Add(1)
	ev.Frame.Close()
}

func (l *afterCloseListener) OnDone(bool) {}

func TestNoFramesArriveAfterCloseReturns(t *testing.T) {
	defer log.Silence()()
	listener := &afterCloseListener{}
	fs := newTestFs(t)
	p := player.NewVideoPlayer(player.Options{
		Backend:  videobackend.Mock(videobackend.MockSettings{Fs: fs, Frames: 1000, FPS: 25, Width: 32, Height: 24}),
		Fs:       fs,
		Speed:    playback.SpeedUp6x,
		Listener: listener,
	})
	require.NoError(t, p.Open(videoPath))
	require.NoError(t, p.Play())
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, p.Close())
	listener.closed.Store(true)
	time.Sleep(50 * time.Millisecond)

	assert.Greater(t, listener.frames.Load(), int32(1))
	assert.Equal(t, int32(0), listener.late.Load())
}

func TestReopenVideoStartsOver(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewVideoPlayer(newTestOptions(t, events))
	require.NoError(t, p.Open(videoPath))
	require.Equal(t, 0, events.waitFrame(t))
	require.NoError(t, p.Go(4))
	require.Equal(t, 4, events.waitFrame(t))
	require.NoError(t, p.Close())

	require.NoError(t, p.Open(videoPath))
	defer p.Close()
	assert.Equal(t, 0, events.waitFrame(t))
	assert.Equal(t, 0, p.CurrentFrame())
	assert.Equal(t, videoFrames-1, p.NumberOfFrames())
}

func TestReopenImageSequenceStartsOver(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	p := player.NewImageSequencePlayer(newTestOptions(t, events))
	require.NoError(t, p.Open("/images/pic_0015.png"))
	require.Equal(t, 15, events.waitFrame(t))
	require.NoError(t, p.Go(2))
	require.Equal(t, 17, events.waitFrame(t))
	require.NoError(t, p.Close())

	require.NoError(t, p.Open("/images/pic_0015.png"))
	defer p.Close()
	assert.Equal(t, 15, events.waitFrame(t))
	assert.Equal(t, 15, p.CurrentFrame())
	assert.Equal(t, "/images/pic_0015.png", p.Name())
}

func TestImageSequenceGoDecodesTargetFile(t *testing.T) {
	defer log.Silence()()
	is := is.New(t)
	events := newEventLog()
	p := player.NewImageSequencePlayer(newTestOptions(t, events))
	is.NoErr(p.Open("/images/pic_0000.png"))
	defer p.Close()

	is.NoErr(p.Go(5))
	is.Equal(p.CurrentFrame(), 5)
	is.Equal(p.Name(), "/images/pic_0005.png")
	last := p.LastFrame()
	is.True(last != nil)
	is.Equal(redOf(last), 5)
	last.Close()

	err := p.Go(500)
	is.True(errors.Is(err, playback.ErrSeekOutOfRange))
	is.Equal(p.CurrentFrame(), 5)
	last = p.LastFrame()
	is.Equal(redOf(last), 5)
	last.Close()
	is.Equal(events.Indexes(), []int{0, 5})
}

func TestImageSequenceRemainingCountMode(t *testing.T) {
	defer log.Silence()()
	events := newEventLog()
	fs := afero.NewMemMapFs()
	writeSequence(t, fs, 200)
	p := player.NewImageSequencePlayer(player.Options{
		Backend:       videobackend.Mock(videobackend.MockSettings{Fs: fs}),
		Fs:            fs,
		ImageSequence: framesource.ImageSequenceOptions{CountMode: imageseq.CountRemaining},
		Listener:      events,
	})
	require.NoError(t, p.Open("/images/pic_0100.png"))
	defer p.Close()

	assert.Equal(t, 100, p.NumberOfFrames())
	assert.Equal(t, 100, p.CurrentFrame())
	assert.Equal(t, 100, events.waitFrame(t))
}

// gatedDecodeBackend blocks DecodeImage on release once gated is set.
type gatedDecodeBackend struct {
	videobackend.Backend
	gated    *atomic.Bool
	decoding chan struct{}
	release  chan struct{}
}

func (b gatedDecodeBackend) DecodeImage(path string) (videoframe.Frame, error) {
	if b.gated.Load() {
		select {
		case b.decoding <- struct{}{}:
		default:
		}
		<-b.release
	}
	return b.Backend.DecodeImage(path)
}

func TestQueriesStayResponsiveDuringSlowDecode(t *testing.T) {
	defer log.Silence()()
	opts := newTestOptions(t, nil)
	backend := gatedDecodeBackend{
		Backend:  opts.Backend,
		gated:    &atomic.Bool{},
		decoding: make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	opts.Backend = backend
	p := player.NewImageSequencePlayer(opts)
	require.NoError(t, p.Open("/images/pic_0000.png"))
	defer p.Close()

	backend.gated.Store(true)
	require.NoError(t, p.Play())
	select {
	case <-backend.decoding:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started decoding")
	}
	defer close(backend.release)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		assert.Equal(t, "/images/pic_0000.png", p.Name())
	}()
	go func() {
		defer wg.Done()
		p.SetSpeed(playback.Normal)
	}()
	go func() {
		defer wg.Done()
		assert.False(t, p.IsStopped())
		assert.Equal(t, 1, p.CurrentFrame())
		assert.Equal(t, 20, p.NumberOfFrames())
	}()

	answered := make(chan struct{})
	go func() {
		wg.Wait()
		close(answered)
	}()
	select {
	case <-answered:
	case <-time.After(time.Second):
		t.Fatal("queries blocked behind an in-flight decode")
	}
	assert.Equal(t, playback.Normal, p.Speed())
}
