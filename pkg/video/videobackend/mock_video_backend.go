package videobackend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	defaultMockFrames = 100
	defaultMockFPS    = 25
	defaultMockFourCC = "MOCK"
	defaultMockWidth  = 320
	defaultMockHeight = 240
)

// MockSettings configures the synthetic backend. Zero values fall back to
// 100 frames at 25fps rendered onto a 320x240 canvas.
type MockSettings struct {
	Fs     afero.Fs
	Frames int
	FPS    int
	FourCC string
	// OverreportFrameCount makes captures report one frame more than they
	// can decode, the way some OpenCV builds do.
	OverreportFrameCount bool
	// BlankFourCC makes captures report no codec at all.
	BlankFourCC          bool
	ReadDelay            time.Duration
	OpenErr              error
	Width, Height        int
}

func Mock(settings MockSettings) Backend {
	if settings.Fs == nil {
		settings.Fs = fs
	}
	if settings.Frames <= 0 {
		settings.Frames = defaultMockFrames
	}
	if settings.FPS <= 0 {
		settings.FPS = defaultMockFPS
	}
	if len(settings.FourCC) == 0 && !settings.BlankFourCC {
		settings.FourCC = defaultMockFourCC
	}
	if settings.Width <= 0 || settings.Height <= 0 {
		settings.Width, settings.Height = defaultMockWidth, defaultMockHeight
	}
	return &mockVideoBackend{sett: settings}
}

type mockVideoBackend struct {
	sett MockSettings
}

func (b *mockVideoBackend) Open(cancel context.Context, path string) (Capture, error) {
	result := make(chan error, 1)
	go func() {
		if b.sett.OpenErr != nil {
			result <- b.sett.OpenErr
			return
		}
		exists, err := afero.Exists(b.sett.Fs, path)
		if err != nil {
			result <- err
			return
		}
		if !exists {
			result <- xerror.Errorf("unable to open mock video [%s]: file does not exist", path)
			return
		}
		result <- nil
	}()

	select {
	case err := <-result:
		if err != nil {
			return nil, err
		}
		return &mockVideoCapture{
			title:  filepath.Base(path),
			sett:   b.sett,
			isOpen: true,
		}, nil
	case <-cancel.Done():
		return nil, xerror.New("opening video cancelled")
	}
}

func (b *mockVideoBackend) NewFrame() videoframe.Frame {
	return videoframe.NewImageFrame()
}

func (b *mockVideoBackend) DecodeImage(path string) (videoframe.Frame, error) {
	return decodeImageFile(b.sett.Fs, path)
}

func (b *mockVideoBackend) EncodeImage(path string, frame videoframe.Frame) error {
	return encodeImageFile(b.sett.Fs, path, frame)
}

type mockVideoCapture struct {
	mu         sync.Mutex
	title      string
	sett       MockSettings
	pos        int
	isOpen     bool
	baseCanvas image.Image
}

func (c *mockVideoCapture) Read(frame videoframe.Frame) error {
	imgFrame, ok := frame.(*videoframe.ImageFrame)
	if !ok {
		return xerror.New("must pass image frame to mock video capture read")
	}

	if c.sett.ReadDelay > 0 {
		time.Sleep(c.sett.ReadDelay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return xerror.New("unable to read from closed mock video capture")
	}
	if c.pos >= c.sett.Frames {
		return xerror.Errorf("mock video [%s] has no frame at position %d", c.title, c.pos)
	}

	if c.baseCanvas == nil {
		c.baseCanvas = renderBaseFrameCanvas(c.sett.Width, c.sett.Height)
	}

	img, err := drawTextLayerOntoBaseFrameClone(c.baseCanvas, c.title, c.pos)
	if err != nil {
		return err
	}
	imgFrame.SetImage(img)
	c.pos++
	return nil
}

func (c *mockVideoCapture) Seek(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index > c.frameCount() {
		return xerror.Errorf("unable to seek mock video [%s] to frame %d", c.title, index)
	}
	c.pos = index
	return nil
}

func (c *mockVideoCapture) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *mockVideoCapture) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount()
}

func (c *mockVideoCapture) frameCount() int {
	if c.sett.OverreportFrameCount {
		return c.sett.Frames + 1
	}
	return c.sett.Frames
}

func (c *mockVideoCapture) FrameRate() int {
	return c.sett.FPS
}

func (c *mockVideoCapture) FourCC() string {
	return c.sett.FourCC
}

func (c *mockVideoCapture) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

func (c *mockVideoCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOpen = false
	c.baseCanvas = nil
	return nil
}

func drawTextLayerOntoBaseFrameClone(base image.Image, title string, index int) (image.Image, error) {
	baseClone := cloneImage(base)
	h := baseClone.Bounds().Dy()
	if err := drawText(baseClone, 5, h/4, "DD_PLAYBACK"); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock video: %w", err)
	}
	if err := drawText(baseClone, 5, h/2, title); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock video: %w", err) //nolint
	}
	if err := drawText(baseClone, 5, 3*h/4, fmt.Sprintf("frame %05d", index)); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock video: %w", err) //nolint
	}
	return baseClone, nil
}

func renderBaseFrameCanvas(w, h int) image.Image {
	var hw, hh float64 = float64(w / 2), float64(h / 2)
	r := float64(h) / 2
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), float64(h) * 0.75}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), float64(h) * 0.75}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), float64(h) * 0.75}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{
				cr.Brightness(float64(x), float64(y)),
				cg.Brightness(float64(x), float64(y)),
				cb.Brightness(float64(x), float64(y)),
				255,
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func cloneImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

var (
	fontOnce   sync.Once
	fontFace   *truetype.Font
	fontErr    error
	fontPoints = 24.0
)

func drawText(canvas *image.RGBA, x, y int, text string) error {
	fontOnce.Do(func() {
		fontFace, fontErr = freetype.ParseFont(goregular.TTF)
	})
	if fontErr != nil {
		return fontErr
	}

	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(fontFace, &truetype.Options{
			Size:    fontPoints,
			Hinting: font.HintingFull,
		}),
	}
	textBounds, _ := fontDrawer.BoundString(text)
	textHeight := textBounds.Max.Y - textBounds.Min.Y
	fontDrawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y) + textHeight/2,
	}
	fontDrawer.DrawString(text)
	return nil
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}
