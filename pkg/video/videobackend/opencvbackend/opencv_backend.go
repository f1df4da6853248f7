package opencvbackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/video/videobackend"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var fs = afero.NewOsFs()

const jpegQuality = 95

type openCVFrame struct {
	mu       sync.Mutex
	isClosed bool
	mat      gocv.Mat
}

func (frame *openCVFrame) DataRef() interface{} {
	return &frame.mat
}

func (frame *openCVFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}

func (frame *openCVFrame) Clone() videoframe.Frame {
	frame.mu.Lock()
	defer frame.mu.Unlock()
	if frame.isClosed {
		return &openCVFrame{mat: gocv.NewMat()}
	}
	return &openCVFrame{mat: frame.mat.Clone()}
}

func (frame *openCVFrame) Close() {
	frame.mu.Lock()
	defer frame.mu.Unlock()
	if !frame.isClosed {
		frame.mat.Close()
		frame.isClosed = true
	}
}

func New() videobackend.Backend {
	return &openCVBackend{}
}

type openCVBackend struct{}

func (b *openCVBackend) Open(cancel context.Context, path string) (videobackend.Capture, error) {
	capture := openCVCapture{}
	if err := capture.open(cancel, path); err != nil {
		return nil, err
	}
	return &capture, nil
}

func (b *openCVBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

func (b *openCVBackend) DecodeImage(path string) (videoframe.Frame, error) {
	mat := readImage(path)
	if mat.Empty() {
		mat.Close()
		return nil, xerror.Errorf("unable to decode image [%s]", path)
	}
	return &openCVFrame{mat: mat}, nil
}

var readImage = func(path string) gocv.Mat {
	return gocv.IMRead(path, gocv.IMReadColor)
}

func (b *openCVBackend) EncodeImage(path string, frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV image encoder")
	}
	if err := ensureDirectoryPathExists(filepath.Dir(path)); err != nil {
		return err
	}

	params := []int{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".jpe":
		params = append(params, int(gocv.IMWriteJpegQuality), jpegQuality)
	}
	if ok := gocv.IMWriteWithParams(path, *mat, params); !ok {
		return xerror.Errorf("unable to write image [%s]", path)
	}
	return nil
}

func ensureDirectoryPathExists(path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

type openCVCapture struct {
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
}

func (c *openCVCapture) open(cancel context.Context, path string) error {
	captureAndError := make(chan openVideoFileResult, 1)
	go openVideoFile(path, captureAndError)
	select {
	case r := <-captureAndError:
		if r.err != nil {
			return r.err
		}
		if !r.vc.IsOpened() {
			r.vc.Close()
			return xerror.Errorf("unable to open video file [%s]", path)
		}
		c.vc = r.vc
		c.isOpen = true
		return nil
	case <-cancel.Done():
		return xerror.New("opening video cancelled")
	}
}

type openVideoFileResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoFile(path string, d chan openVideoFileResult) {
	vc, err := openVideoCapture(path)
	d <- openVideoFileResult{vc: vc, err: err}
}

var openVideoCapture = func(path string) (*gocv.VideoCapture, error) {
	return gocv.VideoCaptureFile(path)
}

func (c *openCVCapture) Read(frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV capture read")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen || !c.vc.Read(mat) || mat.Empty() {
		return xerror.New("unable to read frame from video capture")
	}
	return nil
}

func (c *openCVCapture) Seek(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return xerror.New("unable to seek closed video capture")
	}
	if index < 0 || index > c.frameCount() {
		return xerror.Errorf("frame %d is outside of video capture", index)
	}
	c.vc.Set(gocv.VideoCapturePosFrames, float64(index))
	return nil
}

func (c *openCVCapture) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return -1
	}
	return int(c.vc.Get(gocv.VideoCapturePosFrames))
}

// FrameCount is the raw container count which frequently claims one
// frame more than can be decoded.
func (c *openCVCapture) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount()
}

func (c *openCVCapture) frameCount() int {
	if !c.isOpen {
		return -1
	}
	return int(c.vc.Get(gocv.VideoCaptureFrameCount))
}

func (c *openCVCapture) FrameRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return -1
	}
	return int(c.vc.Get(gocv.VideoCaptureFPS))
}

func (c *openCVCapture) FourCC() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return ""
	}
	return videobackend.FourCCToString(int(c.vc.Get(gocv.VideoCaptureFOURCC)))
}

func (c *openCVCapture) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return nil
	}
	c.isOpen = false
	return c.vc.Close()
}
