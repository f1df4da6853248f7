package videoframe

import (
	"image"
	"image/draw"
	"sync"
)

type Dimensions struct {
	W, H int
}

type Frame interface {
	DataRef() interface{}
	Dimensions() Dimensions
	// Clone returns an independent copy which the caller owns and must Close.
	Clone() Frame
	Close()
}

// ImageFrame is a Frame backed by a plain Go image, DataRef returns the image.Image.
type ImageFrame struct {
	mu       sync.Mutex
	img      image.Image
	isClosed bool
}

func NewImageFrame() *ImageFrame {
	return &ImageFrame{}
}

func FromImage(img image.Image) *ImageFrame {
	return &ImageFrame{img: img}
}

func (f *ImageFrame) SetImage(img image.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.img = img
	f.isClosed = false
}

func (f *ImageFrame) DataRef() interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img
}

func (f *ImageFrame) Dimensions() Dimensions {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img == nil {
		return Dimensions{}
	}
	b := f.img.Bounds()
	return Dimensions{W: b.Dx(), H: b.Dy()}
}

func (f *ImageFrame) Clone() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img == nil {
		return NewImageFrame()
	}
	b := f.img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, f.img, b.Min, draw.Src)
	return FromImage(dst)
}

func (f *ImageFrame) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isClosed {
		f.img = nil
		f.isClosed = true
	}
}

func (f *ImageFrame) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isClosed
}
