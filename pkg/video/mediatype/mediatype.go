package mediatype

import (
	"path/filepath"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	Video
	ImageSequence
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case ImageSequence:
		return "image_sequence"
	default:
		return "unknown"
	}
}

var DefaultVideoExtensions = []string{"avi", "mpg", "mp4"}

var DefaultImageExtensions = []string{
	"bmp", "pbm", "pgm", "ppm", "sr", "ras", "jpg", "jpeg", "jpe", "jp2", "tiff", "tif", "png",
}

// Table resolves a path's Kind from its extension.
type Table struct {
	video map[string]struct{}
	image map[string]struct{}
}

func NewTable(videoExts, imageExts []string) Table {
	return Table{video: toSet(videoExts), image: toSet(imageExts)}
}

func DefaultTable() Table {
	return NewTable(DefaultVideoExtensions, DefaultImageExtensions)
}

func toSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[normalise(ext)] = struct{}{}
	}
	return set
}

func normalise(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func (t Table) Detect(path string) Kind {
	ext := normalise(filepath.Ext(path))
	if len(ext) == 0 {
		return Unknown
	}
	if _, ok := t.video[ext]; ok {
		return Video
	}
	if _, ok := t.image[ext]; ok {
		return ImageSequence
	}
	return Unknown
}

// Empty reports whether the table knows no extensions at all, as is the
// case for the zero Table.
func (t Table) Empty() bool {
	return len(t.video) == 0 && len(t.image) == 0
}

func (t Table) IsVideo(path string) bool { return t.Detect(path) == Video }

func (t Table) IsImage(path string) bool { return t.Detect(path) == ImageSequence }

func Detect(path string) Kind {
	return DefaultTable().Detect(path)
}
