package videobackend

import (
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/dragonplayer/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const JPEGQuality = 95

func decodeImageFile(fs afero.Fs, path string) (videoframe.Frame, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, xerror.Errorf("unable to open image [%s]: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, xerror.Errorf("unable to decode image [%s]: %w", path, err)
	}
	return videoframe.FromImage(img), nil
}

func encodeImageFile(fs afero.Fs, path string, frame videoframe.Frame) error {
	img, ok := frame.DataRef().(image.Image)
	if !ok || img == nil {
		return xerror.New("must pass image frame to image encoder")
	}

	if err := ensureDirectoryPathExists(fs, filepath.Dir(path)); err != nil {
		return err
	}

	file, err := fs.Create(path)
	if err != nil {
		return xerror.Errorf("unable to create image file [%s]: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		err = png.Encode(file, img)
	case "jpg", "jpeg", "jpe":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: JPEGQuality})
	case "bmp":
		err = bmp.Encode(file, img)
	case "tif", "tiff":
		err = tiff.Encode(file, img, nil)
	default:
		return xerror.Errorf("unsupported image format for [%s]", path)
	}
	if err != nil {
		return xerror.Errorf("unable to encode image [%s]: %w", path, err)
	}
	return nil
}

func ensureDirectoryPathExists(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755)
}
