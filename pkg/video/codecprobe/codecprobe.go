// Package codecprobe reads the video sample entry of MP4 containers, used when
// the decoding backend cannot report a codec for an opened file.
package codecprobe

import (
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

var ErrNoVideoTrack = xerror.New("no video track found")

func ProbeFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", xerror.Errorf("unable to open [%s] for codec probe: %w", path, err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe returns the sample entry type of the first video track, eg. "avc1", "hvc1", "av01".
func Probe(r io.Reader) (string, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return "", xerror.Errorf("unable to decode mp4: %w", err)
	}

	var moov *mp4.MoovBox
	if file.IsFragmented() && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		moov = file.Moov
	}
	if moov == nil {
		return "", ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		if codec := sampleEntryType(trak); len(codec) > 0 {
			return codec, nil
		}
	}
	return "", ErrNoVideoTrack
}

func sampleEntryType(trak *mp4.TrakBox) string {
	if trak == nil || trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ""
	}
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return ""
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	if entries := trak.Mdia.Minf.Stbl.Stsd.Children; len(entries) > 0 {
		return entries[0].Type()
	}
	return ""
}
