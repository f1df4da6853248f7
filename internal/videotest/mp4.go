// Package videotest builds small media fixtures for tests.
package videotest

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/spf13/afero"
)

const timescale = 90000

// InitSegmentMP4 encodes an init-only MP4 carrying one video track whose
// sample entry is of the given type, eg. "avc1" or "hvc1".
func InitSegmentMP4(sampleEntry string, width, height uint16) ([]byte, error) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")

	trak := init.Moov.Trak
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox(sampleEntry, width, height, nil))
	trak.Tkhd.Width = mp4.Fixed32(uint32(width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(height) << 16)

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMP4 writes an InitSegmentMP4 fixture to path on fs.
func WriteMP4(fs afero.Fs, path, sampleEntry string) error {
	data, err := InitSegmentMP4(sampleEntry, 320, 240)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}
