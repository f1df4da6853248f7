package imageseq

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

const DefaultDigits = 4

type CountMode int

const (
	// CountAll counts every sibling file in the sequence.
	CountAll CountMode = iota
	// CountRemaining counts the files from the opened one onwards.
	CountRemaining
)

func ParseCountMode(s string) (CountMode, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return CountAll, nil
	case "remaining":
		return CountRemaining, nil
	}
	return CountAll, xerror.Errorf("unknown sequence count mode: %s", s)
}

// Sequence describes a numbered image file, eg. /images/pic_0042.png
// is {Dir: /images, Prefix: pic_, Digits: 4, Number: 42, Ext: png}.
type Sequence struct {
	Dir    string
	Prefix string
	Digits int
	Number int
	Ext    string
}

func Parse(path string, digits int) (Sequence, error) {
	if digits <= 0 {
		digits = DefaultDigits
	}

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if len(ext) < 2 {
		return Sequence{}, xerror.Errorf("image sequence file [%s] has no extension", path)
	}
	if len(stem) < digits {
		return Sequence{}, xerror.Errorf("image sequence file [%s] is shorter than %d digits", path, digits)
	}

	numberPart := stem[len(stem)-digits:]
	number, err := strconv.Atoi(numberPart)
	if err != nil || strings.ContainsAny(numberPart, "+-") {
		return Sequence{}, xerror.Errorf("image sequence file [%s] does not end in a %d digit number", path, digits)
	}

	return Sequence{
		Dir:    filepath.Dir(path),
		Prefix: stem[:len(stem)-digits],
		Digits: digits,
		Number: number,
		Ext:    ext[1:],
	}, nil
}

func (s Sequence) FileName(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s%0*d.%s", s.Prefix, s.Digits, index, s.Ext))
}

// Count returns the number of regular files in the sequence's directory
// matching Prefix*.Ext, less the opened file's number for CountRemaining.
func Count(fs afero.Fs, s Sequence, mode CountMode) (int, error) {
	entries, err := afero.ReadDir(fs, s.Dir)
	if err != nil {
		return 0, xerror.Errorf("unable to list image sequence directory [%s]: %w", s.Dir, err)
	}

	suffix := "." + s.Ext
	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, s.Prefix) && strings.HasSuffix(name, suffix) && len(name) > len(s.Prefix)+len(suffix) {
			total++
		}
	}

	if mode == CountRemaining {
		total -= s.Number
	}
	return total, nil
}
