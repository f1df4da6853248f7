package playback

import "errors"

var (
	ErrOpenFailed       = errors.New("unable to open frame source")
	ErrSeekOutOfRange   = errors.New("frame index out of range")
	ErrSourceExhausted  = errors.New("frame source exhausted")
	ErrDecodeFailed     = errors.New("unable to decode frame")
	ErrConcurrentMisuse = errors.New("operation not permitted in current player state")
)

// IsReadFailure reports whether err came from a frame source failing to
// produce a frame, either because it ran out or the frame would not decode.
func IsReadFailure(err error) bool {
	return errors.Is(err, ErrSourceExhausted) || errors.Is(err, ErrDecodeFailed)
}
