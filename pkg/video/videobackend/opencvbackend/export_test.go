package opencvbackend

import "gocv.io/x/gocv"

func OverloadOpenVideoCapture(overload func(string) (*gocv.VideoCapture, error)) func() {
	openVideoCaptureRef := openVideoCapture
	openVideoCapture = overload
	return func() { openVideoCapture = openVideoCaptureRef }
}
