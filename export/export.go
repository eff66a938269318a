// Package export writes rendered frames to disk, either as a video through
// OpenCV or as a numbered PNG sequence.
package export

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"cloudsky/driver"
)

var (
	// ErrVideoUnavailable is returned when the binary was built without
	// the gocv tag.
	ErrVideoUnavailable = errors.New("video export requires building with -tags gocv")
	// ErrNotStarted is returned by WriteFrame before Start.
	ErrNotStarted = errors.New("export not started")
)

// New returns the exporter of the given kind: "video", "png" or "none"
// (nil exporter, nil error).
func New(kind, path string) (driver.Exporter, error) {
	switch strings.ToLower(kind) {
	case "", "none":
		return nil, nil
	case "video":
		return NewVideoWriter(path, DefaultCodec), nil
	case "png":
		return NewPNGSequence(path, "frame"), nil
	}
	return nil, fmt.Errorf("unknown export kind %q", kind)
}

func checkSize(img *image.RGBA, w, h int) error {
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("frame is %dx%d, export expects %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return nil
}
