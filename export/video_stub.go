//go:build !gocv

package export

import "image"

const DefaultCodec = "mp4v"

// VideoWriter is unavailable without the gocv build tag; Start always
// fails with ErrVideoUnavailable.
type VideoWriter struct {
	Path  string
	Codec string
}

func NewVideoWriter(path, codec string) *VideoWriter {
	return &VideoWriter{Path: path, Codec: codec}
}

func (v *VideoWriter) Start(width, height int, fps float64) error { return ErrVideoUnavailable }
func (v *VideoWriter) WriteFrame(*image.RGBA) error               { return ErrNotStarted }
func (v *VideoWriter) Stop() error                                { return nil }
