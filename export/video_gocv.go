//go:build gocv

package export

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// DefaultCodec is the FourCC used for video export.
const DefaultCodec = "mp4v"

// VideoWriter encodes frames into a video file with OpenCV.
type VideoWriter struct {
	Path  string
	Codec string

	writer        *gocv.VideoWriter
	width, height int
	frames        int
}

func NewVideoWriter(path, codec string) *VideoWriter {
	return &VideoWriter{Path: path, Codec: codec}
}

func (v *VideoWriter) Start(width, height int, fps float64) error {
	w, err := gocv.VideoWriterFile(v.Path, v.Codec, fps, width, height, true)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.Path, err)
	}
	if !w.IsOpened() {
		w.Close()
		return fmt.Errorf("open video %s: codec %s not available", v.Path, v.Codec)
	}
	v.writer, v.width, v.height, v.frames = w, width, height, 0
	log.Info().Str("path", v.Path).Str("codec", v.Codec).Float64("fps", fps).Msg("video export started")
	return nil
}

func (v *VideoWriter) WriteFrame(img *image.RGBA) error {
	if v.writer == nil {
		return ErrNotStarted
	}
	if err := checkSize(img, v.width, v.height); err != nil {
		return err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()
	if err := v.writer.Write(mat); err != nil {
		return fmt.Errorf("write frame %d: %w", v.frames, err)
	}
	v.frames++
	return nil
}

func (v *VideoWriter) Stop() error {
	if v.writer == nil {
		return nil
	}
	err := v.writer.Close()
	v.writer = nil
	log.Info().Int("frames", v.frames).Str("path", v.Path).Msg("video export finished")
	return err
}
