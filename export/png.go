package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// PNGSequence writes every frame as <dir>/<prefix>_00000.png and so on.
type PNGSequence struct {
	Dir    string
	Prefix string

	started       bool
	width, height int
	frames        int
	encoder       png.Encoder
}

func NewPNGSequence(dir, prefix string) *PNGSequence {
	return &PNGSequence{Dir: dir, Prefix: prefix, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}
}

func (p *PNGSequence) Start(width, height int, fps float64) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	p.started, p.width, p.height, p.frames = true, width, height, 0
	log.Info().Str("dir", p.Dir).Float64("fps", fps).Msg("writing png sequence")
	return nil
}

func (p *PNGSequence) WriteFrame(img *image.RGBA) error {
	if !p.started {
		return ErrNotStarted
	}
	if err := checkSize(img, p.width, p.height); err != nil {
		return err
	}
	path := p.FramePath(p.frames)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.frames++
	return nil
}

// FramePath is the file the n-th frame is written to.
func (p *PNGSequence) FramePath(n int) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%05d.png", p.Prefix, n))
}

func (p *PNGSequence) Stop() error {
	if !p.started {
		return nil
	}
	p.started = false
	log.Info().Int("frames", p.frames).Str("dir", p.Dir).Msg("png sequence finished")
	return nil
}

// Frames is the number of frames written since the last Start.
func (p *PNGSequence) Frames() int { return p.frames }
