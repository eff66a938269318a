package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 0, color.RGBA{1, 2, 3, 4})
	img.SetRGBA(0, 1, color.RGBA{5, 6, 7, 8})

	got := toColors(nil, img)
	assert.Len(t, got, 6)
	assert.Equal(t, color.RGBA{1, 2, 3, 4}, got[2])
	assert.Equal(t, color.RGBA{5, 6, 7, 8}, got[3])

	// Larger buffers are reused.
	buf := make([]color.RGBA, 10)
	again := toColors(buf, img)
	assert.Len(t, again, 6)
	assert.Same(t, &buf[0], &again[0])
}
