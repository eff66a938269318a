package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cloudsky/driver"
)

func TestStatsFromStatus(t *testing.T) {
	s := StatsFromStatus(driver.Status{
		FPS:       42,
		TargetFPS: 60,
		Exporting: true,
		Warnings:  map[string][]string{"main": {"a", "b"}, "detail": {"c"}},
		LastError: "bake failed",
	})
	assert.Equal(t, Stats{FPS: 42, TargetFPS: 60, Exporting: true, Warnings: 3, Failed: true}, s)
}

func TestStatsRatio(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float32
	}{
		{"half speed", Stats{FPS: 30, TargetFPS: 60}, 0.5},
		{"faster than target", Stats{FPS: 90, TargetFPS: 60}, 1},
		{"no target", Stats{FPS: 30}, 0},
		{"not measured yet", Stats{TargetFPS: 60}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.stats.Ratio(), 1e-6)
		})
	}
}

func TestLayout(t *testing.T) {
	quad := 6 * vertexFloats

	// Only the panel before the first measurement.
	assert.Len(t, Layout(Stats{TargetFPS: 60}), quad)

	v := Layout(Stats{FPS: 30, TargetFPS: 60})
	assert.Len(t, v, 2*quad)
	// Second vertex of the bar sits at its right edge.
	bar := v[quad:]
	assert.InDelta(t, Margin+Padding+BarWidth/2, bar[vertexFloats], 1e-4)

	all := Layout(Stats{FPS: 60, TargetFPS: 60, Exporting: true, Warnings: 1, Failed: true})
	assert.Len(t, all, 5*quad)
	// A full bar is fully green.
	assert.InDelta(t, fastColor[0], all[quad+2], 1e-6)
	assert.InDelta(t, fastColor[1], all[quad+3], 1e-6)
}
