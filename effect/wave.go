package effect

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/domrim/keyleds/render"
)

// Wave sweeps a hue gradient across each block, wrapping around once per
// period. Saturation and Value select the gradient's chroma and brightness
// in HSV space; zero values default to full.
type Wave struct {
	Period     time.Duration
	Saturation float64
	Value      float64

	phase time.Duration
}

// Render implements render.Renderer.
func (w *Wave) Render(elapsed time.Duration, target *render.RenderTarget) {
	period := w.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	w.phase = (w.phase + elapsed) % period
	shift := float64(w.phase) / float64(period)

	saturation := w.Saturation
	if saturation <= 0 {
		saturation = 1
	}
	value := w.Value
	if value <= 0 {
		value = 1
	}

	for block := 0; block < target.Blocks(); block++ {
		size := target.BlockSize(block)
		for key := 0; key < size; key++ {
			hue := math.Mod(float64(key)/float64(size)+shift, 1) * 360
			r, g, b := colorful.Hsv(hue, saturation, value).RGB255()
			target.Set(block, key, render.RGBAColor{Red: r, Green: g, Blue: b, Alpha: 255})
		}
	}
}
