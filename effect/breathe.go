package effect

import (
	"math"
	"time"

	"github.com/domrim/keyleds/render"
)

// DefaultPeriod is used by time-based effects configured with a zero period.
const DefaultPeriod = 3 * time.Second

// Breathe pulses a color's alpha with a cosine ramp, fading the underlying
// image in and out over one period. It composes with whatever earlier
// renderers painted: cells are blended, not overwritten.
type Breathe struct {
	Color  render.RGBAColor
	Period time.Duration

	phase   time.Duration
	overlay *render.RenderTarget
}

// Render implements render.Renderer.
func (b *Breathe) Render(elapsed time.Duration, target *render.RenderTarget) {
	period := b.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	b.phase = (b.phase + elapsed) % period

	// Cosine ramp: 0 at phase 0, peaking mid-period.
	weight := (1 - math.Cos(2*math.Pi*float64(b.phase)/float64(period))) / 2

	color := b.Color
	color.Alpha = uint8(float64(color.Alpha) * weight)

	if b.overlay == nil || b.overlay.Size() != target.Size() {
		b.overlay = mustMatch(target)
	}
	b.overlay.Fill(color)
	render.Blend(target, b.overlay)
}

// mustMatch builds a target with the same block layout as ref.
func mustMatch(ref *render.RenderTarget) *render.RenderTarget {
	sizes := make([]int, ref.Blocks())
	for i := range sizes {
		sizes[i] = ref.BlockSize(i)
	}
	match, err := render.NewRenderTarget(sizes)
	if err != nil {
		panic(err)
	}
	return match
}
