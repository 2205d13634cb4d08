// Package effect provides ready-made renderers for common lighting
// animations. Effects keep their own animation phase; the loop only calls
// their Render method.
package effect

import (
	"time"

	"github.com/domrim/keyleds/render"
)

// Fill paints every key with a single static color.
type Fill struct {
	Color render.RGBAColor
}

// Render implements render.Renderer.
func (f *Fill) Render(_ time.Duration, target *render.RenderTarget) {
	target.Fill(f.Color)
}
