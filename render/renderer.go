package render

import "time"

// Renderer paints key colors into a render target. Implementations are owned
// by the caller; a render loop only borrows them and never frees or retains
// them past removal from its list.
//
// Render receives the time elapsed since the previous tick. It must not keep
// a reference to target beyond the call, and it has no error channel: a
// misbehaving renderer can produce wrong colors, never abort the loop.
type Renderer interface {
	Render(elapsed time.Duration, target *RenderTarget)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(elapsed time.Duration, target *RenderTarget)

// Render calls fn.
func (fn RendererFunc) Render(elapsed time.Duration, target *RenderTarget) {
	fn(elapsed, target)
}
