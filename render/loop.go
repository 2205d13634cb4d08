package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/domrim/keyleds/anim"
	"github.com/domrim/keyleds/device"
)

// LoopConfig configures a RenderLoop.
type LoopConfig struct {
	// FPS is the target tick rate. Zero selects anim.DefaultFPS.
	FPS uint
	// Logger receives loop lifecycle and device failure records.
	// Nil selects a no-op logger.
	Logger *zap.Logger
}

// RenderLoop runs a set of renderers at a fixed rate and pushes the
// resulting colors to a device, sending only the cells that changed since
// the previous tick. It assumes entire control of the device: while a
// RenderLoop is attached, no other goroutine may call the device's
// color-mutating methods.
type RenderLoop struct {
	dev    device.Device
	blocks []device.Block
	log    *zap.Logger

	mu        sync.Mutex // guards renderers and the objects they point to
	renderers []Renderer

	loop     *anim.Loop
	stopping atomic.Bool

	state      *RenderTarget // colors currently on the device
	buffer     *RenderTarget // scratch target renderers paint into
	directives []device.ColorDirective
	runErr     error // device fault carried out of the periodic phase
}

// NewRenderLoop builds a loop for dev. Both render targets and the directive
// scratch list are sized here so the per-tick path allocates nothing.
func NewRenderLoop(dev device.Device, cfg LoopConfig) (*RenderLoop, error) {
	state, err := RenderTargetFor(dev)
	if err != nil {
		return nil, err
	}
	buffer, err := RenderTargetFor(dev)
	if err != nil {
		return nil, err
	}

	blocks := dev.Blocks()
	maxKeys := 0
	for _, block := range blocks {
		maxKeys = max(maxKeys, len(block.Keys))
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	l := &RenderLoop{
		dev:        dev,
		blocks:     blocks,
		log:        log.With(zap.String("loop", ulid.Make().String())),
		state:      state,
		buffer:     buffer,
		directives: make([]device.ColorDirective, 0, maxKeys),
	}
	l.loop = anim.NewLoop(cfg.FPS, l.render)
	return l, nil
}

// RenderTargetFor builds a render target matching the key layout of dev,
// with blocks in the device's own enumeration order.
func RenderTargetFor(dev device.Device) (*RenderTarget, error) {
	blocks := dev.Blocks()
	sizes := make([]int, 0, len(blocks))
	for _, block := range blocks {
		sizes = append(sizes, len(block.Keys))
	}
	return NewRenderTarget(sizes)
}

// Lock bars the loop from invoking renderers while held. Any mutation of the
// renderer list or of a renderer already in the list must happen under it.
func (l *RenderLoop) Lock() {
	l.mu.Lock()
}

// Unlock releases the renderer lock.
func (l *RenderLoop) Unlock() {
	l.mu.Unlock()
}

// Renderers returns the current renderer list. The caller must hold the
// renderer lock while reading or mutating it.
func (l *RenderLoop) Renderers() []Renderer {
	return l.renderers
}

// SetRenderers replaces the renderer list. List order is render order: later
// renderers overwrite earlier output for the same cell. The loop only
// borrows the handles; each must stay valid while it remains in the list.
func (l *RenderLoop) SetRenderers(renderers ...Renderer) {
	l.mu.Lock()
	l.renderers = renderers
	l.mu.Unlock()
	l.log.Debug("renderers updated", zap.Int("count", len(renderers)))
}

// render is the per-tick step driven by the anim loop.
func (l *RenderLoop) render(elapsed time.Duration) bool {
	l.mu.Lock()
	hasRenderers := len(l.renderers) > 0
	for _, renderer := range l.renderers {
		renderer.Render(elapsed, l.buffer)
	}
	l.mu.Unlock()

	// With nothing to compose the device is left alone entirely.
	if !hasRenderers {
		return true
	}

	// Another process may have queued reports behind our back.
	if err := l.dev.Flush(); err != nil {
		l.runErr = err
		return false
	}

	hasChanges := false
	for bidx, block := range l.blocks {
		l.directives = l.directives[:0]
		for idx := range block.Keys {
			color := l.buffer.Get(bidx, idx)
			if color != l.state.Get(bidx, idx) {
				l.directives = append(l.directives, device.ColorDirective{
					ID:    block.Keys[idx],
					Red:   color.Red,
					Green: color.Green,
					Blue:  color.Blue,
				})
			}
		}
		if len(l.directives) > 0 {
			if err := l.dev.SetColors(bidx, l.directives); err != nil {
				l.runErr = err
				return false
			}
			hasChanges = true
		}
	}
	if hasChanges {
		if err := l.dev.CommitColors(); err != nil {
			l.runErr = err
			return false
		}
	}

	// The next tick paints over the just-rendered image, so renderers that
	// skip a cell inherit its previous value across ticks.
	Swap(l.state, l.buffer)
	return true
}

// Run drives the loop until Stop is called or the device fails terminally.
// It blocks; callers normally run it on its own goroutine.
//
// The first action is a full read of the device state so the first diff runs
// against ground truth. Transient device faults during the periodic phase
// trigger a resync-and-restart cycle; a vanished or timed-out device ends
// the loop silently, anything else ends it with one log line. If Stop has
// already been called, Run returns without touching the device: a stopped
// RenderLoop does not restart.
func (l *RenderLoop) Run() {
	if l.stopping.Load() {
		return
	}

	if err := l.getDeviceState(l.state); err != nil {
		l.log.Error("device error", zap.Error(err))
		return
	}
	// Seed the scratch with the same image; baseline alpha is opaque, so
	// the blend is a straight copy. Cells no renderer paints then diff
	// clean from the first tick on.
	Blend(l.buffer, l.state)

	// The loop's own cadence supersedes the transport's idle detection.
	l.dev.SetTimeout(0)

	for {
		if l.stopping.Load() {
			return
		}
		l.runErr = nil
		l.loop.Start()
		err := l.runErr
		if err == nil {
			// Cooperative stop; nothing else ends the periodic phase
			// without setting runErr.
			return
		}
		if l.stopping.Load() {
			return
		}
		if rerr := l.dev.Resync(); rerr != nil {
			if !device.IsExpectedShutdown(err) {
				l.log.Error("device error", zap.Error(err))
			}
			return
		}
		l.log.Debug("device resynchronized", zap.Error(err))
	}
}

// Stop requests a cooperative shutdown and blocks until the in-flight tick,
// including any device I/O it started, has completed. The request is never
// lost: a Stop racing Run's startup or a resync restart latches into the
// scheduling loop, and Run exits at its next boundary.
func (l *RenderLoop) Stop() {
	l.stopping.Store(true)
	l.loop.Stop()
}

// getDeviceState reads every key color into state as the diff baseline.
// Alpha is forced to opaque: the device has no alpha channel.
func (l *RenderLoop) getDeviceState(state *RenderTarget) error {
	for bidx := range l.blocks {
		colors, err := l.dev.GetColors(bidx)
		if err != nil {
			return err
		}
		for idx, color := range colors {
			state.Set(bidx, idx, RGBAColor{
				Red:   color.Red,
				Green: color.Green,
				Blue:  color.Blue,
				Alpha: 255,
			})
		}
	}
	return nil
}
