package effect

import (
	"testing"
	"time"

	"github.com/domrim/keyleds/render"
)

func newTarget(t *testing.T, sizes ...int) *render.RenderTarget {
	t.Helper()
	target, err := render.NewRenderTarget(sizes)
	if err != nil {
		t.Fatalf("NewRenderTarget failed: %v", err)
	}
	return target
}

func TestFill_PaintsEveryKey(t *testing.T) {
	target := newTarget(t, 3, 5)
	red := render.RGBAColor{Red: 255, Alpha: 255}

	fill := &Fill{Color: red}
	fill.Render(time.Millisecond, target)

	for block := 0; block < target.Blocks(); block++ {
		for key := 0; key < target.BlockSize(block); key++ {
			if got := target.Get(block, key); got != red {
				t.Fatalf("(%d,%d): expected %+v, got %+v", block, key, red, got)
			}
		}
	}
}

func TestBreathe_SilentAtPhaseZero(t *testing.T) {
	target := newTarget(t, 4)
	base := render.RGBAColor{Blue: 200, Alpha: 255}
	target.Fill(base)

	breathe := &Breathe{Color: render.RGBAColor{Red: 255, Alpha: 255}, Period: time.Second}
	breathe.Render(time.Second, target) // advances exactly one period

	for key := 0; key < 4; key++ {
		if got := target.Get(0, key); got != base {
			t.Fatalf("key %d: expected untouched cell at phase 0, got %+v", key, got)
		}
	}
}

func TestBreathe_PeaksMidPeriod(t *testing.T) {
	target := newTarget(t, 1)
	breathe := &Breathe{Color: render.RGBAColor{Red: 255, Alpha: 255}, Period: 2 * time.Second}
	breathe.Render(time.Second, target)

	if got := target.Get(0, 0).Red; got != 255 {
		t.Fatalf("expected full overlay at peak, got red=%d", got)
	}
}

func TestWave_Deterministic(t *testing.T) {
	a := newTarget(t, 8)
	b := newTarget(t, 8)

	waveA := &Wave{Period: time.Second}
	waveB := &Wave{Period: time.Second}
	waveA.Render(300*time.Millisecond, a)
	waveB.Render(300*time.Millisecond, b)

	for key := 0; key < 8; key++ {
		if a.Get(0, key) != b.Get(0, key) {
			t.Fatalf("key %d: identical phases must paint identical colors", key)
		}
	}
}

func TestWave_CoversBlockWithOpaqueGradient(t *testing.T) {
	target := newTarget(t, 16)
	wave := &Wave{Period: time.Second}
	wave.Render(time.Millisecond, target)

	distinct := make(map[render.RGBAColor]struct{})
	for key := 0; key < 16; key++ {
		color := target.Get(0, key)
		if color.Alpha != 255 {
			t.Fatalf("key %d: expected opaque cell, got alpha=%d", key, color.Alpha)
		}
		distinct[color] = struct{}{}
	}
	if len(distinct) < 2 {
		t.Fatalf("expected a gradient across the block, got %d distinct colors", len(distinct))
	}
}
