package sim

import (
	"errors"
	"testing"

	"github.com/domrim/keyleds/device"
)

func TestDevice_CommitAppliesQueuedWrites(t *testing.T) {
	dev := New(3, 2)

	err := dev.SetColors(0, []device.ColorDirective{{ID: 1, Red: 10, Green: 20, Blue: 30}})
	if err != nil {
		t.Fatalf("SetColors failed: %v", err)
	}
	if got := dev.Colors(0)[1]; got != (device.Color{}) {
		t.Fatalf("writes must stay queued until commit, got %+v", got)
	}

	if err := dev.CommitColors(); err != nil {
		t.Fatalf("CommitColors failed: %v", err)
	}
	if got := dev.Colors(0)[1]; got != (device.Color{Red: 10, Green: 20, Blue: 30}) {
		t.Fatalf("expected committed color, got %+v", got)
	}
	if got := dev.Commits(); got != 1 {
		t.Fatalf("expected 1 commit, got %d", got)
	}
}

func TestDevice_FailNextPopsOnce(t *testing.T) {
	dev := New(2)
	boom := errors.New("boom")
	dev.FailNext("flush", boom)

	if err := dev.Flush(); !errors.Is(err, boom) {
		t.Fatalf("expected scripted failure, got %v", err)
	}
	if err := dev.Flush(); err != nil {
		t.Fatalf("expected failure to apply once, got %v", err)
	}
	if got := dev.CallCount("flush"); got != 2 {
		t.Fatalf("expected both calls recorded, got %d", got)
	}
}

func TestDevice_GetColorsCopies(t *testing.T) {
	dev := New(2)
	colors, err := dev.GetColors(0)
	if err != nil {
		t.Fatalf("GetColors failed: %v", err)
	}
	colors[0] = device.Color{Red: 99}
	if got := dev.Colors(0)[0]; got != (device.Color{}) {
		t.Fatalf("GetColors must return a copy, got %+v", got)
	}
}
