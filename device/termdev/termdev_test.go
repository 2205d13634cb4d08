package termdev

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/domrim/keyleds/device"
)

func newTestDevice(t *testing.T) (*Device, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	dev, err := New(Config{
		Screen: screen,
		Blocks: []BlockLayout{
			{Name: "KEYS", Keys: []string{"ESC", "F1", "F2"}},
			{Name: "LOGO", Keys: []string{"G"}},
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return dev, screen
}

func TestDevice_ReportsConfiguredLayout(t *testing.T) {
	dev, _ := newTestDevice(t)
	defer dev.Close()

	blocks := dev.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Name != "KEYS" || len(blocks[0].Keys) != 3 {
		t.Fatalf("unexpected first block: %+v", blocks[0])
	}
	if len(blocks[1].Keys) != 1 {
		t.Fatalf("unexpected second block: %+v", blocks[1])
	}
}

func TestDevice_CommitDrawsKeyColor(t *testing.T) {
	dev, screen := newTestDevice(t)
	defer dev.Close()

	err := dev.SetColors(0, []device.ColorDirective{{ID: 1, Red: 255}})
	if err != nil {
		t.Fatalf("SetColors failed: %v", err)
	}
	if err := dev.CommitColors(); err != nil {
		t.Fatalf("CommitColors failed: %v", err)
	}

	colors, err := dev.GetColors(0)
	if err != nil {
		t.Fatalf("GetColors failed: %v", err)
	}
	if colors[1] != (device.Color{Red: 255}) {
		t.Fatalf("expected committed color, got %+v", colors[1])
	}

	// Key 1 starts after the name gutter plus one key cell.
	contents, _, _ := screen.GetContents()
	cell := contents[dev.gutter+DefaultCellWidth]
	_, bg, _ := cell.Style.Decompose()
	if bg != tcell.NewRGBColor(255, 0, 0) {
		t.Fatalf("expected red background, got %v", bg)
	}
}

func TestDevice_DrawsBlockNames(t *testing.T) {
	_, screen := newTestDevice(t)

	contents, _, _ := screen.GetContents()
	if len(contents[0].Runes) == 0 || contents[0].Runes[0] != 'K' {
		t.Fatalf("expected block name at origin, got %+v", contents[0])
	}
}

func TestDevice_ClosedBehavesLikeUnplugged(t *testing.T) {
	dev, _ := newTestDevice(t)
	dev.Close()

	err := dev.Flush()
	if err == nil {
		t.Fatalf("expected an error from a closed device")
	}
	if !device.IsExpectedShutdown(err) {
		t.Fatalf("closed device errors must classify as expected shutdown, got %v", err)
	}
	if _, err := dev.GetColors(0); err == nil {
		t.Fatalf("expected GetColors to fail on a closed device")
	}
	if err := dev.Resync(); err == nil {
		t.Fatalf("expected Resync to fail on a closed device")
	}
}
