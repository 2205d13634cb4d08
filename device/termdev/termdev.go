// Package termdev implements device.Device on a terminal. Each key block is
// drawn as one row of colored cells with key captions, so a render loop can
// be observed without hardware. Closing the device makes further transport
// calls fail the same way an unplugged keyboard does.
package termdev

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sys/unix"

	"github.com/domrim/keyleds/device"
)

// DefaultCellWidth is the column count one key occupies on screen.
const DefaultCellWidth = 5

// BlockLayout describes one key block to visualize. Every caption becomes
// one key.
type BlockLayout struct {
	Name string
	Keys []string
}

// Config configures a terminal device.
type Config struct {
	Blocks []BlockLayout
	// Screen is the tcell screen to draw on. Nil selects the process
	// terminal. The device initializes and finalizes the screen it is given.
	Screen tcell.Screen
	// CellWidth is the column count per key. Zero selects DefaultCellWidth.
	CellWidth int
}

type pendingWrite struct {
	block      int
	directives []device.ColorDirective
}

// Device implements device.Device on a tcell screen.
type Device struct {
	mu        sync.Mutex
	screen    tcell.Screen
	blocks    []device.Block
	captions  [][]string
	colors    [][]device.Color
	pending   []pendingWrite
	cellWidth int
	gutter    int
	closed    bool
}

// New builds and initializes a terminal device. The caller must Close it to
// restore the terminal.
func New(cfg Config) (*Device, error) {
	if len(cfg.Blocks) == 0 {
		return nil, fmt.Errorf("termdev: at least one block is required")
	}
	screen := cfg.Screen
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("termdev: create screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("termdev: init screen: %w", err)
	}

	cellWidth := cfg.CellWidth
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}

	d := &Device{
		screen:    screen,
		cellWidth: cellWidth,
	}
	for _, layout := range cfg.Blocks {
		keys := make([]device.KeyID, len(layout.Keys))
		for k := range keys {
			keys[k] = device.KeyID(k)
		}
		d.blocks = append(d.blocks, device.Block{Name: layout.Name, Keys: keys})
		d.captions = append(d.captions, layout.Keys)
		d.colors = append(d.colors, make([]device.Color, len(layout.Keys)))
		d.gutter = max(d.gutter, runewidth.StringWidth(layout.Name)+1)
	}

	d.drawAll()
	return d, nil
}

// Screen returns the underlying tcell screen, e.g. for event polling.
func (d *Device) Screen() tcell.Screen {
	return d.screen
}

// Close finalizes the screen and marks the device gone: subsequent
// transport calls fail like an unplugged device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.screen.Fini()
}

func (d *Device) vanished(op string) error {
	return &device.Error{Op: op, Code: device.CodeErrno, Errno: unix.ENODEV}
}

// Blocks implements device.Device.
func (d *Device) Blocks() []device.Block {
	return d.blocks
}

// GetColors implements device.Device.
func (d *Device) GetColors(block int) ([]device.Color, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, d.vanished("getColors")
	}
	out := make([]device.Color, len(d.colors[block]))
	copy(out, d.colors[block])
	return out, nil
}

// SetColors implements device.Device. Writes are drawn on CommitColors.
func (d *Device) SetColors(block int, directives []device.ColorDirective) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.vanished("setColors")
	}
	queued := make([]device.ColorDirective, len(directives))
	copy(queued, directives)
	d.pending = append(d.pending, pendingWrite{block: block, directives: queued})
	return nil
}

// CommitColors implements device.Device, drawing all queued writes and
// presenting the screen in one step.
func (d *Device) CommitColors() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.vanished("commitColors")
	}
	for _, write := range d.pending {
		keys := d.blocks[write.block].Keys
		for _, directive := range write.directives {
			for idx, id := range keys {
				if id == directive.ID {
					d.colors[write.block][idx] = device.Color{
						Red:   directive.Red,
						Green: directive.Green,
						Blue:  directive.Blue,
					}
					d.drawKey(write.block, idx)
					break
				}
			}
		}
	}
	d.pending = d.pending[:0]
	d.screen.Show()
	return nil
}

// Flush implements device.Device. Terminals queue no inbound reports the
// loop could trip over, so this only has to succeed.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.vanished("flush")
	}
	return nil
}

// SetTimeout implements device.Device. Terminals have no idle detection.
func (d *Device) SetTimeout(time.Duration) {}

// Resync implements device.Device by redrawing the full state.
func (d *Device) Resync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.vanished("resync")
	}
	d.drawAllLocked()
	d.screen.Sync()
	return nil
}

func (d *Device) drawAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawAllLocked()
	d.screen.Show()
}

func (d *Device) drawAllLocked() {
	nameStyle := tcell.StyleDefault.Bold(true)
	for block := range d.blocks {
		drawString(d.screen, 0, block, d.blocks[block].Name, nameStyle)
		for idx := range d.blocks[block].Keys {
			d.drawKey(block, idx)
		}
	}
}

// drawKey paints one key cell: caption on a background of the key's color,
// with the foreground flipped for contrast.
func (d *Device) drawKey(block, idx int) {
	color := d.colors[block][idx]
	bg := tcell.NewRGBColor(int32(color.Red), int32(color.Green), int32(color.Blue))
	fg := tcell.ColorWhite
	if luminance(color) > 128 {
		fg = tcell.ColorBlack
	}
	style := tcell.StyleDefault.Background(bg).Foreground(fg)

	caption := runewidth.FillRight(runewidth.Truncate(d.captions[block][idx], d.cellWidth, ""), d.cellWidth)
	drawString(d.screen, d.gutter+idx*d.cellWidth, block, caption, style)
}

func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func luminance(c device.Color) int {
	return (299*int(c.Red) + 587*int(c.Green) + 114*int(c.Blue)) / 1000
}
