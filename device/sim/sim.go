// Package sim provides an in-memory device for tests and demos. It records
// every transport call, applies queued writes on commit like real hardware,
// and can be scripted to fail specific operations.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/domrim/keyleds/device"
)

// Device implements device.Device entirely in memory.
type Device struct {
	mu       sync.Mutex
	blocks   []device.Block
	colors   [][]device.Color // committed state, one slice per block
	pending  []pendingWrite
	calls    []string
	failures map[string][]error
	commits  int
	resyncs  int
	timeout  time.Duration
}

type pendingWrite struct {
	block      int
	directives []device.ColorDirective
}

// New builds a device with one block per size, keys numbered from zero
// within each block.
func New(blockSizes ...int) *Device {
	blocks := make([]device.Block, 0, len(blockSizes))
	for i, n := range blockSizes {
		keys := make([]device.KeyID, n)
		for k := range keys {
			keys[k] = device.KeyID(k)
		}
		blocks = append(blocks, device.Block{
			Name: fmt.Sprintf("block%d", i),
			Keys: keys,
		})
	}
	return NewWithBlocks(blocks)
}

// NewWithBlocks builds a device with an explicit block layout.
func NewWithBlocks(blocks []device.Block) *Device {
	colors := make([][]device.Color, len(blocks))
	for i, block := range blocks {
		colors[i] = make([]device.Color, len(block.Keys))
	}
	return &Device{
		blocks:   blocks,
		colors:   colors,
		failures: make(map[string][]error),
	}
}

// FailNext scripts err to be returned by the next call of op. Repeated calls
// queue further failures for subsequent calls. Recognized ops: getColors,
// setColors, commitColors, flush, resync.
func (d *Device) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = append(d.failures[op], err)
}

func (d *Device) record(op string) error {
	d.calls = append(d.calls, op)
	if queue := d.failures[op]; len(queue) > 0 {
		err := queue[0]
		d.failures[op] = queue[1:]
		return err
	}
	return nil
}

// Blocks implements device.Device.
func (d *Device) Blocks() []device.Block {
	return d.blocks
}

// GetColors implements device.Device.
func (d *Device) GetColors(block int) ([]device.Color, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("getColors"); err != nil {
		return nil, err
	}
	out := make([]device.Color, len(d.colors[block]))
	copy(out, d.colors[block])
	return out, nil
}

// SetColors implements device.Device. Writes stay queued until CommitColors.
func (d *Device) SetColors(block int, directives []device.ColorDirective) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("setColors"); err != nil {
		return err
	}
	queued := make([]device.ColorDirective, len(directives))
	copy(queued, directives)
	d.pending = append(d.pending, pendingWrite{block: block, directives: queued})
	return nil
}

// CommitColors implements device.Device, applying all queued writes.
func (d *Device) CommitColors() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("commitColors"); err != nil {
		return err
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
					break
				}
			}
		}
	}
	d.pending = d.pending[:0]
	d.commits++
	return nil
}

// Flush implements device.Device.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("flush")
}

// SetTimeout implements device.Device.
func (d *Device) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "setTimeout")
	d.timeout = timeout
}

// Resync implements device.Device.
func (d *Device) Resync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resyncs++
	return d.record("resync")
}

// Calls returns the recorded call sequence.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallCount returns how many times op was recorded.
func (d *Device) CallCount(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, call := range d.calls {
		if call == op {
			count++
		}
	}
	return count
}

// Colors returns the committed colors of one block.
func (d *Device) Colors(block int) []device.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]device.Color, len(d.colors[block]))
	copy(out, d.colors[block])
	return out
}

// SetInitialColors seeds the committed state of one block, bypassing the
// queue. Useful for building a known baseline before a loop starts.
func (d *Device) SetInitialColors(block int, colors []device.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.colors[block], colors)
}

// Commits returns how many commit transactions completed.
func (d *Device) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Resyncs returns how many resync attempts were made.
func (d *Device) Resyncs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resyncs
}

// Timeout returns the last value passed to SetTimeout.
func (d *Device) Timeout() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeout
}
