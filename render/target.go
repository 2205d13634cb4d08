package render

import (
	"fmt"
	"unsafe"
)

const (
	// alignBytes matches the widest vectorized blend the cells feed.
	alignBytes = 32
	alignCells = alignBytes / int(unsafe.Sizeof(RGBAColor{}))
)

// RenderTarget holds RGBA cells for every key of a device in a single
// contiguous allocation. Blocks are laid out back to back with padding cells
// in between so each block starts on a 32-byte boundary. Cells are addressed
// by (block index, key index); padding cells are never addressable through a
// valid pair.
//
// Block count and sizes are fixed at construction; a target never grows. Two
// targets built from the same block-size sequence are structurally
// compatible: they may be blended and swapped.
type RenderTarget struct {
	cells  []RGBAColor   // aligned view over the backing array, padding included
	blocks [][]RGBAColor // full-slice-expression views, one per block
}

// NewRenderTarget builds a target for the given per-block key counts.
// Exactly one allocation happens here; none afterwards.
func NewRenderTarget(blockSizes []int) (*RenderTarget, error) {
	if len(blockSizes) == 0 {
		return nil, fmt.Errorf("render: target needs at least one block")
	}

	total := 0
	for i, n := range blockSizes {
		if n <= 0 {
			return nil, fmt.Errorf("render: block %d has invalid size %d", i, n)
		}
		total = alignUp(total+n, alignCells)
	}

	// Over-allocate by one alignment unit, then slide the view forward so
	// the first cell sits on an alignBytes boundary. The byte remainder is
	// a whole number of cells only because Go's allocator aligns heap
	// slices to at least 8 bytes, which the alignment test pins down.
	backing := make([]RGBAColor, total+alignCells)
	shift := 0
	if rem := uintptr(unsafe.Pointer(unsafe.SliceData(backing))) % alignBytes; rem != 0 {
		shift = int((alignBytes - rem) / unsafe.Sizeof(RGBAColor{}))
	}
	cells := backing[shift : shift+total : shift+total]

	target := &RenderTarget{
		cells:  cells,
		blocks: make([][]RGBAColor, 0, len(blockSizes)),
	}
	offset := 0
	for _, n := range blockSizes {
		target.blocks = append(target.blocks, cells[offset:offset+n:offset+n])
		offset = alignUp(offset+n, alignCells)
	}
	return target, nil
}

func alignUp(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}

// Size returns the total cell count, padding included.
func (t *RenderTarget) Size() int {
	return len(t.cells)
}

// Blocks returns the number of key blocks.
func (t *RenderTarget) Blocks() int {
	return len(t.blocks)
}

// BlockSize returns the key count of one block.
func (t *RenderTarget) BlockSize(block int) int {
	return len(t.blocks[block])
}

// Get returns the cell at (block, key). Out-of-range indices are a caller
// defect and panic.
func (t *RenderTarget) Get(block, key int) RGBAColor {
	return t.blocks[block][key]
}

// Set overwrites the cell at (block, key). Out-of-range indices are a caller
// defect and panic.
func (t *RenderTarget) Set(block, key int, c RGBAColor) {
	t.blocks[block][key] = c
}

// At returns a pointer to the cell at (block, key) for in-place mutation.
func (t *RenderTarget) At(block, key int) *RGBAColor {
	return &t.blocks[block][key]
}

// Fill paints every cell of every block with c.
func (t *RenderTarget) Fill(c RGBAColor) {
	for i := range t.cells {
		t.cells[i] = c
	}
}

// FillBlock paints every cell of one block with c.
func (t *RenderTarget) FillBlock(block int, c RGBAColor) {
	cells := t.blocks[block]
	for i := range cells {
		cells[i] = c
	}
}

// Swap exchanges the backing storage and block layout of two targets in
// O(1). No cells are copied.
func Swap(a, b *RenderTarget) {
	a.cells, b.cells = b.cells, a.cells
	a.blocks, b.blocks = b.blocks, a.blocks
}

// Blend combines src into dst cell by cell, weighting src by its own alpha:
// each channel becomes dst + (src-dst)*alpha/256, with alpha 255 mapping to
// exactly src and alpha 0 leaving dst untouched. The rule is defined from
// exactly the two input cells, so identical inputs are a no-op.
//
// Both targets must be structurally compatible; mismatched sizes are a
// caller defect and panic.
func Blend(dst, src *RenderTarget) {
	if len(dst.cells) != len(src.cells) {
		panic(fmt.Sprintf("render: blend size mismatch: %d != %d", len(dst.cells), len(src.cells)))
	}
	for i := range dst.cells {
		s := src.cells[i]
		alpha := uint16(s.Alpha)
		alpha += alpha >> 7 // map 255 to 256 so full alpha is exact
		d := &dst.cells[i]
		d.Red = uint8((uint16(d.Red)*(256-alpha) + uint16(s.Red)*alpha) >> 8)
		d.Green = uint8((uint16(d.Green)*(256-alpha) + uint16(s.Green)*alpha) >> 8)
		d.Blue = uint8((uint16(d.Blue)*(256-alpha) + uint16(s.Blue)*alpha) >> 8)
		d.Alpha = uint8((uint16(d.Alpha)*(256-alpha) + uint16(s.Alpha)*alpha) >> 8)
	}
}
