package render

import "unsafe"

// RGBAColor is one render-side color cell. Alpha is a composition-only
// channel: it weighs blends between targets and never reaches the device.
// Compared by exact field equality.
type RGBAColor struct {
	Red   uint8
	Green uint8
	Blue  uint8
	Alpha uint8
}

// The target's alignment math and the raw blend loop assume exactly four
// bytes per cell with no padding.
var _ [4]byte = [unsafe.Sizeof(RGBAColor{})]byte{}
