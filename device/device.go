// Package device defines the transport collaborator the render loop drives:
// key enumeration, color read/write, transactional commit, and recovery.
//
// A device is exclusively owned by whichever render loop is attached to it.
// No other goroutine may call color-mutating methods while a loop runs; this
// is a caller contract, not enforced here.
package device

import "time"

// KeyID identifies one key within its block's addressing namespace.
type KeyID uint8

// Block describes a contiguous group of keys sharing one addressing
// namespace, in the order the device reports them.
type Block struct {
	Name string
	Keys []KeyID
}

// Color is one device-visible key color. Devices have no alpha channel.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// ColorDirective queues one pending per-key color write.
type ColorDirective struct {
	ID    KeyID
	Red   uint8
	Green uint8
	Blue  uint8
}

// Device is the hardware transport surface consumed by the render loop.
// Block indices follow the order returned by Blocks, which must be stable
// for the lifetime of the device.
type Device interface {
	// Blocks returns the device's key blocks in enumeration order.
	Blocks() []Block

	// GetColors reads the current color of every key in a block, one entry
	// per key in block order.
	GetColors(block int) ([]Color, error)

	// SetColors queues color writes for one block. Directives are applied
	// on the next CommitColors.
	SetColors(block int, directives []ColorDirective) error

	// CommitColors flushes all queued writes as one transaction.
	CommitColors() error

	// Flush drains any stale inbound reports queued behind the caller's back.
	Flush() error

	// SetTimeout adjusts the transport's idle-timeout detection.
	// Zero disables it.
	SetTimeout(timeout time.Duration)

	// Resync attempts to restore a usable transport state after an error.
	// A nil return means the transport is usable again.
	Resync() error
}
