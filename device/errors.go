package device

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrorCode classifies transport failures.
type ErrorCode int

const (
	// CodeOther covers faults with no more specific classification.
	CodeOther ErrorCode = iota
	// CodeErrno marks faults backed by an OS error number.
	CodeErrno
	// CodeTimedOut marks transport operations that exceeded their deadline.
	CodeTimedOut
)

// Error is a transport failure surfaced by a Device. Errno is only
// meaningful when Code is CodeErrno.
type Error struct {
	Op    string
	Code  ErrorCode
	Errno syscall.Errno
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Code == CodeErrno:
		return fmt.Sprintf("device: %s: %s", e.Op, e.Errno.Error())
	case e.Err != nil:
		return fmt.Sprintf("device: %s: %s", e.Op, e.Err.Error())
	case e.Code == CodeTimedOut:
		return fmt.Sprintf("device: %s: timed out", e.Op)
	}
	return fmt.Sprintf("device: %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Code == CodeErrno {
		return e.Errno
	}
	return nil
}

// IsExpectedShutdown reports whether err is the normal unplug or idle
// termination path: the device node vanished or the transport timed out.
// Such errors end a render loop silently.
func IsExpectedShutdown(err error) bool {
	var derr *Error
	if !errors.As(err, &derr) {
		return false
	}
	switch derr.Code {
	case CodeTimedOut:
		return true
	case CodeErrno:
		return derr.Errno == unix.ENODEV || derr.Errno == unix.ETIMEDOUT
	}
	return false
}
