// +build !linux

package devmem

import "errors"

// ErrorUnsupported is the cause of every MapError on platforms without
// /dev/mem support.
var ErrorUnsupported = errors.New("Physical memory mapping is only supported on Linux")

func (d *DevMem) Map(base uint64, mode Mode) (Window, error) {
	return nil, &MapError{Op: "map", Base: base, Err: ErrorUnsupported}
}
