// +build !linux

package devmem

import (
	"errors"
	"testing"
)

func TestMapUnsupported(t *testing.T) {
	d := &DevMem{}

	w, err := d.Map(0xFF7F0000, ModeRead)
	check(t, w == nil, "Window returned on failure")
	check(t, errors.Is(err, ErrorUnsupported), "Expected unsupported error, got", err)
}
