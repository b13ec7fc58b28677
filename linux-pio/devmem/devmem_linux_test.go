package devmem

import (
	"errors"
	"os"
	"testing"
)

func TestMapMissingDevice(t *testing.T) {
	d := &DevMem{Path: "/nonexistent/mem"}

	w, err := d.Map(0xFF7F0000, ModeRead)
	check(t, w == nil, "Window returned on failure")

	var mapErr *MapError
	check(t, errors.As(err, &mapErr), "Expected MapError, got", err)
	check(t, os.IsNotExist(errors.Unwrap(err)), "Cause not preserved", err)
}

func TestMapUnaligned(t *testing.T) {
	d := &DevMem{Path: "/nonexistent/mem"}

	_, err := d.Map(0xFF7F0002, ModeWrite)
	var mapErr *MapError
	check(t, errors.As(err, &mapErr) && mapErr.Op == "align", "Unaligned address accepted", err)
}
