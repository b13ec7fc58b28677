package devmem

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

func TestPageSpan(t *testing.T) {
	type spanCase struct {
		base     uint64
		pageBase uint64
		offset   uint64
		length   uint64
	}

	cases := []spanCase{
		{0xFF7F0000, 0xFF7F0000, 0, 4096},
		{0xFF760198, 0xFF760000, 0x198, 4096},
		{0xFF760FFC, 0xFF760000, 0xFFC, 4096},
		{0xFF760FFE, 0xFF760000, 0xFFE, 8192},
	}

	for _, c := range cases {
		pageBase, offset, length := pageSpan(c.base, 4, 4096)
		check(t, pageBase == c.pageBase, "Wrong page base for", c.base, pageBase)
		check(t, offset == c.offset, "Wrong offset for", c.base, offset)
		check(t, length == c.length, "Wrong length for", c.base, length)
	}
}

func TestMapErrorUnwrap(t *testing.T) {
	err := error(&MapError{Op: "open /dev/mem", Base: 0xFF760000, Err: os.ErrPermission})

	check(t, errors.Is(err, os.ErrPermission), "MapError does not unwrap")
	check(t, strings.Contains(err.Error(), "0xff760000"), "Address missing from message", err)

	var mapErr *MapError
	check(t, errors.As(err, &mapErr) && mapErr.Op == "open /dev/mem", "errors.As failed")
}

func TestModeString(t *testing.T) {
	check(t, ModeRead.String() == "read", ModeRead.String())
	check(t, ModeWrite.String() == "write", ModeWrite.String())
}
