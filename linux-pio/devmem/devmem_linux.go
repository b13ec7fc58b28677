package devmem

import (
	"errors"
	"os"
	"reflect"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

type mappedWindow struct {
	mem  []byte
	regs []uint32
	base uint64
	mode Mode
}

func (w *mappedWindow) Load(index int) uint32 {
	return atomic.LoadUint32(&w.regs[index])
}

func (w *mappedWindow) Store(index int, value uint32) {
	atomic.StoreUint32(&w.regs[index], value)
}

func (w *mappedWindow) Base() uint64 {
	return w.base
}

func (w *mappedWindow) Mode() Mode {
	return w.mode
}

// Map maps the pages containing the register at base. The descriptor is
// closed again before returning; the mapping stays valid for the lifetime
// of the process.
func (d *DevMem) Map(base uint64, mode Mode) (Window, error) {
	if base&3 != 0 {
		return nil, &MapError{Op: "align", Base: base, Err: errors.New("Address is not word aligned")}
	}

	path := d.Path
	if path == "" {
		path = DefaultPath
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, &MapError{Op: "open " + path, Base: base, Err: err}
	}
	defer file.Close()

	pageBase, offset, length := pageSpan(base, 4, uint64(os.Getpagesize()))

	prot := unix.PROT_READ
	if mode == ModeWrite {
		prot = unix.PROT_WRITE
	}

	mem, err := unix.Mmap(int(file.Fd()), int64(pageBase), int(length), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, &MapError{Op: "mmap", Base: base, Err: err}
	}

	var words []uint32
	header := (*reflect.SliceHeader)(unsafe.Pointer(&words))
	header.Data = uintptr(unsafe.Pointer(&mem[0]))
	header.Len = len(mem) / 4
	header.Cap = cap(mem) / 4

	return &mappedWindow{
		mem:  mem,
		regs: words[offset/4:],
		base: base,
		mode: mode,
	}, nil
}
