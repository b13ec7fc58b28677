package rockchip

import "github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"

const dataIndex = 0

// Bank is one GPIO controller block. Reads go through the read-only window,
// writes are read-modify-write cycles on the write-only window.
type Bank struct {
	Name string
	Base uint64

	read  devmem.Window
	write devmem.Window

	directionIndex int
}

func (b *Bank) ReadData() uint32 {
	return b.read.Load(dataIndex)
}

func (b *Bank) ReadDirection() uint32 {
	return b.read.Load(b.directionIndex)
}

// WriteData sets and clears bits of the data register with a single store.
// A bit present in both masks ends up cleared.
func (b *Bank) WriteData(set uint32, clear uint32) {
	modify(b.write, dataIndex, set, clear)
}

// WriteDirection works like WriteData on the direction register. A set bit
// is an output.
func (b *Bank) WriteDirection(set uint32, clear uint32) {
	modify(b.write, b.directionIndex, set, clear)
}

// DataAddress is the physical address of the data register
func (b *Bank) DataAddress() uint64 {
	return b.Base
}

// DirectionAddress is the physical address of the direction register
func (b *Bank) DirectionAddress() uint64 {
	return b.Base + uint64(b.directionIndex)*4
}

func modify(w devmem.Window, index int, set uint32, clear uint32) {
	w.Store(index, (w.Load(index)|set)&^clear)
}
