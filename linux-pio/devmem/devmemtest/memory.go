// Package devmemtest provides an instrumented in-memory replacement for
// /dev/mem that can be handed to anything expecting a devmem.Mapper.
package devmemtest

import (
	"errors"
	"fmt"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
)

// ErrorInjected is the cause of map failures requested with FailOnMap
var ErrorInjected = errors.New("Injected map failure")

// Memory is a sparse physical address space. Windows mapped at the same
// physical address share storage, so a value stored through a write window
// is visible through the matching read window.
type Memory struct {
	words  map[uint64]uint32
	stores map[uint64]int
	loads  map[uint64]int
	maps   int
	calls  int

	// FailOnMap makes the n-th call to Map (1 based) fail. Zero disables it.
	FailOnMap int
}

type window struct {
	mem  *Memory
	base uint64
	mode devmem.Mode
}

// New creates an empty address space
func New() *Memory {
	return &Memory{
		words:  make(map[uint64]uint32),
		stores: make(map[uint64]int),
		loads:  make(map[uint64]int),
	}
}

// Map implements devmem.Mapper
func (m *Memory) Map(base uint64, mode devmem.Mode) (devmem.Window, error) {
	m.calls++
	if m.FailOnMap > 0 && m.calls == m.FailOnMap {
		return nil, &devmem.MapError{Op: "mmap", Base: base, Err: ErrorInjected}
	}
	if base&3 != 0 {
		return nil, &devmem.MapError{Op: "align", Base: base, Err: errors.New("Address is not word aligned")}
	}

	m.maps++
	return &window{mem: m, base: base, mode: mode}, nil
}

func (w *window) addr(index int) uint64 {
	return w.base + uint64(index)*4
}

func (w *window) Load(index int) uint32 {
	a := w.addr(index)
	w.mem.loads[a]++
	return w.mem.words[a]
}

func (w *window) Store(index int, value uint32) {
	if w.mode != devmem.ModeWrite {
		panic(fmt.Sprintf("store through read-only window at 0x%x", w.addr(index)))
	}
	a := w.addr(index)
	w.mem.stores[a]++
	w.mem.words[a] = value
}

func (w *window) Base() uint64 {
	return w.base
}

func (w *window) Mode() devmem.Mode {
	return w.mode
}

// Maps returns the number of successful Map calls
func (m *Memory) Maps() int {
	return m.maps
}

// Peek reads a word without counting the access
func (m *Memory) Peek(addr uint64) uint32 {
	return m.words[addr]
}

// Poke writes a word without counting the access, e.g. to simulate an input
// pin changing.
func (m *Memory) Poke(addr uint64, value uint32) {
	m.words[addr] = value
}

// Stores returns how many times the word at addr was written through a window
func (m *Memory) Stores(addr uint64) int {
	return m.stores[addr]
}

// Loads returns how many times the word at addr was read through a window
func (m *Memory) Loads(addr uint64) int {
	return m.loads[addr]
}

// TotalStores returns the number of stores to any address
func (m *Memory) TotalStores() int {
	total := 0
	for _, n := range m.stores {
		total += n
	}
	return total
}

// ResetCounters clears the access counters but keeps the stored values
func (m *Memory) ResetCounters() {
	m.stores = make(map[uint64]int)
	m.loads = make(map[uint64]int)
}
