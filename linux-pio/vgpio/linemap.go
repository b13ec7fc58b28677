package vgpio

import (
	"fmt"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
	"github.com/sigurn/crc8"
)

var crcTable = crc8.MakeTable(crc8.CRC8)

// LineMap translates virtual masks into bank/physical bit pairs
type LineMap struct {
	wiring  *Wiring
	lines   []Line
	byName  map[string]int
	defined Mask
}

// NewLineMap resolves the bank names of a wiring against a mapped table
func NewLineMap(w *Wiring, table *rockchip.Table) (*LineMap, error) {
	if !table.Initialized() {
		return nil, rockchip.ErrorNotInitialized
	}
	if table.Config().Name != w.Target.String() {
		return nil, fmt.Errorf("%w: %s is for %s, not %s", ErrorTargetWiring, w.Name, w.Target, table.Config().Name)
	}

	slots := make(map[*rockchip.Bank]int)
	for i, b := range table.Banks() {
		slots[b] = i
	}

	m := &LineMap{
		wiring: w,
		byName: make(map[string]int),
	}

	for _, spec := range w.Lines {
		if spec.VirtualBit >= 32 || spec.PhysicalBit >= 32 {
			return nil, fmt.Errorf("%w: line %s", ErrorBitRange, spec.Name)
		}

		bank := table.Bank(spec.Bank)
		if bank == nil {
			return nil, fmt.Errorf("%w: line %s, bank %s", ErrorUnknownBank, spec.Name, spec.Bank)
		}

		virtual := Bit(spec.VirtualBit)
		if m.defined&virtual != 0 {
			return nil, fmt.Errorf("%w: line %s, bit %d", ErrorDuplicateBit, spec.Name, spec.VirtualBit)
		}
		if _, ok := m.byName[spec.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrorDuplicateName, spec.Name)
		}

		m.byName[spec.Name] = len(m.lines)
		m.defined |= virtual
		m.lines = append(m.lines, Line{
			Name:     spec.Name,
			Virtual:  virtual,
			Physical: uint32(1) << spec.PhysicalBit,
			Bank:     bank,
			slot:     slots[bank],
		})
	}

	return m, nil
}

// Resolve returns the lines selected by mask. Bits without a line are
// ignored.
func (m *LineMap) Resolve(mask Mask) []Line {
	var result []Line
	for _, l := range m.lines {
		if l.Virtual&mask != 0 {
			result = append(result, l)
		}
	}
	return result
}

// Defined returns the union of all virtual bits in the map
func (m *LineMap) Defined() Mask {
	return m.defined
}

func (m *LineMap) Lookup(name string) (Line, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Line{}, false
	}
	return m.lines[i], true
}

// Lines returns all lines in wiring order
func (m *LineMap) Lines() []Line {
	result := make([]Line, len(m.lines))
	copy(result, m.lines)
	return result
}

func (m *LineMap) Wiring() *Wiring {
	return m.wiring
}

// Fingerprint is a CRC-8 over the bindings, so two builds can be compared
// by looking at the startup log.
func (m *LineMap) Fingerprint() uint8 {
	var buf []byte
	for _, l := range m.lines {
		buf = append(buf, l.Name...)
		buf = append(buf, 0)
		buf = append(buf, l.Bank.Name...)
		buf = append(buf, 0)
		buf = append(buf,
			byte(l.Virtual), byte(l.Virtual>>8), byte(l.Virtual>>16), byte(l.Virtual>>24),
			byte(l.Physical), byte(l.Physical>>8), byte(l.Physical>>16), byte(l.Physical>>24))
	}
	return crc8.Checksum(buf, crcTable)
}
