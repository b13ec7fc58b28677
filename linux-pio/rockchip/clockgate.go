package rockchip

import "github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"

// GatePattern builds a clock gate register value. The CRU only updates the
// bits whose write-enable bit in the upper half is set.
func GatePattern(mask uint16, value uint16) uint32 {
	return uint32(mask)<<16 | uint32(value)
}

// ClockGate controls the peripheral clock of the GPIO banks
type ClockGate struct {
	Address uint64

	read    devmem.Window
	write   devmem.Window
	pattern uint32
}

// Enable writes the enable pattern. The written state is not reliably
// observable later, so callers enable before every bank access instead of
// once at startup.
func (c *ClockGate) Enable() {
	c.write.Store(0, c.pattern)
}

// State reads back the gate register
func (c *ClockGate) State() uint32 {
	return c.read.Load(0)
}

func (c *ClockGate) Pattern() uint32 {
	return c.pattern
}
