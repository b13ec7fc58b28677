package pulsetiming

import (
	"fmt"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
)

// Counter is a free running microsecond counter. It wraps at 32 bits.
type Counter interface {
	Micros() uint32
}

// HardwareCounter reads a memory mapped 1MHz timer register
type HardwareCounter struct {
	window devmem.Window
}

// NewHardwareCounter maps the timer register at base. Only the read window
// is needed.
func NewHardwareCounter(mapper devmem.Mapper, base uint64) (*HardwareCounter, error) {
	w, err := mapper.Map(base, devmem.ModeRead)
	if err != nil {
		return nil, err
	}
	return &HardwareCounter{window: w}, nil
}

// CounterForTarget maps the timer of a target. It returns nil without an
// error when the target has no usable timer.
func CounterForTarget(mapper devmem.Mapper, cfg *rockchip.TargetConfig) (Counter, error) {
	if cfg.CounterBase == 0 {
		return nil, nil
	}

	c, err := NewHardwareCounter(mapper, cfg.CounterBase)
	if err != nil {
		return nil, fmt.Errorf("mapping counter of %s: %w", cfg.Name, err)
	}
	return c, nil
}

func (h *HardwareCounter) Micros() uint32 {
	return h.window.Load(0)
}

type monotonicCounter struct{}

// MonotonicCounter is the slow fallback when no timer register is mapped
var MonotonicCounter Counter = monotonicCounter{}
