// Package pinpulser drives timed pulses on a set of virtual lines, e.g. the
// output enable line of a matrix panel for each bit plane.
package pinpulser

import (
	"github.com/BertoldVdb/rk-vgpio/linux-pio/vgpio"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/sirupsen/logrus"
)

// IO is the part of the GPIO controller a pulser needs
type IO interface {
	SetBits(mask vgpio.Mask)
	ClearBits(mask vgpio.Mask)
}

// Timer waits for a number of nanoseconds
type Timer interface {
	SleepNanos(nanos int64)
	HasCounter() bool
}

// Options change how pulses are emitted
type Options struct {
	// Inverted drives the lines high during the pulse instead of low
	Inverted bool
}

// PinPulser emits pulses with one of a fixed list of durations
type PinPulser struct {
	io     IO
	mask   vgpio.Mask
	specs  []int64
	timer  Timer
	logger *logrus.Entry

	inverted bool
}

// New creates a pulser. specs are the pulse lengths in nanoseconds,
// addressed by index in SendPulse.
func New(io IO, mask vgpio.Mask, specs []int64, timer Timer, opts *Options, logger *logrus.Entry) (*PinPulser, error) {
	if len(specs) == 0 {
		return nil, ErrorNoSpecs
	}
	for _, s := range specs {
		if s < 0 {
			return nil, ErrorNegativeSpec
		}
	}

	p := &PinPulser{
		io:     io,
		mask:   mask,
		specs:  append([]int64(nil), specs...),
		timer:  timer,
		logger: logrusconfig.Component(logger, "pulser"),
	}
	if opts != nil {
		p.inverted = opts.Inverted
	}

	if !timer.HasCounter() {
		p.logger.Warn("No hardware timer available, pulse timing is approximate. Expect color degradation unless running as root on a real-time kernel")
	}

	return p, nil
}

// SendPulse drives the lines active, waits specs[index] and releases them.
// An index outside the spec list is ignored.
func (p *PinPulser) SendPulse(index int) {
	if index < 0 || index >= len(p.specs) {
		return
	}

	if p.inverted {
		p.io.SetBits(p.mask)
		p.timer.SleepNanos(p.specs[index])
		p.io.ClearBits(p.mask)
		return
	}

	p.io.ClearBits(p.mask)
	p.timer.SleepNanos(p.specs[index])
	p.io.SetBits(p.mask)
}

// Specs returns the configured pulse lengths
func (p *PinPulser) Specs() []int64 {
	return append([]int64(nil), p.specs...)
}

func (p *PinPulser) Mask() vgpio.Mask {
	return p.mask
}
