// Package vgpio implements the flat virtual GPIO bit mask used by matrix
// drivers on top of banked Rockchip GPIO registers.
//
// A Controller is not safe for concurrent use. It is meant to be owned by
// the goroutine running the display refresh.
package vgpio

import (
	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/sirupsen/logrus"
)

// pending collects the changes for one bank until the next flush. Set and
// clear are tracked per bit so both polarities can be pending at once.
type pending struct {
	set   uint32
	clear uint32
	dirty bool
}

func (p *pending) add(bits uint32, clear bool) {
	if clear {
		p.clear |= bits
		p.set &^= bits
	} else {
		p.set |= bits
		p.clear &^= bits
	}
	p.dirty = true
}

// Controller gives access to the virtual lines of one wiring
type Controller struct {
	logger *logrus.Entry
	table  *rockchip.Table
	wiring *Wiring
	lines  *LineMap

	outputs  Mask
	inputs   Mask
	reserved Mask

	data      []pending
	direction []pending
	readCache []uint32
	readValid []bool

	memoValid bool
	memoMask  Mask
	memoClear bool
}

// NewController creates a controller. Init must be called before any line
// can be used.
func NewController(table *rockchip.Table, wiring *Wiring, logger *logrus.Entry) *Controller {
	return &Controller{
		logger: logrusconfig.Component(logger, "vgpio"),
		table:  table,
		wiring: wiring,
	}
}

// Open is a shortcut that looks up the target and wiring by name, maps the
// registers and returns an initialized controller.
func Open(target string, wiring string, mapper devmem.Mapper, logger *logrus.Entry) (*Controller, error) {
	t, err := rockchip.ParseTarget(target)
	if err != nil {
		return nil, err
	}

	cfg, err := t.Config()
	if err != nil {
		return nil, err
	}

	w, err := LookupWiring(t, wiring)
	if err != nil {
		return nil, err
	}

	c := NewController(rockchip.NewTable(cfg, logger), w, logger)
	if err := c.Init(mapper); err != nil {
		return nil, err
	}

	return c, nil
}

// Init maps all registers and resolves the wiring. Calling it again after
// it succeeded has no effect.
func (c *Controller) Init(mapper devmem.Mapper) error {
	if err := c.table.Init(mapper); err != nil {
		return err
	}
	if c.lines != nil {
		return nil
	}

	lines, err := NewLineMap(c.wiring, c.table)
	if err != nil {
		return err
	}

	n := len(c.table.Banks())
	c.data = make([]pending, n)
	c.direction = make([]pending, n)
	c.readCache = make([]uint32, n)
	c.readValid = make([]bool, n)
	c.lines = lines

	c.logger.WithFields(logrus.Fields{
		"target":      c.table.Config().Name,
		"wiring":      c.wiring.Name,
		"lines":       len(lines.lines),
		"fingerprint": lines.Fingerprint(),
	}).Info("GPIO mapping ready")

	return nil
}

func (c *Controller) Initialized() bool {
	return c.lines != nil
}

func (c *Controller) claimable(mask Mask) Mask {
	return mask &^ (c.outputs | c.inputs | c.reserved)
}

// InitOutputs switches the requested lines to output. Lines that are
// already claimed in any way are silently left out; the returned mask holds
// the lines that were actually granted.
func (c *Controller) InitOutputs(outputs Mask) Mask {
	if c.lines == nil {
		c.logger.Error("Attempt to init outputs but not yet initialized")
		return 0
	}

	outputs = c.claimable(outputs)
	c.program(outputs, true)
	c.outputs |= outputs

	return outputs
}

// RequestInputs switches the requested lines to input, with the same
// partial grant rules as InitOutputs.
func (c *Controller) RequestInputs(inputs Mask) Mask {
	if c.lines == nil {
		c.logger.Error("Attempt to init inputs but not yet initialized")
		return 0
	}

	inputs = c.claimable(inputs)
	c.program(inputs, false)
	c.inputs |= inputs

	return inputs
}

// Reserve keeps lines from being claimed later. It returns the lines that
// were free and are now reserved.
func (c *Controller) Reserve(mask Mask) Mask {
	mask = c.claimable(mask)
	c.reserved |= mask
	return mask
}

func (c *Controller) program(mask Mask, output bool) {
	if mask == 0 {
		return
	}

	c.table.Clock().Enable()

	for i := range c.lines.lines {
		l := &c.lines.lines[i]
		if l.Virtual&mask != 0 {
			c.direction[l.slot].add(l.Physical, !output)
		}
	}

	banks := c.table.Banks()
	for i := range c.direction {
		p := &c.direction[i]
		if p.dirty {
			banks[i].WriteDirection(p.set, p.clear)
			*p = pending{}
		}
	}
}

// ReadAll returns the level of every defined line. Each involved bank is
// read once.
func (c *Controller) ReadAll() Mask {
	if c.lines == nil {
		return 0
	}

	c.table.Clock().Enable()

	for i := range c.readValid {
		c.readValid[i] = false
	}

	var result Mask
	for i := range c.lines.lines {
		l := &c.lines.lines[i]
		if !c.readValid[l.slot] {
			c.readCache[l.slot] = l.Bank.ReadData()
			c.readValid[l.slot] = true
		}
		if c.readCache[l.slot]&l.Physical != 0 {
			result |= l.Virtual
		}
	}

	return result
}

// Read returns the level of the lines in mask
func (c *Controller) Read(mask Mask) Mask {
	return c.ReadAll() & mask
}

// SetBits drives the lines in mask high
func (c *Controller) SetBits(mask Mask) {
	c.write(mask, false)
}

// ClearBits drives the lines in mask low
func (c *Controller) ClearBits(mask Mask) {
	c.write(mask, true)
}

func (c *Controller) write(mask Mask, clear bool) {
	if c.lines == nil {
		return
	}

	/* The refresh loop asserts the same state over and over */
	if c.memoValid && c.memoMask == mask && c.memoClear == clear {
		return
	}
	c.memoValid = true
	c.memoMask = mask
	c.memoClear = clear

	c.table.Clock().Enable()
	c.stage(mask, clear)
	c.Flush()
}

func (c *Controller) stage(mask Mask, clear bool) {
	for i := range c.lines.lines {
		l := &c.lines.lines[i]
		if l.Virtual&mask != 0 {
			c.data[l.slot].add(l.Physical, clear)
		}
	}
}

// Flush writes the pending changes, one store per bank
func (c *Controller) Flush() {
	if c.lines == nil {
		return
	}

	banks := c.table.Banks()
	for i := range c.data {
		p := &c.data[i]
		if p.dirty {
			banks[i].WriteData(p.set, p.clear)
			*p = pending{}
		}
	}
}

func (c *Controller) Outputs() Mask {
	return c.outputs
}

func (c *Controller) Inputs() Mask {
	return c.inputs
}

func (c *Controller) Reserved() Mask {
	return c.reserved
}

// Lines returns the line map, nil before Init
func (c *Controller) Lines() *LineMap {
	return c.lines
}

// Line looks up a line by name
func (c *Controller) Line(name string) (Line, bool) {
	if c.lines == nil {
		return Line{}, false
	}
	return c.lines.Lookup(name)
}

func (c *Controller) Table() *rockchip.Table {
	return c.table
}
