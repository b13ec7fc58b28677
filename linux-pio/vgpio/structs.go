package vgpio

import "github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"

// Mask is a set of virtual lines, one bit per line
type Mask uint32

// Bit returns the mask with only bit n set
func Bit(n uint) Mask {
	return Mask(1) << n
}

// LineSpec binds a named virtual bit to a bank and physical bit
type LineSpec struct {
	Name        string
	VirtualBit  uint
	Bank        string
	PhysicalBit uint
}

// Wiring is the complete set of line bindings for one board variant
type Wiring struct {
	Name   string
	Target rockchip.Target
	Lines  []LineSpec
}

// Line is a resolved LineSpec
type Line struct {
	Name     string
	Virtual  Mask
	Physical uint32
	Bank     *rockchip.Bank

	slot int
}

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorUnknownWiring = Error("Unknown wiring")
	ErrorUnknownBank   = Error("Wiring refers to unknown bank")
	ErrorDuplicateBit  = Error("Virtual bit assigned twice")
	ErrorDuplicateName = Error("Line name used twice")
	ErrorBitRange      = Error("Bit number out of range")
	ErrorTargetWiring  = Error("Wiring does not belong to target")
)
