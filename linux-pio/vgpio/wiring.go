package vgpio

import (
	"sort"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/rockchip"
)

// Names of the matrix control lines
const (
	LineOutputEnable = "output_enable"
	LineClock        = "clock"
	LineStrobe       = "strobe"

	LineA = "a"
	LineB = "b"
	LineC = "c"
	LineD = "d"
	LineE = "e"

	LineR1 = "p0_r1"
	LineG1 = "p0_g1"
	LineB1 = "p0_b1"
	LineR2 = "p0_r2"
	LineG2 = "p0_g2"
	LineB2 = "p0_b2"
)

// WiringRegular is the adapter board that routes the Raspberry Pi header
// signals of a standard HUB75 hat to an RK3288 board.
var WiringRegular = Wiring{
	Name:   "regular",
	Target: rockchip.TargetRK3288,
	Lines: []LineSpec{
		{Name: LineOutputEnable, VirtualBit: 18, Bank: "gpio8", PhysicalBit: 4},
		{Name: LineClock, VirtualBit: 17, Bank: "gpio8", PhysicalBit: 6},
		{Name: LineStrobe, VirtualBit: 4, Bank: "gpio8", PhysicalBit: 5},

		{Name: LineA, VirtualBit: 22, Bank: "gpio5", PhysicalBit: 8},
		{Name: LineB, VirtualBit: 23, Bank: "gpio5", PhysicalBit: 9},
		{Name: LineC, VirtualBit: 24, Bank: "gpio8", PhysicalBit: 7},
		{Name: LineD, VirtualBit: 25, Bank: "gpio8", PhysicalBit: 8},
		{Name: LineE, VirtualBit: 15, Bank: "gpio8", PhysicalBit: 9},

		{Name: LineR1, VirtualBit: 11, Bank: "gpio7", PhysicalBit: 6},
		{Name: LineG1, VirtualBit: 27, Bank: "gpio7", PhysicalBit: 5},
		{Name: LineB1, VirtualBit: 7, Bank: "gpio7", PhysicalBit: 18},
		{Name: LineR2, VirtualBit: 8, Bank: "gpio7", PhysicalBit: 17},
		{Name: LineG2, VirtualBit: 9, Bank: "gpio7", PhysicalBit: 2},
		{Name: LineB2, VirtualBit: 10, Bank: "gpio7", PhysicalBit: 0},
	},
}

var wirings = []*Wiring{
	&WiringRegular,
}

// LookupWiring finds a compiled-in wiring for the target
func LookupWiring(target rockchip.Target, name string) (*Wiring, error) {
	for _, w := range wirings {
		if w.Target == target && w.Name == name {
			return w, nil
		}
	}
	return nil, ErrorUnknownWiring
}

// WiringNames lists the wirings available for a target
func WiringNames(target rockchip.Target) []string {
	var names []string
	for _, w := range wirings {
		if w.Target == target {
			names = append(names, w.Name)
		}
	}
	sort.Strings(names)
	return names
}
