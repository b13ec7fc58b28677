package rockchip

import (
	"sort"
	"strings"
)

// Target identifies a supported chip variant
type Target int

const (
	TargetRK3288 Target = iota
	TargetRK3399
)

// BankConfig describes one GPIO controller block
type BankConfig struct {
	Name string
	Base uint64
}

// TargetConfig holds the physical constants of a chip. They are the wire
// contract with the hardware and are never discovered at runtime.
type TargetConfig struct {
	Name string

	// Clock controller and the register gating the GPIO peripheral clocks
	ClockBase       uint64
	ClockGateOffset uint64
	// Upper half of the gate register selects which gate bits are written,
	// lower half holds their value (0 = clock running).
	ClockGateMask  uint16
	ClockGateValue uint16

	// Byte offset from a bank base to its direction register. The data
	// register is at offset 0.
	DirectionOffset uint64

	// Physical address of a free running 1MHz counter, 0 if the chip has
	// none we can use.
	CounterBase uint64

	Banks []BankConfig
}

var targetNames = map[Target]string{
	TargetRK3288: "rk3288",
	TargetRK3399: "rk3399",
}

var targetConfigs = map[Target]TargetConfig{
	TargetRK3288: {
		Name:            "rk3288",
		ClockBase:       0xFF760000,
		ClockGateOffset: 0x0198,
		ClockGateMask:   0xFFFF,
		ClockGateValue:  0x0000,
		DirectionOffset: 4,
		Banks: []BankConfig{
			{Name: "gpio0", Base: 0xFF750000},
			{Name: "gpio1", Base: 0xFF780000},
			{Name: "gpio2", Base: 0xFF790000},
			{Name: "gpio3", Base: 0xFF7A0000},
			{Name: "gpio4", Base: 0xFF7B0000},
			{Name: "gpio5", Base: 0xFF7C0000},
			{Name: "gpio6", Base: 0xFF7D0000},
			{Name: "gpio7", Base: 0xFF7E0000},
			{Name: "gpio8", Base: 0xFF7F0000},
		},
	},
	TargetRK3399: {
		Name:            "rk3399",
		ClockBase:       0xFF760000,
		ClockGateOffset: 0x037C,
		ClockGateMask:   0xFFFF,
		ClockGateValue:  0x0000,
		DirectionOffset: 4,
		Banks: []BankConfig{
			{Name: "gpio0", Base: 0xFF720000},
			{Name: "gpio1", Base: 0xFF730000},
			{Name: "gpio2", Base: 0xFF780000},
			{Name: "gpio3", Base: 0xFF788000},
			{Name: "gpio4", Base: 0xFF790000},
		},
	},
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return "unknown"
}

// Config returns a copy of the constants for the target
func (t Target) Config() (*TargetConfig, error) {
	cfg, ok := targetConfigs[t]
	if !ok {
		return nil, ErrorUnknownTarget
	}

	banks := make([]BankConfig, len(cfg.Banks))
	copy(banks, cfg.Banks)
	cfg.Banks = banks

	return &cfg, nil
}

// ParseTarget looks up a target by name, e.g. "rk3288"
func ParseTarget(name string) (Target, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range targetNames {
		if n == name {
			return t, nil
		}
	}
	return 0, ErrorUnknownTarget
}

// TargetNames lists the names accepted by ParseTarget
func TargetNames() []string {
	var names []string
	for _, n := range targetNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
