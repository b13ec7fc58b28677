package rockchip

import (
	"errors"
	"testing"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem/devmemtest"
)

func check(t *testing.T, condition bool, reason ...interface{}) {
	if !condition {
		t.Error(reason...)
		t.FailNow()
	}
}

func newTable(t *testing.T, target Target) (*Table, *devmemtest.Memory) {
	cfg, err := target.Config()
	check(t, err == nil, err)

	mem := devmemtest.New()
	table := NewTable(cfg, nil)
	check(t, table.Init(mem) == nil, "Init failed")

	return table, mem
}

func TestInitMapsEverything(t *testing.T) {
	table, mem := newTable(t, TargetRK3288)

	check(t, table.Initialized(), "Table not initialized")
	check(t, len(table.Banks()) == 9, "Wrong bank count", len(table.Banks()))
	check(t, mem.Maps() == 2*9+2, "Wrong number of mappings", mem.Maps())

	gpio8 := table.Bank("gpio8")
	check(t, gpio8 != nil && gpio8.Base == 0xFF7F0000, "gpio8 missing")
	check(t, gpio8.DirectionAddress() == 0xFF7F0004, "Direction offset wrong")
	check(t, table.Bank("gpio9") == nil, "Unknown bank returned")
}

func TestInitIdempotent(t *testing.T) {
	table, mem := newTable(t, TargetRK3288)
	before := mem.Maps()

	check(t, table.Init(mem) == nil, "Second Init failed")
	check(t, mem.Maps() == before, "Second Init mapped again", mem.Maps()-before)
}

func TestInitFailFast(t *testing.T) {
	cfg, _ := TargetRK3288.Config()

	for failAt := 1; failAt <= 20; failAt++ {
		mem := devmemtest.New()
		mem.FailOnMap = failAt

		table := NewTable(cfg, nil)
		err := table.Init(mem)

		var mapErr *devmem.MapError
		check(t, errors.As(err, &mapErr), "Expected MapError at", failAt, err)
		check(t, !table.Initialized(), "Partial table left at", failAt)
		check(t, len(table.Banks()) == 0 && table.Clock() == nil, "Partial state at", failAt)
		check(t, mem.Maps() == failAt-1, "Kept mapping after failure", failAt, mem.Maps())

		/* A later attempt can still succeed */
		mem.FailOnMap = 0
		check(t, table.Init(mem) == nil, "Retry failed")
		check(t, table.Initialized(), "Retry did not initialize")
	}
}

func TestClockGate(t *testing.T) {
	table, mem := newTable(t, TargetRK3288)
	clock := table.Clock()

	check(t, clock.Address == 0xFF760198, "Wrong clock gate address")
	check(t, clock.Pattern() == 0xFFFF0000, "Wrong pattern", clock.Pattern())

	clock.Enable()
	check(t, mem.Peek(0xFF760198) == 0xFFFF0000, "Pattern not written")
	check(t, clock.State() == 0xFFFF0000, "State does not read back")

	clock.Enable()
	check(t, mem.Stores(0xFF760198) == 2, "Enable must write every time")

	check(t, GatePattern(0x0010, 0x0000) == 0x00100000, "GatePattern wrong")
}

func TestBankReadModifyWrite(t *testing.T) {
	table, mem := newTable(t, TargetRK3288)
	bank := table.Bank("gpio7")

	mem.Poke(bank.DataAddress(), 0x0F)
	bank.WriteData(0x100, 0x01)
	check(t, bank.ReadData() == 0x10E, "WriteData wrong", bank.ReadData())
	check(t, mem.Stores(bank.DataAddress()) == 1, "More than one store")

	bank.WriteDirection(0x3, 0)
	check(t, bank.ReadDirection() == 0x3, "WriteDirection wrong")
	bank.WriteDirection(0, 0x1)
	check(t, bank.ReadDirection() == 0x2, "WriteDirection clear wrong")
	check(t, bank.ReadData() == 0x10E, "Direction write touched data")
}

func TestTargets(t *testing.T) {
	for _, name := range TargetNames() {
		target, err := ParseTarget(name)
		check(t, err == nil, "ParseTarget failed for", name)
		check(t, target.String() == name, "Name round trip failed", name)

		cfg, err := target.Config()
		check(t, err == nil && cfg.Name == name, "Config missing for", name)
	}

	target, err := ParseTarget(" RK3399 ")
	check(t, err == nil && target == TargetRK3399, "Case insensitive parse failed")

	_, err = ParseTarget("rk3588")
	check(t, err == ErrorUnknownTarget, "Unknown target accepted")

	_, err = Target(42).Config()
	check(t, err == ErrorUnknownTarget, "Unknown target config returned")

	rk3399, _ := TargetRK3399.Config()
	check(t, rk3399.ClockGateOffset == 0x037C, "RK3399 clock gate offset wrong")
}

func TestConfigIsCopy(t *testing.T) {
	a, _ := TargetRK3288.Config()
	a.Banks[0].Base = 0
	b, _ := TargetRK3288.Config()
	check(t, b.Banks[0].Base == 0xFF750000, "Config shares bank slice")
}
