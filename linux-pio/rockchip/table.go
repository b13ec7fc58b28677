// Package rockchip describes the GPIO banks and the GPIO clock gate of
// Rockchip SoCs and maps their registers.
package rockchip

import (
	"fmt"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
	"github.com/BertoldVdb/rk-vgpio/logrusconfig"
	"github.com/sirupsen/logrus"
)

// Table owns the register windows of all banks of one target
type Table struct {
	config *TargetConfig
	logger *logrus.Entry

	banks  []*Bank
	byName map[string]*Bank
	clock  *ClockGate
}

// NewTable creates an unmapped table. Call Init before using it.
func NewTable(config *TargetConfig, logger *logrus.Entry) *Table {
	return &Table{
		config: config,
		logger: logrusconfig.Component(logger, "rockchip"),
	}
}

func mapPair(mapper devmem.Mapper, base uint64) (devmem.Window, devmem.Window, error) {
	read, err := mapper.Map(base, devmem.ModeRead)
	if err != nil {
		return nil, nil, err
	}

	write, err := mapper.Map(base, devmem.ModeWrite)
	if err != nil {
		return nil, nil, err
	}

	return read, write, nil
}

// Init maps the clock gate register and every bank. It stops at the first
// failure and leaves the table empty. Calling it on a populated table does
// nothing.
func (t *Table) Init(mapper devmem.Mapper) error {
	if t.Initialized() {
		return nil
	}

	cfg := t.config
	clockAddr := cfg.ClockBase + cfg.ClockGateOffset

	read, write, err := mapPair(mapper, clockAddr)
	if err != nil {
		t.logger.WithError(err).Error("Failed to map clock gate register")
		return fmt.Errorf("mapping clock gate of %s: %w", cfg.Name, err)
	}

	clock := &ClockGate{
		Address: clockAddr,
		read:    read,
		write:   write,
		pattern: GatePattern(cfg.ClockGateMask, cfg.ClockGateValue),
	}

	banks := make([]*Bank, 0, len(cfg.Banks))
	byName := make(map[string]*Bank)

	for _, bc := range cfg.Banks {
		read, write, err := mapPair(mapper, bc.Base)
		if err != nil {
			t.logger.WithError(err).WithField("bank", bc.Name).Error("Failed to map bank")
			return fmt.Errorf("mapping %s of %s: %w", bc.Name, cfg.Name, err)
		}

		bank := &Bank{
			Name:           bc.Name,
			Base:           bc.Base,
			read:           read,
			write:          write,
			directionIndex: int(cfg.DirectionOffset / 4),
		}
		banks = append(banks, bank)
		byName[bank.Name] = bank
	}

	t.clock = clock
	t.banks = banks
	t.byName = byName

	t.logger.WithField("banks", len(banks)).Debugf("Mapped %s registers", cfg.Name)

	return nil
}

func (t *Table) Initialized() bool {
	return t.clock != nil
}

func (t *Table) Config() *TargetConfig {
	return t.config
}

// Banks returns the banks in table order
func (t *Table) Banks() []*Bank {
	return t.banks
}

// Bank returns the bank with the given name, or nil
func (t *Table) Bank(name string) *Bank {
	return t.byName[name]
}

func (t *Table) Clock() *ClockGate {
	return t.clock
}
