package devmemtest

import (
	"errors"
	"testing"

	"github.com/BertoldVdb/rk-vgpio/linux-pio/devmem"
)

func TestSharedStorage(t *testing.T) {
	m := New()

	r, err := m.Map(0xFF7F0000, devmem.ModeRead)
	if err != nil {
		t.Fatal(err)
	}
	w, err := m.Map(0xFF7F0000, devmem.ModeWrite)
	if err != nil {
		t.Fatal(err)
	}

	w.Store(1, 0x50)
	if r.Load(1) != 0x50 {
		t.Error("Read window does not see store")
	}
	if m.Peek(0xFF7F0004) != 0x50 {
		t.Error("Index not translated to address")
	}
	if m.Stores(0xFF7F0004) != 1 || m.Loads(0xFF7F0004) != 1 {
		t.Error("Counters wrong", m.Stores(0xFF7F0004), m.Loads(0xFF7F0004))
	}
	if m.Maps() != 2 {
		t.Error("Map count wrong", m.Maps())
	}

	m.ResetCounters()
	if m.TotalStores() != 0 || m.Peek(0xFF7F0004) != 0x50 {
		t.Error("ResetCounters changed memory or kept counts")
	}
}

func TestReadOnlyStorePanics(t *testing.T) {
	m := New()
	r, _ := m.Map(0x1000, devmem.ModeRead)

	defer func() {
		if recover() == nil {
			t.Error("Store through read window did not panic")
		}
	}()
	r.Store(0, 1)
}

func TestFailOnMap(t *testing.T) {
	m := New()
	m.FailOnMap = 2

	if _, err := m.Map(0x1000, devmem.ModeRead); err != nil {
		t.Fatal(err)
	}
	_, err := m.Map(0x1000, devmem.ModeWrite)
	if !errors.Is(err, ErrorInjected) {
		t.Error("Expected injected failure, got", err)
	}
	if m.Maps() != 1 {
		t.Error("Failed map counted")
	}
}
