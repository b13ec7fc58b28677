package devmem

// Mode selects the protection of a mapping. The physical memory device only
// grants one of them per mapping on the targets we care about, so registers
// that are both read and written get two windows.
type Mode int

const (
	ModeRead  Mode = 0
	ModeWrite Mode = 1
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// Window gives word indexed access to a mapped physical range. Index 0 is the
// 32 bit word at the physical address that was requested, not the start of
// the page. Every access is a real load or store on the bus.
type Window interface {
	Load(index int) uint32
	Store(index int, value uint32)

	// Base returns the physical address of index 0
	Base() uint64
	Mode() Mode
}

// Mapper creates windows on physical memory
type Mapper interface {
	Map(base uint64, mode Mode) (Window, error)
}
