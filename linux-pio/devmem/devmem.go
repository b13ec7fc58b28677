// Package devmem maps physical register ranges into the process so they can
// be accessed without a kernel driver.
package devmem

// DefaultPath is the physical memory device
const DefaultPath = "/dev/mem"

// DevMem maps physical memory through /dev/mem. Opening the device normally
// requires root. Mapping is only implemented on Linux.
type DevMem struct {
	// Path overrides DefaultPath
	Path string
}

// pageSpan returns the page aligned start of the mapping needed to reach size
// bytes at base, the offset of base inside that mapping and the mapping
// length rounded up to whole pages.
func pageSpan(base uint64, size uint64, pageSize uint64) (pageBase uint64, offset uint64, length uint64) {
	pageMask := pageSize - 1

	pageBase = base &^ pageMask
	offset = base - pageBase
	length = (offset + size + pageMask) &^ pageMask

	return
}
