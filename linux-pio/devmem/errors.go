package devmem

import "fmt"

// MapError is returned when a physical range could not be mapped
type MapError struct {
	Op   string
	Base uint64
	Err  error
}

func (e *MapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("devmem: %s 0x%x: %s", e.Op, e.Base, e.Err.Error())
	}
	return fmt.Sprintf("devmem: %s 0x%x", e.Op, e.Base)
}

func (e *MapError) Unwrap() error {
	return e.Err
}
