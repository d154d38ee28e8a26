package core

// Strategy is one step of an ordered detection chain. It returns false to
// let the next strategy try.
type Strategy[T any] func() (T, bool)

// FirstResolved evaluates strategies in order and returns the first result
// that resolved. The zero value and false are returned when none did.
func FirstResolved[T any](strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
