package util

// InPlaceFilter keeps the elements of s matching p and returns how many were
// dropped.
func InPlaceFilter[T any](s *[]T, p func(T) bool) int {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	dropped := len(*s) - i
	*s = (*s)[:i]

	return dropped
}
