package core

// RandomSource draws uniformly distributed integers
type RandomSource interface {
	// Int63n returns a value in [0, n). It panics if n <= 0.
	Int63n(n int64) int64
}
