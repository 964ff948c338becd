// Package idgen mints the monotonically increasing ids shared by every
// mock, rule and recording collection.
package idgen

import "sync/atomic"

// Source hands out strictly increasing uint64 ids starting at 1.
type Source struct {
	counter atomic.Uint64
}

// Next returns the next id. Safe for concurrent use.
func (s *Source) Next() uint64 {
	return s.counter.Add(1)
}
