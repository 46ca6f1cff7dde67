package unlock

import (
	"encoding/json"

	"valcal/internal/model"
)

// Set is a set of day numbers in 1..14. The zero value is empty.
type Set struct {
	bits uint16
}

// All returns {1..14}.
func All() Set {
	return Through(model.DayCount)
}

// Through returns {1..n}, clamped to 0..14.
func Through(n int) Set {
	if n <= 0 {
		return Set{}
	}
	if n > model.DayCount {
		n = model.DayCount
	}
	return Set{bits: uint16(1)<<n - 1}
}

// Of returns a set holding the given days; out-of-range days are ignored.
func Of(days ...int) Set {
	var s Set
	for _, d := range days {
		if d >= 1 && d <= model.DayCount {
			s.bits |= 1 << (d - 1)
		}
	}
	return s
}

func (s Set) Contains(day int) bool {
	if day < 1 || day > model.DayCount {
		return false
	}
	return s.bits&(1<<(day-1)) != 0
}

func (s Set) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Days returns the members in ascending order. It never returns nil.
func (s Set) Days() []int {
	out := make([]int, 0, model.DayCount)
	for d := 1; d <= model.DayCount; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// SubsetOf reports whether every member of s is in other.
func (s Set) SubsetOf(other Set) bool {
	return s.bits&^other.bits == 0
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}
