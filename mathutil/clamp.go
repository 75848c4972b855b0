package mathutil

import (
	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
