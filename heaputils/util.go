package heaputils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

// CheckPow2 returns a wrapped PowerOfTwoError when number is zero or has more
// than one bit set
func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a
// power of two
func AlignUp(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the previous multiple of alignment, which
// must be a power of two
func AlignDown(value, alignment int) int {
	return value &^ (alignment - 1)
}
