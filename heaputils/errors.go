package heaputils

import "github.com/pkg/errors"

// PowerOfTwoError indicates that a size or alignment value which must be a
// power of two was not
var PowerOfTwoError error = errors.New("number must be a power of two")
