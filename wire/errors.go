package wire

import (
	"errors"
	"fmt"
)

// Sentinel failure kinds for the wire codec. ErrDriverRejected stands for
// capacity exhaustion: the driver declining a write, almost always
// because the underlying sink or forge is full. A decode call returns the
// first failure it meets while reading its input front to back, never
// more than one; a message's path and format are read and validated
// before the driver is asked to write anything.
var (
	ErrDriverRejected     = errors.New("wire: driver rejected write")
	ErrInvalidPath        = errors.New("wire: invalid path")
	ErrInvalidFormat      = errors.New("wire: invalid format")
	ErrTruncated          = errors.New("wire: truncated input")
	ErrBadBundleHeader    = errors.New("wire: bad bundle header")
	ErrMaxDepthExceeded   = errors.New("wire: maximum bundle nesting depth exceeded")
	ErrNegativeBlobLength = errors.New("wire: negative blob length")
)

// UnknownTagError reports a format-string byte that is not one of the
// thirteen recognized argument type tags.
type UnknownTagError struct {
	Tag byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("wire: unknown format tag %q", e.Tag)
}

// BadItemSizeError reports a bundle item whose declared size is
// negative or not a multiple of 4.
type BadItemSizeError struct {
	Size int32
}

func (e *BadItemSizeError) Error() string {
	return fmt.Sprintf("wire: bad bundle item size %d", e.Size)
}
