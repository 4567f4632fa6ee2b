package atom

import (
	"errors"
	"math"
)

// ErrTruncated is returned when a buffer ends before a complete atom (or
// atom header) can be read from it.
var ErrTruncated = errors.New("atom: truncated buffer")

// Header is a decoded atom size+type pair.
type Header struct {
	Size uint32
	Type uint32
}

// ReadHeader decodes the 8-byte header at the start of data and returns
// the remainder of data following it (the atom's body plus whatever
// comes after, for a body read separately by the caller).
func ReadHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerSize {
		return Header{}, nil, ErrTruncated
	}
	return Header{
		Size: hostEndian.Uint32(data[0:4]),
		Type: hostEndian.Uint32(data[4:8]),
	}, data[headerSize:], nil
}

// ReadAtom decodes one complete atom (header and body) from the start of
// data, returning its header, its body, and whatever follows it in data.
func ReadAtom(data []byte) (Header, []byte, []byte, error) {
	hdr, rest, err := ReadHeader(data)
	if err != nil {
		return Header{}, nil, nil, err
	}
	if uint64(len(rest)) < uint64(hdr.Size) {
		return Header{}, nil, nil, ErrTruncated
	}
	return hdr, rest[:hdr.Size], rest[hdr.Size:], nil
}

// Int32 decodes a 4-byte integer body (Int, Bool, or URID/Symbol atom).
func Int32(body []byte) (int32, error) {
	if len(body) < 4 {
		return 0, ErrTruncated
	}
	return int32(hostEndian.Uint32(body)), nil
}

// URID decodes a URID atom body.
func URID(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrTruncated
	}
	return hostEndian.Uint32(body), nil
}

// Float32 decodes a Float atom body.
func Float32(body []byte) (float32, error) {
	v, err := Int32(body)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// Int64 decodes a Long atom body.
func Int64(body []byte) (int64, error) {
	if len(body) < 8 {
		return 0, ErrTruncated
	}
	return int64(hostEndian.Uint64(body)), nil
}

// Float64 decodes a Double atom body.
func Float64(body []byte) (float64, error) {
	v, err := Int64(body)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// Bool decodes a Bool atom body.
func Bool(body []byte) (bool, error) {
	v, err := Int32(body)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Timestamp decodes a Timestamp atom body into its (integral, fraction)
// components.
func Timestamp(body []byte) (integral, fraction uint32, err error) {
	if len(body) < 8 {
		return 0, 0, ErrTruncated
	}
	return hostEndian.Uint32(body[0:4]), hostEndian.Uint32(body[4:8]), nil
}

// Object decodes the otype field at the start of an Object atom's body
// and returns the remaining bytes, a concatenation of (key, value-atom)
// properties to be walked with ReadHeader/ReadAtom and URID.
func Object(body []byte) (otype uint32, props []byte, err error) {
	if len(body) < 4 {
		return 0, nil, ErrTruncated
	}
	return hostEndian.Uint32(body[0:4]), body[4:], nil
}

// ReadProperty decodes one (key, value atom) pair from an Object's
// property bytes, returning the key, the value atom's header and body,
// and whatever property bytes follow.
func ReadProperty(props []byte) (key uint32, hdr Header, value []byte, rest []byte, err error) {
	if len(props) < 4 {
		return 0, Header{}, nil, nil, ErrTruncated
	}
	key = hostEndian.Uint32(props[0:4])
	hdr, value, rest, err = ReadAtom(props[4:])
	return key, hdr, value, rest, err
}
