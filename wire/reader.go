package wire

import (
	"bytes"
	"encoding/binary"
	"math"
)

// MaxDepth bounds how deeply bundles may nest. decode_* calls that would
// recurse past it fail rather than grow the call stack without limit.
const MaxDepth = 32

var bundleHeader = []byte("#bundle\x00")

// Driver receives one call per structural event or argument encountered
// while decoding a wire packet. Each method reports whether the write
// succeeded; a false return aborts the decode with ErrDriverRejected.
// codec.Deserialize* implements Driver directly in terms of atom.Forge,
// whose own per-tag methods already return bool for exactly this reason.
type Driver interface {
	MessageBegin(path []byte) bool
	MessageEnd() bool

	BundleBegin(integral, fraction uint32) bool
	BundleItemBegin() bool
	BundleItemEnd() bool
	BundleEnd() bool

	Int(v int32) bool
	Float(v float32) bool
	String(v []byte) bool
	Blob(v []byte) bool
	Long(v int64) bool
	Double(v float64) bool
	Timestamp(integral, fraction uint32) bool
	True() bool
	False() bool
	Nil() bool
	Impulse() bool
	Symbol(uri []byte) bool
	Midi(data [3]byte) bool
}

// stringPad returns how many bytes (including the NUL terminator) are
// needed to bring an n-byte string to the next multiple of 4; always
// between 1 and 4, since a terminator is mandatory even when n is
// already aligned.
func stringPad(n int) int {
	const align = 4
	return align - n%align
}

// blobPad returns how many zero bytes bring an n-byte blob to the next
// multiple of 4; 0 when n is already aligned, unlike stringPad, since a
// blob carries no terminator.
func blobPad(n int) int {
	const align = 4
	return (align - n%align) % align
}

// readCString scans buf for a NUL terminator and returns the bytes
// before it along with buf advanced past the terminator and its padding
// to the next 4-byte boundary. Used for paths, format strings, and
// string/symbol arguments, which all share this wire encoding.
func readCString(buf []byte) (value, rest []byte, err error) {
	idx := bytes.IndexByte(buf, 0)
	if idx == -1 {
		return nil, nil, ErrTruncated
	}
	total := idx + stringPad(idx)
	if total > len(buf) {
		return nil, nil, ErrTruncated
	}
	return buf[:idx], buf[total:], nil
}

func readInt32(buf []byte) (int32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, ErrTruncated
	}
	return int32(binary.BigEndian.Uint32(buf[:4])), buf[4:], nil
}

func readFloat32(buf []byte) (float32, []byte, error) {
	v, rest, err := readInt32(buf)
	if err != nil {
		return 0, nil, err
	}
	return math.Float32frombits(uint32(v)), rest, nil
}

func readInt64(buf []byte) (int64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, ErrTruncated
	}
	return int64(binary.BigEndian.Uint64(buf[:8])), buf[8:], nil
}

func readFloat64(buf []byte) (float64, []byte, error) {
	v, rest, err := readInt64(buf)
	if err != nil {
		return 0, nil, err
	}
	return math.Float64frombits(uint64(v)), rest, nil
}

func readTimestamp(buf []byte) (integral, fraction uint32, rest []byte, err error) {
	if len(buf) < 8 {
		return 0, 0, nil, ErrTruncated
	}
	return binary.BigEndian.Uint32(buf[0:4]), binary.BigEndian.Uint32(buf[4:8]), buf[8:], nil
}

func readBlob(buf []byte) ([]byte, []byte, error) {
	length, rest, err := readInt32(buf)
	if err != nil {
		return nil, nil, err
	}
	if length < 0 {
		return nil, nil, ErrNegativeBlobLength
	}
	n := int(length)
	total := n + blobPad(n)
	if total > len(rest) {
		return nil, nil, ErrTruncated
	}
	return rest[:n], rest[total:], nil
}

func readMidi(buf []byte) ([3]byte, []byte, error) {
	if len(buf) < 4 {
		return [3]byte{}, nil, ErrTruncated
	}
	// byte 0 is the port; the codec discards it and surfaces only the
	// 3-byte MIDI payload.
	return [3]byte{buf[1], buf[2], buf[3]}, buf[4:], nil
}

// DecodeMessage decodes a single OSC message from buf and drives driver
// with its path, then one call per argument in format order, then
// MessageEnd. Path and format are fully validated before MessageBegin is
// called, so no container is ever opened on invalid input.
func DecodeMessage(buf []byte, driver Driver) error {
	path, rest, err := readCString(buf)
	if err != nil {
		return err
	}
	if !ValidatePath(path) {
		return ErrInvalidPath
	}

	format, rest, err := readCString(rest)
	if err != nil {
		return err
	}
	if !ValidateFormat(format) {
		return ErrInvalidFormat
	}

	if !driver.MessageBegin(path) {
		return ErrDriverRejected
	}

	for _, tag := range format[1:] {
		var ok bool
		switch tag {
		case 'i':
			var v int32
			if v, rest, err = readInt32(rest); err != nil {
				return err
			}
			ok = driver.Int(v)
		case 'f':
			var v float32
			if v, rest, err = readFloat32(rest); err != nil {
				return err
			}
			ok = driver.Float(v)
		case 's':
			var v []byte
			if v, rest, err = readCString(rest); err != nil {
				return err
			}
			ok = driver.String(v)
		case 'b':
			var v []byte
			if v, rest, err = readBlob(rest); err != nil {
				return err
			}
			ok = driver.Blob(v)
		case 'h':
			var v int64
			if v, rest, err = readInt64(rest); err != nil {
				return err
			}
			ok = driver.Long(v)
		case 'd':
			var v float64
			if v, rest, err = readFloat64(rest); err != nil {
				return err
			}
			ok = driver.Double(v)
		case 't':
			var integral, fraction uint32
			if integral, fraction, rest, err = readTimestamp(rest); err != nil {
				return err
			}
			ok = driver.Timestamp(integral, fraction)
		case 'T':
			ok = driver.True()
		case 'F':
			ok = driver.False()
		case 'N':
			ok = driver.Nil()
		case 'I':
			ok = driver.Impulse()
		case 'S':
			var v []byte
			if v, rest, err = readCString(rest); err != nil {
				return err
			}
			ok = driver.Symbol(v)
		case 'm':
			var v [3]byte
			if v, rest, err = readMidi(rest); err != nil {
				return err
			}
			ok = driver.Midi(v)
		default:
			// unreachable: format was validated above
			return &UnknownTagError{Tag: tag}
		}
		if !ok {
			return ErrDriverRejected
		}
	}

	if !driver.MessageEnd() {
		return ErrDriverRejected
	}
	return nil
}

// DecodePacket decodes buf as either a bundle or a message, discriminated
// by whether its first 8 bytes are the bundle literal.
func DecodePacket(buf []byte, driver Driver) error {
	return decodePacket(buf, driver, 0)
}

func decodePacket(buf []byte, driver Driver, depth int) error {
	if depth >= MaxDepth {
		return ErrMaxDepthExceeded
	}
	if len(buf) >= len(bundleHeader) && bytes.Equal(buf[:len(bundleHeader)], bundleHeader) {
		return decodeBundle(buf, driver, depth)
	}
	return DecodeMessage(buf, driver)
}

// DecodeBundle decodes buf as a bundle, recursing into each item via
// DecodePacket and driving driver's Bundle* and item callbacks around it.
func DecodeBundle(buf []byte, driver Driver) error {
	return decodeBundle(buf, driver, 0)
}

func decodeBundle(buf []byte, driver Driver, depth int) error {
	if depth >= MaxDepth {
		return ErrMaxDepthExceeded
	}
	if len(buf) < len(bundleHeader) || !bytes.Equal(buf[:len(bundleHeader)], bundleHeader) {
		return ErrBadBundleHeader
	}
	rest := buf[len(bundleHeader):]

	integral, fraction, rest, err := readTimestamp(rest)
	if err != nil {
		return err
	}

	if !driver.BundleBegin(integral, fraction) {
		return ErrDriverRejected
	}

	// The loop falls out either because rest is exactly consumed or
	// because there was nothing left to begin with; both are success,
	// there is no separate end-of-buffer special case.
	for len(rest) > 0 {
		var size int32
		size, rest, err = readInt32(rest)
		if err != nil {
			return err
		}
		if size < 0 || size%4 != 0 {
			return &BadItemSizeError{Size: size}
		}
		if int64(len(rest)) < int64(size) {
			return ErrTruncated
		}
		item := rest[:size]
		rest = rest[size:]

		if !driver.BundleItemBegin() {
			return ErrDriverRejected
		}
		if err := decodePacket(item, driver, depth+1); err != nil {
			return err
		}
		if !driver.BundleItemEnd() {
			return ErrDriverRejected
		}
	}

	if !driver.BundleEnd() {
		return ErrDriverRejected
	}
	return nil
}
