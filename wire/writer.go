package wire

import (
	"encoding/binary"
	"math"

	"github.com/quadrasonic/oscforge/sink"
)

var zeroPad [4]byte

// writeCString appends data followed by a NUL terminator and padding to
// the next 4-byte boundary, the shared wire encoding for paths, format
// strings, and string/symbol arguments.
func writeCString(s *sink.Sink, data []byte) sink.Ref {
	ref := s.Raw(data)
	if ref == sink.Null {
		return sink.Null
	}
	if s.Raw(zeroPad[:stringPad(len(data))]) == sink.Null {
		return sink.Null
	}
	return ref
}

// writeBlobBody appends data followed by zero padding to the next
// 4-byte boundary, with no terminator.
func writeBlobBody(s *sink.Sink, data []byte) sink.Ref {
	ref := s.Raw(data)
	if ref == sink.Null {
		return sink.Null
	}
	if pad := blobPad(len(data)); pad > 0 {
		if s.Raw(zeroPad[:pad]) == sink.Null {
			return sink.Null
		}
	}
	return ref
}

// Mold is the append-only OSC wire writer: the counterpart to DecodeMessage
// and DecodeBundle, emitting the same byte layout they accept. It
// maintains no state of its own beyond the sink it writes through; bundle
// item frames are owned by the caller (mirroring sink.Frame's stack
// discipline), since a Mold is shared across arbitrarily nested bundles.
type Mold struct {
	sink *sink.Sink
}

// NewMold returns a Mold writing through s. s should have been
// constructed with sink.NewBuffer or sink.NewCallback, whose default
// frame-patch byte order is big-endian, matching the wire format.
func NewMold(s *sink.Sink) *Mold {
	return &Mold{sink: s}
}

// BundleHead emits the bundle literal and its timestamp.
func (m *Mold) BundleHead(integral, fraction uint32) bool {
	if m.sink.Raw(bundleHeader) == sink.Null {
		return false
	}
	var ts [8]byte
	binary.BigEndian.PutUint32(ts[0:4], integral)
	binary.BigEndian.PutUint32(ts[4:8], fraction)
	return m.sink.Raw(ts[:]) != sink.Null
}

// BundleItemBegin writes a placeholder 4-byte size field and pushes
// frame so later writes into the item grow it, per the sink's own
// frame-patching contract.
func (m *Mold) BundleItemBegin(frame *sink.Frame) bool {
	ref := m.sink.Raw(zeroPad[:])
	if ref == sink.Null {
		return false
	}
	m.sink.Push(frame, ref)
	return true
}

// BundleItemEnd pops frame. The size field was kept correct by every
// write made while the item was open; nothing further is written here.
func (m *Mold) BundleItemEnd(frame *sink.Frame) {
	m.sink.Pop(frame)
}

// MessagePath emits an OSC path string.
func (m *Mold) MessagePath(path []byte) bool {
	return writeCString(m.sink, path) != sink.Null
}

// MessageFormat emits an OSC format string.
func (m *Mold) MessageFormat(format []byte) bool {
	return writeCString(m.sink, format) != sink.Null
}

// Int emits a big-endian int32 argument body.
func (m *Mold) Int(v int32) bool {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return m.sink.Raw(b[:]) != sink.Null
}

// Float emits a big-endian float32 argument body.
func (m *Mold) Float(v float32) bool {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return m.sink.Raw(b[:]) != sink.Null
}

// Long emits a big-endian int64 argument body.
func (m *Mold) Long(v int64) bool {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return m.sink.Raw(b[:]) != sink.Null
}

// Double emits a big-endian float64 argument body.
func (m *Mold) Double(v float64) bool {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return m.sink.Raw(b[:]) != sink.Null
}

// Timestamp emits an (integral, fraction) pair as a big-endian u64, the
// same layout BundleHead uses for the bundle's own timestamp.
func (m *Mold) Timestamp(integral, fraction uint32) bool {
	var b [8]byte
	binary.BigEndian.PutUint32(b[0:4], integral)
	binary.BigEndian.PutUint32(b[4:8], fraction)
	return m.sink.Raw(b[:]) != sink.Null
}

// String emits a NUL-terminated, zero-padded string argument body.
func (m *Mold) String(v []byte) bool {
	return writeCString(m.sink, v) != sink.Null
}

// Symbol emits a URI string argument body, the same wire shape as
// String; the caller is responsible for having already resolved the
// symbol's URID to this string through an Unmapper.
func (m *Mold) Symbol(uri []byte) bool {
	return writeCString(m.sink, uri) != sink.Null
}

// Blob emits a big-endian length prefix followed by data and padding.
func (m *Mold) Blob(data []byte) bool {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	if m.sink.Raw(length[:]) == sink.Null {
		return false
	}
	return writeBlobBody(m.sink, data) != sink.Null
}

// Midi emits the 4-byte wire form of a MIDI argument: a zero port byte
// followed by the 3-byte payload.
func (m *Mold) Midi(data [3]byte) bool {
	b := [4]byte{0, data[0], data[1], data[2]}
	return m.sink.Raw(b[:]) != sink.Null
}

// True, False, Nil, and Impulse write no bytes: OSC 1.0 encodes these
// tags entirely in the format string. They exist so a caller walking a
// structured argument list can treat every atom type uniformly.
func (m *Mold) True() bool    { return !m.sink.Full() }
func (m *Mold) False() bool   { return !m.sink.Full() }
func (m *Mold) Nil() bool     { return !m.sink.Full() }
func (m *Mold) Impulse() bool { return !m.sink.Full() }
