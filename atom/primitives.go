// Package atom implements the structured, host-endian representation the
// codec builds and reads on the plugin's internal event bus: a tree of
// typed atoms addressed by integer type identifiers, composable into
// tuples and objects.
//
// Atoms have no third-party analog anywhere in the retrieved example
// pack or, as far as this module's author could tell, in the wider Go
// ecosystem: the layout below (an 8-byte size+type header followed by a
// host-endian body) is this module's own minimal stand-in for the kind
// of external, host-supplied atom forge a real plugin host provides,
// built directly on package sink the same way everything else in this
// module is. See DESIGN.md for the full accounting.
package atom

import (
	"encoding/binary"
	"math"

	"github.com/quadrasonic/oscforge/sink"
)

// ByteOrder is the byte order used for every structured-representation
// field, both by this package's primitive writers and by the container
// size-patching done inside the sink.Sink a Forge writes through. Only
// the host's native order is required to be used consistently, not any
// particular one; little-endian is picked as the concrete stand-in here
// since it matches the common case (x86, arm). Any sink.Sink passed to a
// Forge or read as an atom buffer must have been constructed with this
// same order (sink.NewBufferOrder(buf, atom.ByteOrder) or the callback
// equivalent), or container sizes will be patched incorrectly.
var ByteOrder = binary.LittleEndian

var hostEndian = ByteOrder

// headerSize is the width of an atom's Size+Type header.
const headerSize = 8

// writeHeader appends an 8-byte atom header (size, typ) and returns a
// reference to its first byte — the Size field, which callers opening a
// container push onto the frame stack for later patching.
func writeHeader(s *sink.Sink, size, typ uint32) sink.Ref {
	var hdr [headerSize]byte
	hostEndian.PutUint32(hdr[0:4], size)
	hostEndian.PutUint32(hdr[4:8], typ)
	return s.Raw(hdr[:])
}

// WriteInt32 appends an Int atom with the given 32-bit value.
func WriteInt32(s *sink.Sink, typ uint32, v int32) sink.Ref {
	ref := writeHeader(s, 4, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [4]byte
	hostEndian.PutUint32(b[:], uint32(v))
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteFloat32 appends a Float atom.
func WriteFloat32(s *sink.Sink, typ uint32, v float32) sink.Ref {
	ref := writeHeader(s, 4, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [4]byte
	hostEndian.PutUint32(b[:], math.Float32bits(v))
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteInt64 appends a Long atom.
func WriteInt64(s *sink.Sink, typ uint32, v int64) sink.Ref {
	ref := writeHeader(s, 8, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [8]byte
	hostEndian.PutUint64(b[:], uint64(v))
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteFloat64 appends a Double atom.
func WriteFloat64(s *sink.Sink, typ uint32, v float64) sink.Ref {
	ref := writeHeader(s, 8, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [8]byte
	hostEndian.PutUint64(b[:], math.Float64bits(v))
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteBool appends a Bool atom.
func WriteBool(s *sink.Sink, typ uint32, v bool) sink.Ref {
	var iv int32
	if v {
		iv = 1
	}
	return WriteInt32(s, typ, iv)
}

// WriteURID appends a URID (symbol) atom whose body is the given id.
func WriteURID(s *sink.Sink, typ uint32, id uint32) sink.Ref {
	ref := writeHeader(s, 4, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [4]byte
	hostEndian.PutUint32(b[:], id)
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteString appends a String atom. data is copied verbatim, with no
// NUL terminator and no padding: alignment to 4-byte boundaries is an
// OSC wire concern, not a structured-atom one.
func WriteString(s *sink.Sink, typ uint32, data []byte) sink.Ref {
	ref := writeHeader(s, uint32(len(data)), typ)
	if ref == sink.Null {
		return sink.Null
	}
	if len(data) > 0 && s.Raw(data) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteChunk appends a Chunk-shaped atom (used for both blob arguments,
// tagged with the Chunk type id, and MIDI arguments, tagged with the
// MidiEvent type id). data must be non-nil.
func WriteChunk(s *sink.Sink, typ uint32, data []byte) sink.Ref {
	if data == nil {
		return sink.Null
	}
	ref := writeHeader(s, uint32(len(data)), typ)
	if ref == sink.Null {
		return sink.Null
	}
	if len(data) > 0 && s.Raw(data) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteImpulse appends a zero-size Impulse atom.
func WriteImpulse(s *sink.Sink, typ uint32) sink.Ref {
	return writeHeader(s, 0, typ)
}

// WriteNil appends the zero-type, zero-size atom used to represent OSC's
// nil argument.
func WriteNil(s *sink.Sink) sink.Ref {
	return writeHeader(s, 0, 0)
}

// WriteTimestamp appends a Timestamp atom: an 8-byte body of (integral,
// fraction), each a host-endian uint32.
func WriteTimestamp(s *sink.Sink, typ uint32, integral, fraction uint32) sink.Ref {
	ref := writeHeader(s, 8, typ)
	if ref == sink.Null {
		return sink.Null
	}
	var b [8]byte
	hostEndian.PutUint32(b[0:4], integral)
	hostEndian.PutUint32(b[4:8], fraction)
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// OpenTuple appends a zero-size Tuple header and pushes frame so that
// every atom subsequently written directly into it grows its recorded
// size. The tuple's body is simply the concatenation of its children's
// own headers and bodies.
func OpenTuple(s *sink.Sink, frame *sink.Frame, typ uint32) sink.Ref {
	ref := writeHeader(s, 0, typ)
	if ref == sink.Null {
		return sink.Null
	}
	return s.Push(frame, ref)
}

// OpenObject appends a zero-size Object header followed by its otype
// field, then pushes frame. Properties (WriteKey + a value atom) written
// afterwards accumulate into the object's recorded size.
func OpenObject(s *sink.Sink, frame *sink.Frame, typ, otype uint32) sink.Ref {
	ref := writeHeader(s, 0, typ)
	if ref == sink.Null {
		return sink.Null
	}
	s.Push(frame, ref)
	var b [4]byte
	hostEndian.PutUint32(b[:], otype)
	if s.Raw(b[:]) == sink.Null {
		return sink.Null
	}
	return ref
}

// WriteKey appends a bare property key (a URID) directly into the
// currently open Object.
func WriteKey(s *sink.Sink, key uint32) sink.Ref {
	var b [4]byte
	hostEndian.PutUint32(b[:], key)
	return s.Raw(b[:])
}

// Close pops frame, the counterpart to OpenTuple/OpenObject. No bytes are
// written; the container's size field was kept correct by every
// intervening write.
func Close(s *sink.Sink, frame *sink.Frame) {
	s.Pop(frame)
}
