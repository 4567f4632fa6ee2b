// Package sink implements the append-only write cursor shared by the wire
// writer and the structured atom forge.
//
// A Sink never reads back what it has written except to patch the size
// field of a still-open container, and it never rewinds: every accepted
// write extends the output monotonically. It has two backing modes, a
// bounded in-memory buffer or a user-supplied callback, selected at
// construction time and dispatched on internally rather than through an
// interface, so that writing a single argument never costs a virtual call.
package sink

import "encoding/binary"

// Ref is an opaque reference to the first byte of a write, or the zero
// value (Null) if the write failed. It is a 1-based offset rather than a
// raw pointer so that a legitimate write at buffer offset 0 is still
// representable, the same way a NULL-as-failure convention needs pointers
// to never legitimately be zero in the original C API this mirrors.
type Ref uint32

// Null is the failure sentinel returned by every write once a Sink is
// full, or immediately by any operation on an already-full Sink.
const Null Ref = 0

// Handle is an opaque token threaded through to a callback-mode Sink's
// Writer and Deref functions. It is never interpreted by Sink itself.
type Handle any

// Writer is the callback a callback-mode Sink delegates raw writes to. It
// must append size bytes from data and return a Ref usable with Deref, or
// Null on failure. It must not block.
type Writer func(handle Handle, data []byte) Ref

// Deref resolves a Ref previously returned for a 4-byte size field (in the
// Sink's byte order) back to a mutable view of those 4 bytes, so Sink can patch it as
// later writes extend the container. It must not block.
type Deref func(handle Handle, ref Ref) []byte

// Frame is one entry in a Sink's intrusive frame stack: the location of a
// container's size field, recorded when the container was opened so that
// every subsequent write can retroactively grow it. Callers own Frame
// values (typically on their own call stack) and must push/pop them in
// strict LIFO order.
type Frame struct {
	ref    Ref
	parent *Frame
}

// Sink is the write cursor. The zero value is not usable; construct one
// with NewBuffer or NewCallback.
type Sink struct {
	// buffer mode
	buf    []byte
	offset uint32

	// callback mode
	write  Writer
	deref  Deref
	handle Handle

	order binary.ByteOrder

	top  *Frame
	full bool
}

// NewBuffer returns a Sink that appends into buf, up to its full
// capacity, patching container size fields in big-endian order (the OSC
// wire convention). Writes past capacity fail and latch the Sink full.
func NewBuffer(buf []byte) *Sink {
	return NewBufferOrder(buf, binary.BigEndian)
}

// NewBufferOrder is NewBuffer with an explicit size-field byte order, for
// callers (such as the structured atom forge) whose container headers
// are not big-endian.
func NewBufferOrder(buf []byte, order binary.ByteOrder) *Sink {
	return &Sink{buf: buf, order: order}
}

// NewCallback returns a Sink that delegates every write to write, using
// deref to patch container size fields in big-endian order. deref is
// only required if the caller opens containers (bundles) on this sink.
func NewCallback(handle Handle, write Writer, deref Deref) *Sink {
	return NewCallbackOrder(handle, write, deref, binary.BigEndian)
}

// NewCallbackOrder is NewCallback with an explicit size-field byte order.
func NewCallbackOrder(handle Handle, write Writer, deref Deref, order binary.ByteOrder) *Sink {
	return &Sink{handle: handle, write: write, deref: deref, order: order}
}

// Full reports whether the Sink has latched into its failure state. Once
// full, every subsequent Raw and Write call returns Null without
// attempting to write anything.
func (s *Sink) Full() bool {
	return s.full
}

// Bytes returns the bytes written so far. It panics if the Sink is in
// callback mode, where the caller owns the backing storage.
func (s *Sink) Bytes() []byte {
	if s.buf == nil && s.write != nil {
		panic("sink: Bytes called on a callback-mode sink")
	}
	return s.buf[:s.offset]
}

func (s *Sink) derefSize(ref Ref) []byte {
	if s.write != nil {
		return s.deref(s.handle, ref)
	}
	off := uint32(ref) - 1
	return s.buf[off : off+4]
}

// Raw appends size bytes from data verbatim, with no padding, and patches
// every frame currently on the stack to reflect the grown container. It
// returns a reference to the first byte written, or Null if the Sink is
// full or data does not fit.
func (s *Sink) Raw(data []byte) Ref {
	if s.full {
		return Null
	}

	var out Ref
	if s.write != nil {
		out = s.write(s.handle, data)
		if out == Null {
			s.full = true
			return Null
		}
	} else {
		if uint64(s.offset)+uint64(len(data)) > uint64(len(s.buf)) {
			s.full = true
			return Null
		}
		out = Ref(s.offset + 1)
		copy(s.buf[s.offset:], data)
		s.offset += uint32(len(data))
	}

	size := uint32(len(data))
	for f := s.top; f != nil; f = f.parent {
		field := s.derefSize(f.ref)
		cur := s.order.Uint32(field)
		s.order.PutUint32(field, cur+size)
	}
	return out
}

var zeros [4]byte

// Write appends size bytes from data, then zero-pads the output to the
// next multiple of 4 bytes. It returns a reference to the first byte of
// data, or Null on failure (in which case no padding is written either).
func (s *Sink) Write(data []byte) Ref {
	out := s.Raw(data)
	if out == Null {
		return Null
	}
	if pad := padLen(len(data)); pad > 0 {
		if s.Raw(zeros[:pad]) == Null {
			return Null
		}
	}
	return out
}

func padLen(n int) int {
	return (4 - n%4) % 4
}

// Push records ref as the location of frame's size field and links frame
// onto the top of the frame stack. It returns ref unchanged, so callers
// can chain it the same way Raw/Write are chained.
func (s *Sink) Push(frame *Frame, ref Ref) Ref {
	frame.ref = ref
	frame.parent = s.top
	s.top = frame
	return ref
}

// Pop removes frame from the top of the frame stack. It panics if frame
// is not the current top, which would indicate frames were popped out of
// LIFO order — a programmer error, not a runtime/input failure.
func (s *Sink) Pop(frame *Frame) {
	if s.top != frame {
		panic("sink: Pop called out of LIFO order")
	}
	s.top = frame.parent
}
