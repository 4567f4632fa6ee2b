package atom

import (
	"github.com/quadrasonic/oscforge/sink"
	"github.com/quadrasonic/oscforge/urid"
	"github.com/quadrasonic/oscforge/wire"
)

// MaxDepth bounds how many containers a Forge will track at once, so a
// pathological packet cannot grow the frame stack without limit. Every
// open Packet tuple, Bundle or Message object, and items or arguments
// tuple takes one frame, so each nested bundle level uses three. It has
// the same value as wire.MaxDepth, which counts bundle levels instead.
const MaxDepth = 32

// Forge builds a structured atom packet on top of a sink.Sink, tracking
// open containers on a fixed-size frame stack rather than a growable
// one. A Forge is single-use: build one packet, then discard it.
type Forge struct {
	sink   *sink.Sink
	reg    *urid.Registry
	mapper urid.Mapper

	frames [MaxDepth]sink.Frame
	depth  int
}

// NewForge returns a Forge writing into s, using reg for well-known type
// ids and mapper to resolve URI strings written as Symbol arguments. s
// must have been constructed with sink.NewBufferOrder(buf, atom.ByteOrder)
// or the callback equivalent.
func NewForge(s *sink.Sink, reg *urid.Registry, mapper urid.Mapper) *Forge {
	return &Forge{sink: s, reg: reg, mapper: mapper}
}

// Sink returns the underlying sink, for callers that need to check
// Full() or retrieve Bytes() once the Forge is done.
func (f *Forge) Sink() *sink.Sink { return f.sink }

// openTuple and openObject open their container directly into the next
// free frame slot, advancing depth only once the open has actually
// succeeded (OpenTuple/OpenObject already push the frame themselves, so
// there is no separate push step here).
func (f *Forge) openTuple(typ uint32) bool {
	if f.depth >= MaxDepth {
		return false
	}
	if OpenTuple(f.sink, &f.frames[f.depth], typ) == sink.Null {
		return false
	}
	f.depth++
	return true
}

func (f *Forge) openObject(typ, otype uint32) bool {
	if f.depth >= MaxDepth {
		return false
	}
	if OpenObject(f.sink, &f.frames[f.depth], typ, otype) == sink.Null {
		return false
	}
	f.depth++
	return true
}

func (f *Forge) popFrame() {
	f.depth--
	f.sink.Pop(&f.frames[f.depth])
}

// OpenPacket opens a Packet atom (the outermost one, or one wrapping a
// bundle item), a Tuple-shaped container holding one Bundle or Message
// atom.
func (f *Forge) OpenPacket() bool {
	return f.openTuple(f.reg.Packet)
}

// OpenBundle opens a Bundle atom: an Object carrying a Timestamp
// property and a BundleItems property whose value is a Tuple of nested
// Packet atoms.
func (f *Forge) OpenBundle(integral, fraction uint32) bool {
	if !f.openObject(f.reg.Bundle, f.reg.Bundle) {
		return false
	}
	if WriteKey(f.sink, f.reg.BundleTimestamp) == sink.Null {
		return false
	}
	if WriteTimestamp(f.sink, f.reg.Timestamp, integral, fraction) == sink.Null {
		return false
	}
	if WriteKey(f.sink, f.reg.BundleItems) == sink.Null {
		return false
	}
	return f.openTuple(f.reg.Tuple)
}

// OpenMessage opens a Message atom: an Object carrying a MessagePath
// property and a MessageArguments property whose value is a Tuple of
// argument atoms. path is validated before anything is written; an
// invalid path opens nothing and reports failure the same way a full
// sink does.
func (f *Forge) OpenMessage(path string) bool {
	if !wire.ValidatePath([]byte(path)) {
		return false
	}
	if !f.openObject(f.reg.Message, f.reg.Message) {
		return false
	}
	if WriteKey(f.sink, f.reg.MessagePath) == sink.Null {
		return false
	}
	if WriteString(f.sink, f.reg.String, []byte(path)) == sink.Null {
		return false
	}
	if WriteKey(f.sink, f.reg.MessageArguments) == sink.Null {
		return false
	}
	return f.openTuple(f.reg.Tuple)
}

// Pop closes exactly one frame, the most recently opened one, whatever
// container it belongs to. A bundle or a message holds two frames; use
// PopBundle or PopMessage to close both.
func (f *Forge) Pop() {
	f.popFrame()
}

// PopMessage closes both frames OpenMessage opened: the arguments tuple,
// then the message object.
func (f *Forge) PopMessage() {
	f.popFrame()
	f.popFrame()
}

// PopBundle closes both frames OpenBundle opened: the items tuple, then
// the bundle object.
func (f *Forge) PopBundle() {
	f.popFrame()
	f.popFrame()
}

// PopPacket closes the frame OpenPacket opened.
func (f *Forge) PopPacket() {
	f.popFrame()
}

// Int appends an Int argument atom.
func (f *Forge) Int(v int32) bool { return WriteInt32(f.sink, f.reg.Int, v) != sink.Null }

// Float appends a Float argument atom.
func (f *Forge) Float(v float32) bool { return WriteFloat32(f.sink, f.reg.Float, v) != sink.Null }

// Long appends a Long argument atom.
func (f *Forge) Long(v int64) bool { return WriteInt64(f.sink, f.reg.Long, v) != sink.Null }

// Double appends a Double argument atom.
func (f *Forge) Double(v float64) bool { return WriteFloat64(f.sink, f.reg.Double, v) != sink.Null }

// String appends a String argument atom.
func (f *Forge) String(v string) bool {
	return WriteString(f.sink, f.reg.String, []byte(v)) != sink.Null
}

// Symbol appends a URID argument atom whose value is the mapper id of
// uri. uri is mapped through the Forge's Mapper, not its Registry.
func (f *Forge) Symbol(uri string) bool {
	return WriteURID(f.sink, f.reg.URID, f.mapper.Map(uri)) != sink.Null
}

// Blob appends a Chunk argument atom.
func (f *Forge) Blob(data []byte) bool {
	return WriteChunk(f.sink, f.reg.Chunk, data) != sink.Null
}

// Midi appends a MidiEvent argument atom. data must be at most 3 bytes;
// a longer payload is rejected rather than silently truncated.
func (f *Forge) Midi(data []byte) bool {
	if len(data) > 3 {
		return false
	}
	return WriteChunk(f.sink, f.reg.MidiEvent, data) != sink.Null
}

// True appends a Bool argument atom with value true.
func (f *Forge) True() bool { return WriteBool(f.sink, f.reg.Bool, true) != sink.Null }

// False appends a Bool argument atom with value false. Unlike a naive
// transliteration that forges the same body as True, the value written
// here is actually 0: the argument remains distinguishable on read-back
// by its body, not only by which forge method produced it.
func (f *Forge) False() bool { return WriteBool(f.sink, f.reg.Bool, false) != sink.Null }

// Nil appends a zero-type, zero-size atom.
func (f *Forge) Nil() bool { return WriteNil(f.sink) != sink.Null }

// Impulse appends an Impulse argument atom.
func (f *Forge) Impulse() bool { return WriteImpulse(f.sink, f.reg.Impulse) != sink.Null }

// Timestamp appends a Timestamp argument atom (OSC's 't' tag used as a
// message argument rather than a bundle header).
func (f *Forge) Timestamp(integral, fraction uint32) bool {
	return WriteTimestamp(f.sink, f.reg.Timestamp, integral, fraction) != sink.Null
}

// VariadicMessage writes a complete Message atom from a caller-supplied
// sequence of argument-writer closures, closing the message itself. It
// is a convenience wrapper over OpenMessage/Pop*/PopMessage for the
// common case where a message's full argument list is known up front,
// mirroring the variadic constructors the original C API offered but
// without dynamic typing: each element of args is already bound to the
// right Forge method call.
func (f *Forge) VariadicMessage(path string, args ...func(*Forge) bool) bool {
	if !f.OpenMessage(path) {
		return false
	}
	for _, arg := range args {
		if !arg(f) {
			return false
		}
	}
	f.PopMessage()
	return true
}
