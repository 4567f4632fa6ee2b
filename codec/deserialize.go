// Package codec implements the bidirectional bridge between OSC wire
// packets and structured atom packets: DeserializePacket drives an
// atom.Forge from wire bytes, and SerializePacket walks a structured
// atom buffer to drive a wire.Mold.
package codec

import (
	"errors"
	"fmt"

	"github.com/quadrasonic/oscforge/atom"
	"github.com/quadrasonic/oscforge/wire"
)

// ErrUnrepresentableAtom is returned by Serialize* when a message's
// argument tuple contains an atom type with no corresponding OSC tag.
var ErrUnrepresentableAtom = errors.New("codec: atom type has no OSC tag")

// ErrInvalidMidiLength is returned by Serialize* when a MidiEvent atom's
// body is not exactly 3 bytes.
var ErrInvalidMidiLength = errors.New("codec: midi atom body is not 3 bytes")

// forgeDriver adapts an *atom.Forge to wire.Driver: component C driving
// component E exactly as the wire→structured data flow requires. Bundle
// items are forwarded through nested calls to the forge's own Open/Pop
// pair, so recursion depth is bounded by atom.MaxDepth the same way
// wire.DecodeBundle bounds its own recursion by wire.MaxDepth.
type forgeDriver struct {
	forge *atom.Forge
}

func (d *forgeDriver) MessageBegin(path []byte) bool { return d.forge.OpenMessage(string(path)) }
func (d *forgeDriver) MessageEnd() bool              { d.forge.PopMessage(); return true }

func (d *forgeDriver) BundleBegin(integral, fraction uint32) bool {
	return d.forge.OpenBundle(integral, fraction)
}
func (d *forgeDriver) BundleItemBegin() bool { return d.forge.OpenPacket() }
func (d *forgeDriver) BundleItemEnd() bool   { d.forge.PopPacket(); return true }
func (d *forgeDriver) BundleEnd() bool       { d.forge.PopBundle(); return true }

func (d *forgeDriver) Int(v int32) bool      { return d.forge.Int(v) }
func (d *forgeDriver) Float(v float32) bool  { return d.forge.Float(v) }
func (d *forgeDriver) String(v []byte) bool  { return d.forge.String(string(v)) }
func (d *forgeDriver) Blob(v []byte) bool    { return d.forge.Blob(v) }
func (d *forgeDriver) Long(v int64) bool     { return d.forge.Long(v) }
func (d *forgeDriver) Double(v float64) bool { return d.forge.Double(v) }
func (d *forgeDriver) Timestamp(integral, fraction uint32) bool {
	return d.forge.Timestamp(integral, fraction)
}
func (d *forgeDriver) True() bool    { return d.forge.True() }
func (d *forgeDriver) False() bool   { return d.forge.False() }
func (d *forgeDriver) Nil() bool     { return d.forge.Nil() }
func (d *forgeDriver) Impulse() bool { return d.forge.Impulse() }

// Symbol resolves the wire-side URI string through the forge's mapper,
// never a placeholder identifier.
func (d *forgeDriver) Symbol(v []byte) bool { return d.forge.Symbol(string(v)) }
func (d *forgeDriver) Midi(v [3]byte) bool  { return d.forge.Midi(v[:]) }

// DeserializeMessage decodes a single wire message into a structured
// message atom, writing it through forge.
func DeserializeMessage(buf []byte, forge *atom.Forge) error {
	d := &forgeDriver{forge: forge}
	if err := wire.DecodeMessage(buf, d); err != nil {
		return fmt.Errorf("codec: deserialize message: %w", err)
	}
	return nil
}

// DeserializeBundle decodes a wire bundle, recursively deserializing
// each item, into a structured bundle atom.
func DeserializeBundle(buf []byte, forge *atom.Forge) error {
	d := &forgeDriver{forge: forge}
	if err := wire.DecodeBundle(buf, d); err != nil {
		return fmt.Errorf("codec: deserialize bundle: %w", err)
	}
	return nil
}

// DeserializePacket decodes buf as either a bundle or a message —
// discriminated by the leading bundle literal, the same way
// wire.DecodePacket does — wrapping the result in a Packet atom. Each
// bundle item is, in turn, a nested packet: BundleItemBegin/End open and
// close one Packet wrapper per item, the structured mirror of
// wire.DecodeBundle recursing into wire.DecodePacket for each item.
func DeserializePacket(buf []byte, forge *atom.Forge) error {
	if !forge.OpenPacket() {
		return fmt.Errorf("codec: deserialize packet: %w", wire.ErrDriverRejected)
	}
	d := &forgeDriver{forge: forge}
	err := wire.DecodePacket(buf, d)
	forge.PopPacket()
	if err != nil {
		return fmt.Errorf("codec: deserialize packet: %w", err)
	}
	return nil
}
