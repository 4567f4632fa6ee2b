package codec

import (
	"fmt"

	"github.com/quadrasonic/oscforge/atom"
	"github.com/quadrasonic/oscforge/sink"
	"github.com/quadrasonic/oscforge/urid"
	"github.com/quadrasonic/oscforge/wire"
)

// classifyTag maps an atom's type id to the OSC tag it serializes as.
// Bool additionally needs its body to distinguish 'T' from 'F'.
func classifyTag(reg *urid.Registry, hdr atom.Header, body []byte) (byte, error) {
	if hdr.Type == 0 && hdr.Size == 0 {
		return 'N', nil
	}
	switch hdr.Type {
	case reg.Int:
		return 'i', nil
	case reg.Float:
		return 'f', nil
	case reg.String:
		return 's', nil
	case reg.Long:
		return 'h', nil
	case reg.Double:
		return 'd', nil
	case reg.Impulse:
		return 'I', nil
	case reg.Timestamp:
		return 't', nil
	case reg.Chunk:
		return 'b', nil
	case reg.MidiEvent:
		return 'm', nil
	case reg.URID:
		return 'S', nil
	case reg.Bool:
		v, err := atom.Bool(body)
		if err != nil {
			return 0, err
		}
		if v {
			return 'T', nil
		}
		return 'F', nil
	}
	return 0, ErrUnrepresentableAtom
}

// writeArg emits one argument's body through mold according to tag,
// resolving Symbol arguments through unmapper.
func writeArg(mold *wire.Mold, tag byte, body []byte, unmapper urid.Unmapper) (bool, error) {
	switch tag {
	case 'i':
		v, err := atom.Int32(body)
		if err != nil {
			return false, err
		}
		return mold.Int(v), nil
	case 'f':
		v, err := atom.Float32(body)
		if err != nil {
			return false, err
		}
		return mold.Float(v), nil
	case 's':
		return mold.String(body), nil
	case 'h':
		v, err := atom.Int64(body)
		if err != nil {
			return false, err
		}
		return mold.Long(v), nil
	case 'd':
		v, err := atom.Float64(body)
		if err != nil {
			return false, err
		}
		return mold.Double(v), nil
	case 't':
		integral, fraction, err := atom.Timestamp(body)
		if err != nil {
			return false, err
		}
		return mold.Timestamp(integral, fraction), nil
	case 'T':
		return mold.True(), nil
	case 'F':
		return mold.False(), nil
	case 'N':
		return mold.Nil(), nil
	case 'I':
		return mold.Impulse(), nil
	case 'b':
		return mold.Blob(body), nil
	case 'm':
		if len(body) != 3 {
			return false, ErrInvalidMidiLength
		}
		var d [3]byte
		copy(d[:], body)
		return mold.Midi(d), nil
	case 'S':
		id, err := atom.URID(body)
		if err != nil {
			return false, err
		}
		return mold.Symbol([]byte(unmapper.Unmap(id))), nil
	default:
		return false, ErrUnrepresentableAtom
	}
}

type argEntry struct {
	tag  byte
	body []byte
}

func collectArgs(reg *urid.Registry, tupleBody []byte) ([]argEntry, error) {
	var args []argEntry
	remaining := tupleBody
	for len(remaining) > 0 {
		hdr, body, rest, err := atom.ReadAtom(remaining)
		if err != nil {
			return nil, err
		}
		tag, err := classifyTag(reg, hdr, body)
		if err != nil {
			return nil, err
		}
		args = append(args, argEntry{tag: tag, body: body})
		remaining = rest
	}
	return args, nil
}

func serializeMessageBody(body []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	otype, props, err := atom.Object(body)
	if err != nil {
		return err
	}
	if otype != reg.Message {
		return fmt.Errorf("codec: expected message object")
	}

	key, _, pathBody, rest, err := atom.ReadProperty(props)
	if err != nil {
		return err
	}
	if key != reg.MessagePath {
		return fmt.Errorf("codec: expected messagePath property")
	}

	key, argsHdr, argsBody, _, err := atom.ReadProperty(rest)
	if err != nil {
		return err
	}
	if key != reg.MessageArguments || argsHdr.Type != reg.Tuple {
		return fmt.Errorf("codec: expected messageArguments property")
	}

	args, err := collectArgs(reg, argsBody)
	if err != nil {
		return err
	}

	if !mold.MessagePath(pathBody) {
		return wire.ErrDriverRejected
	}
	format := make([]byte, 1, len(args)+1)
	format[0] = ','
	for _, a := range args {
		format = append(format, a.tag)
	}
	if !mold.MessageFormat(format) {
		return wire.ErrDriverRejected
	}
	for _, a := range args {
		ok, err := writeArg(mold, a.tag, a.body, unmapper)
		if err != nil {
			return err
		}
		if !ok {
			return wire.ErrDriverRejected
		}
	}
	return nil
}

func serializeBundleBody(body []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	otype, props, err := atom.Object(body)
	if err != nil {
		return err
	}
	if otype != reg.Bundle {
		return fmt.Errorf("codec: expected bundle object")
	}

	key, _, tsBody, rest, err := atom.ReadProperty(props)
	if err != nil {
		return err
	}
	if key != reg.BundleTimestamp {
		return fmt.Errorf("codec: expected bundleTimestamp property")
	}
	integral, fraction, err := atom.Timestamp(tsBody)
	if err != nil {
		return err
	}

	key, itemsHdr, itemsBody, _, err := atom.ReadProperty(rest)
	if err != nil {
		return err
	}
	if key != reg.BundleItems || itemsHdr.Type != reg.Tuple {
		return fmt.Errorf("codec: expected bundleItems property")
	}

	if !mold.BundleHead(integral, fraction) {
		return wire.ErrDriverRejected
	}

	remaining := itemsBody
	for len(remaining) > 0 {
		itemHdr, itemBody, rest, err := atom.ReadAtom(remaining)
		if err != nil {
			return err
		}
		var frame sink.Frame
		if !mold.BundleItemBegin(&frame) {
			return wire.ErrDriverRejected
		}
		if err := serializePacketBody(itemHdr, itemBody, mold, reg, unmapper); err != nil {
			return err
		}
		mold.BundleItemEnd(&frame)
		remaining = rest
	}
	return nil
}

func serializePacketBody(hdr atom.Header, body []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	if hdr.Type != reg.Packet {
		return fmt.Errorf("codec: expected packet atom")
	}
	childHdr, childBody, _, err := atom.ReadAtom(body)
	if err != nil {
		return err
	}
	switch childHdr.Type {
	case reg.Bundle:
		return serializeBundleBody(childBody, mold, reg, unmapper)
	case reg.Message:
		return serializeMessageBody(childBody, mold, reg, unmapper)
	default:
		return fmt.Errorf("codec: packet contains neither a bundle nor a message")
	}
}

// SerializeMessage walks a structured message atom and drives mold with
// its path, format string, and argument bodies.
func SerializeMessage(atomBytes []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	hdr, body, _, err := atom.ReadAtom(atomBytes)
	if err != nil {
		return fmt.Errorf("codec: serialize message: %w", err)
	}
	if hdr.Type != reg.Message {
		return fmt.Errorf("codec: serialize message: not a message atom")
	}
	if err := serializeMessageBody(body, mold, reg, unmapper); err != nil {
		return fmt.Errorf("codec: serialize message: %w", err)
	}
	return nil
}

// SerializeBundle walks a structured bundle atom, recursively
// serializing each item, and drives mold with the resulting bytes.
func SerializeBundle(atomBytes []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	hdr, body, _, err := atom.ReadAtom(atomBytes)
	if err != nil {
		return fmt.Errorf("codec: serialize bundle: %w", err)
	}
	if hdr.Type != reg.Bundle {
		return fmt.Errorf("codec: serialize bundle: not a bundle atom")
	}
	if err := serializeBundleBody(body, mold, reg, unmapper); err != nil {
		return fmt.Errorf("codec: serialize bundle: %w", err)
	}
	return nil
}

// SerializePacket walks a structured Packet atom — the wrapper
// DeserializePacket produces around a single bundle or message — and
// drives mold with its wire bytes.
func SerializePacket(atomBytes []byte, mold *wire.Mold, reg *urid.Registry, unmapper urid.Unmapper) error {
	hdr, body, _, err := atom.ReadAtom(atomBytes)
	if err != nil {
		return fmt.Errorf("codec: serialize packet: %w", err)
	}
	if err := serializePacketBody(hdr, body, mold, reg, unmapper); err != nil {
		return fmt.Errorf("codec: serialize packet: %w", err)
	}
	return nil
}
