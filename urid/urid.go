// Package urid provides the URI-to-integer mapping types and well-known
// URI vocabulary the codec consumes from its host, plus a small registry
// that resolves and caches the fixed set of identifiers the codec needs
// at initialization time.
package urid

// Mapper resolves a URI to a process-local integer identifier (a URID).
// NewRegistry calls Map once per well-known URI; the only other caller
// is atom.Forge, which calls Map once per Symbol argument it writes.
type Mapper interface {
	Map(uri string) uint32
}

// Unmapper resolves a URID back to its URI string. It is called once per
// symbol argument when serializing a structured packet to wire bytes.
type Unmapper interface {
	Unmap(id uint32) string
}

// MapperFunc adapts a plain function to a Mapper.
type MapperFunc func(uri string) uint32

// Map implements Mapper.
func (f MapperFunc) Map(uri string) uint32 { return f(uri) }

// UnmapperFunc adapts a plain function to an Unmapper.
type UnmapperFunc func(id uint32) string

// Unmap implements Unmapper.
func (f UnmapperFunc) Unmap(id uint32) string { return f(id) }

// Well-known URIs the registry resolves at construction time. The OSC
// namespace mirrors LV2_OSC_URI in the original C implementation; the
// MIDI and atom-primitive URIs mirror the corresponding LV2 extensions.
const (
	osc  = "http://lv2plug.in/ns/ext/osc"
	atom = "http://lv2plug.in/ns/ext/atom"
	midi = "http://lv2plug.in/ns/ext/midi"

	EventURI   = osc + "#Event"
	PacketURI  = osc + "#Packet"
	BundleURI  = osc + "#Bundle"
	MessageURI = osc + "#Message"

	TimestampURI        = osc + "#Timestamp"
	BundleTimestampURI  = osc + "#bundleTimestamp"
	BundleItemsURI      = osc + "#bundleItems"
	MessagePathURI      = osc + "#messagePath"
	MessageArgumentsURI = osc + "#messageArguments"

	MidiEventURI = midi + "#MidiEvent"

	IntURI      = atom + "#Int"
	LongURI     = atom + "#Long"
	FloatURI    = atom + "#Float"
	DoubleURI   = atom + "#Double"
	BoolURI     = atom + "#Bool"
	URIDURI     = atom + "#URID"
	StringURI   = atom + "#String"
	ChunkURI    = atom + "#Chunk"
	ImpulseURI  = atom + "#Impulse"
	TupleURI    = atom + "#Tuple"
	ObjectURI   = atom + "#Object"
)

// Registry caches the integer identifiers for every URI the codec needs,
// resolved once through a host-supplied Mapper. It is read-only after
// construction and safe to share across codec instances, per the
// shared-resource policy: the registry consults the mapper only here,
// never again after construction.
type Registry struct {
	Event   uint32
	Packet  uint32
	Bundle  uint32
	Message uint32

	Timestamp        uint32
	BundleTimestamp  uint32
	BundleItems      uint32
	MessagePath      uint32
	MessageArguments uint32

	MidiEvent uint32

	Int     uint32
	Long    uint32
	Float   uint32
	Double  uint32
	Bool    uint32
	URID    uint32
	String  uint32
	Chunk   uint32
	Impulse uint32
	Tuple   uint32
	Object  uint32
}

// NewRegistry maps every well-known URI through mapper and caches the
// results. mapper is not retained.
func NewRegistry(mapper Mapper) *Registry {
	m := mapper.Map
	return &Registry{
		Event:   m(EventURI),
		Packet:  m(PacketURI),
		Bundle:  m(BundleURI),
		Message: m(MessageURI),

		Timestamp:        m(TimestampURI),
		BundleTimestamp:  m(BundleTimestampURI),
		BundleItems:      m(BundleItemsURI),
		MessagePath:      m(MessagePathURI),
		MessageArguments: m(MessageArgumentsURI),

		MidiEvent: m(MidiEventURI),

		Int:     m(IntURI),
		Long:    m(LongURI),
		Float:   m(FloatURI),
		Double:  m(DoubleURI),
		Bool:    m(BoolURI),
		URID:    m(URIDURI),
		String:  m(StringURI),
		Chunk:   m(ChunkURI),
		Impulse: m(ImpulseURI),
		Tuple:   m(TupleURI),
		Object:  m(ObjectURI),
	}
}

// IsPacket reports whether type is the registry's Packet type id.
func (r *Registry) IsPacket(typ uint32) bool { return typ == r.Packet }

// IsBundle reports whether type is the registry's Bundle type id.
func (r *Registry) IsBundle(typ uint32) bool { return typ == r.Bundle }

// IsMessage reports whether type is the registry's Message type id.
func (r *Registry) IsMessage(typ uint32) bool { return typ == r.Message }
