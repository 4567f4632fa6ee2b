package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrasonic/oscforge/atom"
	"github.com/quadrasonic/oscforge/codec"
	"github.com/quadrasonic/oscforge/sink"
	"github.com/quadrasonic/oscforge/urid"
	"github.com/quadrasonic/oscforge/wire"
)

// biMapper is a trivial bidirectional URI<->id table, standing in for
// the host-supplied mapper/unmapper pair.
type biMapper struct {
	uriToID map[string]uint32
	idToURI map[uint32]string
	next    uint32
}

func newBiMapper() *biMapper {
	return &biMapper{uriToID: map[string]uint32{}, idToURI: map[uint32]string{}}
}

func (m *biMapper) Map(uri string) uint32 {
	if id, ok := m.uriToID[uri]; ok {
		return id
	}
	m.next++
	m.uriToID[uri] = m.next
	m.idToURI[m.next] = uri
	return m.next
}

func (m *biMapper) Unmap(id uint32) string { return m.idToURI[id] }

func newFixture(t *testing.T, atomCap, wireCap int) (*atom.Forge, *sink.Sink, *urid.Registry, *biMapper) {
	t.Helper()
	mapper := newBiMapper()
	reg := urid.NewRegistry(mapper)
	atomSink := sink.NewBufferOrder(make([]byte, atomCap), atom.ByteOrder)
	forge := atom.NewForge(atomSink, reg, mapper)
	return forge, atomSink, reg, mapper
}

func roundTripPacket(t *testing.T, wireIn []byte) []byte {
	t.Helper()
	forge, atomSink, reg, mapper := newFixture(t, 512, 512)
	require.NoError(t, codec.DeserializePacket(wireIn, forge))

	wireSink := sink.NewBuffer(make([]byte, 512))
	mold := wire.NewMold(wireSink)
	require.NoError(t, codec.SerializePacket(atomSink.Bytes(), mold, reg, mapper))
	return wireSink.Bytes()
}

func TestRoundTripEmptyMessage(t *testing.T) {
	in := []byte{'/', 'f', 'o', 'o', 0, 0, 0, 0, ',', 0, 0, 0}
	assert.Equal(t, in, roundTripPacket(t, in))
}

func TestRoundTripSingleInt(t *testing.T) {
	in := []byte{0x2F, 0x69, 0x00, 0x00, 0x2C, 0x69, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2A}
	assert.Equal(t, in, roundTripPacket(t, in))
}

func TestRoundTripMixedArgs(t *testing.T) {
	// build the wire input via the Mold, rather than a hand-assembled
	// byte table, so the test exercises the writer and the
	// deserialize/serialize path independently of each other
	buf := sink.NewBuffer(make([]byte, 256))
	mold := wire.NewMold(buf)
	require.True(t, mold.MessagePath([]byte("/a")))
	require.True(t, mold.MessageFormat([]byte(",ifsTN")))
	require.True(t, mold.Int(1))
	require.True(t, mold.Float(1.5))
	require.True(t, mold.String([]byte("hi")))
	require.True(t, mold.True())
	require.True(t, mold.Nil())
	in := buf.Bytes()

	out := roundTripPacket(t, in)
	assert.Equal(t, in, out)
}

func TestRoundTripBundleOfTwoMessages(t *testing.T) {
	buf := sink.NewBuffer(make([]byte, 256))
	mold := wire.NewMold(buf)
	require.True(t, mold.BundleHead(0, 1))

	writeItem := func(path string, v int32) {
		var frame sink.Frame
		require.True(t, mold.BundleItemBegin(&frame))
		require.True(t, mold.MessagePath([]byte(path)))
		require.True(t, mold.MessageFormat([]byte(",i")))
		require.True(t, mold.Int(v))
		mold.BundleItemEnd(&frame)
	}
	writeItem("/a", 7)
	writeItem("/b", 8)
	in := buf.Bytes()

	out := roundTripPacket(t, in)
	assert.Equal(t, in, out)
}

func TestRoundTripNestedBundle(t *testing.T) {
	buf := sink.NewBuffer(make([]byte, 256))
	outer := wire.NewMold(buf)
	require.True(t, outer.BundleHead(0, 1))

	var outerFrame sink.Frame
	require.True(t, outer.BundleItemBegin(&outerFrame))
	require.True(t, outer.BundleHead(0, 2))
	var innerFrame sink.Frame
	require.True(t, outer.BundleItemBegin(&innerFrame))
	require.True(t, outer.MessagePath([]byte("/x")))
	require.True(t, outer.MessageFormat([]byte(",i")))
	require.True(t, outer.Int(3))
	outer.BundleItemEnd(&innerFrame)
	outer.BundleItemEnd(&outerFrame)
	in := buf.Bytes()

	out := roundTripPacket(t, in)
	assert.Equal(t, in, out)
}

func TestRoundTripMidiAndSymbol(t *testing.T) {
	buf := sink.NewBuffer(make([]byte, 256))
	mold := wire.NewMold(buf)
	require.True(t, mold.MessagePath([]byte("/ms")))
	require.True(t, mold.MessageFormat([]byte(",mS")))
	require.True(t, mold.Midi([3]byte{0x90, 0x40, 0x7f}))
	require.True(t, mold.Symbol([]byte("urn:example:thing")))
	in := buf.Bytes()

	out := roundTripPacket(t, in)
	assert.Equal(t, in, out)
}

func TestSerializeRejectsInvalidMidiLength(t *testing.T) {
	forge, atomSink, reg, mapper := newFixture(t, 256, 256)
	require.True(t, forge.OpenPacket())
	require.True(t, forge.OpenMessage("/m"))
	require.NotEqual(t, sink.Null, atom.WriteChunk(atomSink, reg.MidiEvent, []byte{0x90, 0x40, 0x7f, 0x00}))
	forge.PopMessage()
	forge.PopPacket()

	wireSink := sink.NewBuffer(make([]byte, 256))
	mold := wire.NewMold(wireSink)
	err := codec.SerializePacket(atomSink.Bytes(), mold, reg, mapper)
	assert.ErrorIs(t, err, codec.ErrInvalidMidiLength)
}

func TestDeserializeRejectsInvalidPath(t *testing.T) {
	forge, _, _, _ := newFixture(t, 256, 256)
	in := []byte{'/', 'f', 'o', 'o', ' ', 'b', 'a', 'r', 0, 0, 0, 0}
	err := codec.DeserializePacket(in, forge)
	assert.ErrorIs(t, err, wire.ErrInvalidPath)
}

func TestDeserializeRejectsUnknownTag(t *testing.T) {
	forge, _, _, _ := newFixture(t, 256, 256)
	in := []byte{'/', 'a', 0, 0, ',', 'q', 0, 0}
	err := codec.DeserializePacket(in, forge)
	assert.ErrorIs(t, err, wire.ErrInvalidFormat)
}

func TestDeserializeCapacityPressure(t *testing.T) {
	forge, atomSink, _, _ := newFixture(t, 4, 256)
	in := []byte{'/', 'f', 'o', 'o', 0, 0, 0, 0, ',', 0, 0, 0}
	err := codec.DeserializePacket(in, forge)
	assert.Error(t, err)
	assert.True(t, atomSink.Full())
}

func TestSerializeCapacityPressure(t *testing.T) {
	forge, atomSink, reg, mapper := newFixture(t, 512, 512)
	in := []byte{'/', 'f', 'o', 'o', 0, 0, 0, 0, ',', 0, 0, 0}
	require.NoError(t, codec.DeserializePacket(in, forge))

	tinySink := sink.NewBuffer(make([]byte, 4))
	mold := wire.NewMold(tinySink)
	err := codec.SerializePacket(atomSink.Bytes(), mold, reg, mapper)
	assert.Error(t, err)
}
