package atom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrasonic/oscforge/atom"
	"github.com/quadrasonic/oscforge/sink"
	"github.com/quadrasonic/oscforge/urid"
)

func newTestForge(t *testing.T, size int) (*atom.Forge, *sink.Sink, *urid.Registry) {
	t.Helper()
	s := sink.NewBufferOrder(make([]byte, size), atom.ByteOrder)
	mapper := urid.MapperFunc(func(uri string) uint32 {
		// deterministic, collision-free stand-in mapper
		h := uint32(2166136261)
		for i := 0; i < len(uri); i++ {
			h ^= uint32(uri[i])
			h *= 16777619
		}
		if h == 0 {
			h = 1
		}
		return h
	})
	reg := urid.NewRegistry(mapper)
	return atom.NewForge(s, reg, mapper), s, reg
}

func TestForgeSimpleMessageRoundTrips(t *testing.T) {
	f, s, reg := newTestForge(t, 256)

	require.True(t, f.OpenPacket())
	require.True(t, f.OpenMessage("/foo"))
	require.True(t, f.Int(42))
	require.True(t, f.String("bar"))
	f.PopMessage()
	f.PopPacket()
	require.False(t, s.Full())

	tree, err := atom.Decode(s.Bytes(), reg.Tuple, reg.Object)
	require.NoError(t, err)
	require.Len(t, tree.Items, 1)

	msg := tree.Items[0]
	assert.EqualValues(t, reg.Message, msg.Type)
	assert.EqualValues(t, reg.Message, msg.OType)
	require.Len(t, msg.Props, 2)
	assert.EqualValues(t, reg.MessagePath, msg.Props[0].Key)
	assert.Equal(t, "/foo", string(msg.Props[0].Value.Body))

	args := msg.Props[1].Value
	assert.EqualValues(t, reg.Tuple, args.Type)
	require.Len(t, args.Items, 2)
	v, _ := atom.Int32(args.Items[0].Body)
	assert.EqualValues(t, 42, v)
	assert.Equal(t, "bar", string(args.Items[1].Body))
}

func TestForgeBundleWrapsNestedPacket(t *testing.T) {
	f, s, reg := newTestForge(t, 256)

	require.True(t, f.OpenPacket())
	require.True(t, f.OpenBundle(1, 0))
	require.True(t, f.OpenPacket())
	require.True(t, f.OpenMessage("/a"))
	require.True(t, f.True())
	f.PopMessage()
	f.PopPacket()
	f.PopBundle()
	f.PopPacket()

	tree, err := atom.Decode(s.Bytes(), reg.Tuple, reg.Object)
	require.NoError(t, err)
	bundle := tree.Items[0]
	assert.EqualValues(t, reg.Bundle, bundle.OType)
	require.Len(t, bundle.Props, 2)
	assert.EqualValues(t, reg.BundleTimestamp, bundle.Props[0].Key)

	items := bundle.Props[1].Value
	require.Len(t, items.Items, 1)
	innerMsg := items.Items[0].Items[0]
	assert.EqualValues(t, reg.Message, innerMsg.OType)
}

func TestForgeVariadicMessage(t *testing.T) {
	f, s, reg := newTestForge(t, 128)

	ok := f.VariadicMessage("/v",
		func(f *atom.Forge) bool { return f.Int(1) },
		func(f *atom.Forge) bool { return f.False() },
	)
	require.True(t, ok)

	tree, err := atom.Decode(s.Bytes(), reg.Tuple, reg.Object)
	require.NoError(t, err)
	args := tree.Props[1].Value
	require.Len(t, args.Items, 2)
	b, err := atom.Bool(args.Items[1].Body)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestForgeExhaustionFailsOpen(t *testing.T) {
	f, s, _ := newTestForge(t, 4)
	assert.False(t, f.OpenPacket())
	assert.True(t, s.Full())
}

func TestForgeOpenMessageRejectsInvalidPath(t *testing.T) {
	f, s, _ := newTestForge(t, 256)
	assert.False(t, f.OpenMessage("no-leading-slash"))
	assert.False(t, f.OpenMessage("/foo bar"))
	assert.Empty(t, s.Bytes())
}

func TestForgeMidiRejectsOversizedPayload(t *testing.T) {
	f, s, _ := newTestForge(t, 256)
	require.True(t, f.OpenPacket())
	require.True(t, f.OpenMessage("/m"))
	assert.False(t, f.Midi(make([]byte, 4)))
	assert.True(t, f.Midi([]byte{0x90, 0x40, 0x7f}))
	f.PopMessage()
	f.PopPacket()
	require.False(t, s.Full())
}
