package atom_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrasonic/oscforge/atom"
	"github.com/quadrasonic/oscforge/sink"
)

const (
	tInt    = 100
	tFloat  = 101
	tBool   = 102
	tString = 103
	tChunk  = 104
	tTuple  = 200
	tObject = 201
)

func newAtomSink(t *testing.T, size int) *sink.Sink {
	t.Helper()
	return sink.NewBufferOrder(make([]byte, size), atom.ByteOrder)
}

func TestWriteInt32RoundTrips(t *testing.T) {
	s := newAtomSink(t, 16)
	require.NotEqual(t, sink.Null, atom.WriteInt32(s, tInt, -42))

	hdr, body, rest, err := atom.ReadAtom(s.Bytes())
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.EqualValues(t, tInt, hdr.Type)
	assert.EqualValues(t, 4, hdr.Size)

	v, err := atom.Int32(body)
	require.NoError(t, err)
	assert.EqualValues(t, -42, v)
}

func TestWriteBoolDistinguishesTrueFalse(t *testing.T) {
	s := newAtomSink(t, 24)
	require.NotEqual(t, sink.Null, atom.WriteBool(s, tBool, true))
	require.NotEqual(t, sink.Null, atom.WriteBool(s, tBool, false))

	_, trueBody, rest, err := atom.ReadAtom(s.Bytes())
	require.NoError(t, err)
	trueVal, err := atom.Bool(trueBody)
	require.NoError(t, err)
	assert.True(t, trueVal)

	_, falseBody, _, err := atom.ReadAtom(rest)
	require.NoError(t, err)
	falseVal, err := atom.Bool(falseBody)
	require.NoError(t, err)
	assert.False(t, falseVal)
}

func TestWriteStringNoPadding(t *testing.T) {
	s := newAtomSink(t, 32)
	require.NotEqual(t, sink.Null, atom.WriteString(s, tString, []byte("hi")))

	hdr, body, _, err := atom.ReadAtom(s.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hdr.Size)
	assert.Equal(t, "hi", string(body))
}

func TestTupleSizeAccumulates(t *testing.T) {
	s := newAtomSink(t, 64)
	var frame sink.Frame
	ref := atom.OpenTuple(s, &frame, tTuple)
	require.NotEqual(t, sink.Null, ref)

	require.NotEqual(t, sink.Null, atom.WriteInt32(s, tInt, 1))
	require.NotEqual(t, sink.Null, atom.WriteInt32(s, tInt, 2))
	atom.Close(s, &frame)

	tree, err := atom.Decode(s.Bytes(), tTuple, tObject)
	require.NoError(t, err)
	require.Len(t, tree.Items, 2)

	v0, _ := atom.Int32(tree.Items[0].Body)
	v1, _ := atom.Int32(tree.Items[1].Body)
	assert.EqualValues(t, 1, v0)
	assert.EqualValues(t, 2, v1)
}

func TestObjectPropertiesRoundTrip(t *testing.T) {
	s := newAtomSink(t, 64)
	var frame sink.Frame
	require.NotEqual(t, sink.Null, atom.OpenObject(s, &frame, tObject, 999))
	require.NotEqual(t, sink.Null, atom.WriteKey(s, 7))
	require.NotEqual(t, sink.Null, atom.WriteString(s, tString, []byte("value")))
	atom.Close(s, &frame)

	tree, err := atom.Decode(s.Bytes(), tTuple, tObject)
	require.NoError(t, err)
	assert.EqualValues(t, 999, tree.OType)
	require.Len(t, tree.Props, 1)
	assert.EqualValues(t, 7, tree.Props[0].Key)
	assert.Equal(t, "value", string(tree.Props[0].Value.Body))
}

func TestNestedTupleDecodeMatchesExpectedTree(t *testing.T) {
	s := newAtomSink(t, 96)
	var outer, inner sink.Frame
	require.NotEqual(t, sink.Null, atom.OpenTuple(s, &outer, tTuple))
	require.NotEqual(t, sink.Null, atom.WriteInt32(s, tInt, 10))
	require.NotEqual(t, sink.Null, atom.OpenTuple(s, &inner, tTuple))
	require.NotEqual(t, sink.Null, atom.WriteInt32(s, tInt, 20))
	atom.Close(s, &inner)
	atom.Close(s, &outer)

	got, err := atom.Decode(s.Bytes(), tTuple, tObject)
	require.NoError(t, err)

	want := atom.Tree{
		Type: tTuple,
		Items: []atom.Tree{
			{Type: tInt, Body: mustInt32Bytes(10)},
			{Type: tTuple, Items: []atom.Tree{
				{Type: tInt, Body: mustInt32Bytes(20)},
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func mustInt32Bytes(v int32) []byte {
	s := sink.NewBufferOrder(make([]byte, 12), atom.ByteOrder)
	atom.WriteInt32(s, tInt, v)
	_, body, _, _ := atom.ReadAtom(s.Bytes())
	return body
}

func TestWriteChunkRejectsNilData(t *testing.T) {
	s := newAtomSink(t, 8)
	assert.Equal(t, sink.Null, atom.WriteChunk(s, tChunk, nil))
}
