package serialize

import (
	"testing"

	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/format"
	"github.com/relsize/fieldtree/registry"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) (*registry.Registry, container.Reference) {
	t.Helper()
	reg := registry.New()

	rb := builder.New(nil).SetContainerName("root")
	rb.SetRef("a", container.Null)
	rb.SetRefArray("children", []container.Reference{container.Null})
	root, err := rb.Build()
	require.NoError(t, err)
	rootRef, err := reg.Register(root, container.Null, []string{"a", "children"})
	require.NoError(t, err)

	leafA := builder.New(nil).SetContainerName("leafA")
	builder.SetScalar(leafA, "value", int32(1))
	ca, err := leafA.Build()
	require.NoError(t, err)
	refA, err := reg.Register(ca, rootRef, nil)
	require.NoError(t, err)

	leafB := builder.New(nil).SetContainerName("leafB")
	builder.SetScalar(leafB, "value", int32(2))
	cb, err := leafB.Build()
	require.NoError(t, err)
	refB, err := reg.Register(cb, rootRef, nil)
	require.NoError(t, err)

	require.NoError(t, container.SetRef(root, "a", refA, false))
	require.NoError(t, container.SetRefSpan(root, "children", []container.Reference{refB}, false))

	return reg, rootRef
}

func TestEncodeDecodeRoundTripsTreeShape(t *testing.T) {
	reg, rootRef := buildTree(t)

	raw, err := Encode(reg, rootRef)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	reg2, newRoot, err := Decode(raw, nil)
	require.NoError(t, err)
	require.Equal(t, 3, reg2.Count())

	rootC, err := reg2.Get(newRoot)
	require.NoError(t, err)
	name, err := rootC.Name()
	require.NoError(t, err)
	require.Equal(t, "root", name)

	aRef, err := container.GetRef(rootC, "a")
	require.NoError(t, err)
	aC, err := reg2.Get(aRef)
	require.NoError(t, err)
	aVal, err := container.Read[int32](aC, "value")
	require.NoError(t, err)
	require.Equal(t, int32(1), aVal)

	childRefs, err := container.GetRefSpan(rootC, "children")
	require.NoError(t, err)
	require.Len(t, childRefs, 1)
	bC, err := reg2.Get(childRefs[0])
	require.NoError(t, err)
	bVal, err := container.Read[int32](bC, "value")
	require.NoError(t, err)
	require.Equal(t, int32(2), bVal)
}

func TestEncodeDecodeReassignsReferences(t *testing.T) {
	reg, rootRef := buildTree(t)

	raw, err := Encode(reg, rootRef)
	require.NoError(t, err)

	reg2, newRoot, err := Decode(raw, nil)
	require.NoError(t, err)

	// A decoded tree always gets fresh references from its new registry;
	// nothing about the old ones is preserved.
	require.Equal(t, container.Reference(1), newRoot)
}

func TestEncodeCompressedRoundTrips(t *testing.T) {
	reg, rootRef := buildTree(t)

	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionS2, format.CompressionLZ4, format.CompressionZstd} {
		blob, err := EncodeCompressed(reg, rootRef, ct)
		require.NoError(t, err)

		reg2, newRoot, err := DecodeCompressed(blob, nil)
		require.NoError(t, err)

		rootC, err := reg2.Get(newRoot)
		require.NoError(t, err)
		name, err := rootC.Name()
		require.NoError(t, err)
		require.Equal(t, "root", name)
	}
}

func TestDecodeEmptyStreamErrors(t *testing.T) {
	_, _, err := Decode(nil, nil)
	require.Error(t, err)
}
