package builder

import (
	"testing"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/value"
	"github.com/stretchr/testify/require"
)

func TestBuildScalarFields(t *testing.T) {
	b := New(nil).SetContainerName("root")
	SetScalar(b, "count", int32(42))
	SetScalar(b, "active", true)

	c, err := b.Build()
	require.NoError(t, err)

	n, err := c.FieldCount()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	name, err := c.Name()
	require.NoError(t, err)
	require.Equal(t, "root", name)

	v, err := container.Read[int32](c, "count")
	require.NoError(t, err)
	require.Equal(t, int32(42), v)

	active, err := container.Read[bool](c, "active")
	require.NoError(t, err)
	require.True(t, active)
}

func TestBuildArrayField(t *testing.T) {
	b := New(nil)
	SetArray(b, "values", []int32{1, 2, 3})

	c, err := b.Build()
	require.NoError(t, err)

	got, err := container.ReadArray[int32](c, "values")
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, got)
}

func TestBuildRefFields(t *testing.T) {
	b := New(nil)
	b.SetRef("parent", container.Reference(7))
	b.SetRefArray("children", []container.Reference{1, 2, 3})

	c, err := b.Build()
	require.NoError(t, err)

	parent, err := container.GetRef(c, "parent")
	require.NoError(t, err)
	require.Equal(t, container.Reference(7), parent)

	kids, err := container.GetRefSpan(c, "children")
	require.NoError(t, err)
	require.Equal(t, []container.Reference{1, 2, 3}, kids)
}

func TestBuildDeterministicLayoutIgnoresStagingOrder(t *testing.T) {
	b1 := New(nil)
	SetScalar(b1, "b", int32(2))
	SetScalar(b1, "a", int32(1))

	b2 := New(nil)
	SetScalar(b2, "a", int32(1))
	SetScalar(b2, "b", int32(2))

	c1, err := b1.Build()
	require.NoError(t, err)
	c2, err := b2.Build()
	require.NoError(t, err)

	require.Equal(t, c1.Bytes(), c2.Bytes())
}

func TestBuildDuplicateFieldNameLastWriteWins(t *testing.T) {
	b := New(nil)
	SetScalar(b, "x", int32(1))
	SetScalar(b, "x", int32(2))

	c, err := b.Build()
	require.NoError(t, err)

	n, err := c.FieldCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	v, err := container.Read[int32](c, "x")
	require.NoError(t, err)
	require.Equal(t, int32(2), v)
}

func TestStampLayoutInstantiatesIndependentSiblings(t *testing.T) {
	tmpl := New(nil).SetContainerName("cell")
	SetScalar(tmpl, "x", int32(0))
	SetArray(tmpl, "tags", []int32{0})
	layout := tmpl.StampLayout()
	require.Equal(t, 2, layout.FieldCount())

	first, err := layout.Instantiate(nil, map[string][]byte{
		"x":    value.EncodeScalar(int32(1)),
		"tags": concatEncoded(int32(10), int32(11)),
	})
	require.NoError(t, err)

	second, err := layout.Instantiate(nil, map[string][]byte{
		"x":    value.EncodeScalar(int32(2)),
		"tags": concatEncoded(int32(20)),
	})
	require.NoError(t, err)

	x1, err := container.Read[int32](first, "x")
	require.NoError(t, err)
	require.Equal(t, int32(1), x1)

	x2, err := container.Read[int32](second, "x")
	require.NoError(t, err)
	require.Equal(t, int32(2), x2)

	tags1, err := container.ReadArray[int32](first, "tags")
	require.NoError(t, err)
	require.Equal(t, []int32{10, 11}, tags1)

	tags2, err := container.ReadArray[int32](second, "tags")
	require.NoError(t, err)
	require.Equal(t, []int32{20}, tags2)
}

func TestStampLayoutInstantiateMissingFieldErrors(t *testing.T) {
	tmpl := New(nil)
	SetScalar(tmpl, "x", int32(0))
	layout := tmpl.StampLayout()

	_, err := layout.Instantiate(nil, map[string][]byte{})
	require.Error(t, err)
}

func concatEncoded(vs ...int32) []byte {
	var out []byte
	for _, v := range vs {
		out = append(out, value.EncodeScalar(v)...)
	}

	return out
}
