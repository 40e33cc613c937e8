package handle

import (
	"testing"

	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/stretchr/testify/require"
)

func TestFieldHandleResolvesAndCaches(t *testing.T) {
	b := builder.New(nil)
	builder.SetScalar(b, "count", int32(5))
	c, err := b.Build()
	require.NoError(t, err)

	h, err := NewFieldHandle(c, "count")
	require.NoError(t, err)

	i, err := h.Index()
	require.NoError(t, err)
	require.Equal(t, c.IndexOf("count"), i)
}

func TestFieldHandleMissingFieldErrors(t *testing.T) {
	b := builder.New(nil)
	c, err := b.Build()
	require.NoError(t, err)

	_, err = NewFieldHandle(c, "nope")
	require.Error(t, err)
}

func TestFieldHandleReResolvesAfterRescheme(t *testing.T) {
	b := builder.New(nil)
	builder.SetScalar(b, "a", int8(1))
	builder.SetScalar(b, "v", int32(5))
	c, err := b.Build()
	require.NoError(t, err)

	h, err := NewFieldHandle(c, "v")
	require.NoError(t, err)

	require.NoError(t, container.Write(c, "v", int64(99), true))

	val, err := container.Read[int64](c, "v")
	require.NoError(t, err)
	require.Equal(t, int64(99), val)

	i, err := h.Index()
	require.NoError(t, err)
	fh, err := c.GetFieldHeader(i)
	require.NoError(t, err)
	require.Equal(t, "v", mustFieldName(t, c, i))
	_ = fh
}

func mustFieldName(t *testing.T, c *container.Container, i int) string {
	t.Helper()
	name, err := c.FieldName(i)
	require.NoError(t, err)

	return name
}
