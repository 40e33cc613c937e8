package fieldtree

import (
	"testing"

	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/format"
	"github.com/relsize/fieldtree/registry"
	"github.com/relsize/fieldtree/storage"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesDisposableRoot(t *testing.T) {
	root, err := New("session")
	require.NoError(t, err)
	require.False(t, root.Disposed())

	c, err := root.RootContainer()
	require.NoError(t, err)
	name, err := c.Name()
	require.NoError(t, err)
	require.Equal(t, "session", name)

	require.NoError(t, root.Dispose())
	require.True(t, root.Disposed())
}

func TestObjectPathResolvesNestedField(t *testing.T) {
	reg := registry.New()

	rb := NewBuilder(nil).SetContainerName("session")
	rb.SetRef("user", container.Null)
	rootC, err := rb.Build()
	require.NoError(t, err)
	rootRef, err := reg.Register(rootC, container.Null, []string{"user"})
	require.NoError(t, err)

	childB := NewBuilder(nil).SetContainerName("user")
	builder.SetScalar(childB, "age", int32(30))
	childC, err := childB.Build()
	require.NoError(t, err)
	childRef, err := reg.Register(childC, rootRef, nil)
	require.NoError(t, err)
	require.NoError(t, container.SetRef(rootC, "user", childRef, false))

	root := storage.New(reg, rootRef)
	defer root.Dispose()

	obj := Object(root)
	member, err := obj.Path("user.age")
	require.NoError(t, err)
	require.Equal(t, "age", member.Name())

	h, err := member.Handle()
	require.NoError(t, err)
	v, err := container.Read[int32](h.Container(), "age")
	require.NoError(t, err)
	require.Equal(t, int32(30), v)
}

func TestSaveOpenRoundTrips(t *testing.T) {
	root, err := New("session")
	require.NoError(t, err)
	defer root.Dispose()

	blob, err := Save(root)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	reopened, err := Open(blob, nil)
	require.NoError(t, err)
	defer reopened.Dispose()

	c, err := reopened.RootContainer()
	require.NoError(t, err)
	name, err := c.Name()
	require.NoError(t, err)
	require.Equal(t, "session", name)
}

func TestSaveOpenCompressedRoundTrips(t *testing.T) {
	root, err := New("session")
	require.NoError(t, err)
	defer root.Dispose()

	blob, err := SaveCompressed(root, format.CompressionZstd)
	require.NoError(t, err)

	reopened, err := OpenCompressed(blob, nil)
	require.NoError(t, err)
	defer reopened.Dispose()

	c, err := reopened.RootContainer()
	require.NoError(t, err)
	name, err := c.Name()
	require.NoError(t, err)
	require.Equal(t, "session", name)
}
