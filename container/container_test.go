package container_test

import (
	"errors"
	"testing"

	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/value"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	b := builder.New(nil).SetContainerName("root")
	builder.SetScalar(b, "count", int32(7))
	c, err := b.Build()
	require.NoError(t, err)

	return c
}

func TestIndexOfResolvesByHashThenFullName(t *testing.T) {
	c := newTestContainer(t)

	require.Equal(t, 0, c.IndexOf("count"))
	require.Equal(t, -1, c.IndexOf("missing"))
}

func TestReadMissingFieldReturnsErrFieldMissing(t *testing.T) {
	c := newTestContainer(t)

	_, err := container.Read[int32](c, "nope")
	require.ErrorIs(t, err, errs.ErrFieldMissing)
}

func TestReadSizeMismatchReturnsErrSizeMismatch(t *testing.T) {
	c := newTestContainer(t)

	_, err := container.Read[int64](c, "count")
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestWriteInPlaceSameShapeDoesNotRescheme(t *testing.T) {
	c := newTestContainer(t)
	before := c.SchemaVersion()

	require.NoError(t, container.Write(c, "count", int32(99), false))

	v, err := container.Read[int32](c, "count")
	require.NoError(t, err)
	require.Equal(t, int32(99), v)
	require.Equal(t, before, c.SchemaVersion())
}

func TestWriteDifferentSizeWithoutReschemeErrors(t *testing.T) {
	c := newTestContainer(t)

	err := container.Write(c, "count", int64(1), false)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestWriteDifferentSizeWithReschemeBumpsSchemaVersion(t *testing.T) {
	c := newTestContainer(t)
	before := c.SchemaVersion()

	require.NoError(t, container.Write(c, "count", int64(123), true))

	v, err := container.Read[int64](c, "count")
	require.NoError(t, err)
	require.Equal(t, int64(123), v)
	require.Equal(t, before+1, c.SchemaVersion())
}

func TestWriteArrayRescheme(t *testing.T) {
	b := builder.New(nil)
	builder.SetArray(b, "values", []int32{1, 2, 3})
	c, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, container.WriteArray(c, "values", []int32{4, 5}, true))
	got, err := container.ReadArray[int32](c, "values")
	require.NoError(t, err)
	require.Equal(t, []int32{4, 5}, got)

	err = container.WriteArray(c, "values", []int64{1, 2}, false)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)

	require.NoError(t, container.WriteArray(c, "values", []int64{1, 2}, true))
	got64, err := container.ReadArray[int64](c, "values")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, got64)
}

func TestWriteRawRejectsWrongLength(t *testing.T) {
	c := newTestContainer(t)

	err := c.WriteRaw("count", []byte{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestWriteRawRejectsOverlappingBuffer(t *testing.T) {
	c := newTestContainer(t)

	i := c.IndexOf("count")
	alias, err := c.GetFieldBytes(i)
	require.NoError(t, err)

	err = c.WriteRaw("count", alias)
	require.ErrorIs(t, err, errs.ErrOverlappingBuffer)
}

func TestClearZeroesDataPreservingHeaders(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.Clear())

	v, err := container.Read[int32](c, "count")
	require.NoError(t, err)
	require.Zero(t, v)

	n, err := c.FieldCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestChangeFieldTypeConvertsStoredBytes(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.ChangeFieldType("count", value.Int64))

	v, err := container.Read[int64](c, "count")
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
}

func TestMakeArrayForcesArrayShape(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.MakeArray("count", value.UInt8, []byte{1, 2, 3}))

	got, err := container.ReadArray[uint8](c, "count")
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3}, got)
}

func TestRefFields(t *testing.T) {
	b := builder.New(nil)
	b.SetRef("parent", container.Null)
	c, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, container.SetRef(c, "parent", container.Reference(42), false))
	ref, err := container.GetRef(c, "parent")
	require.NoError(t, err)
	require.Equal(t, container.Reference(42), ref)
}

// TestSetRefPreservesTypeTagThroughSameShapeRewrite guards against SetRef
// deriving its FieldType tag from the uint64 Go type refs are encoded as:
// a second same-shape SetRef call must leave the field tagged Ref, not
// silently demote it to UInt64, since registry/serialize teardown and
// tree-walking both key off that tag.
func TestSetRefPreservesTypeTagThroughSameShapeRewrite(t *testing.T) {
	b := builder.New(nil)
	b.SetRef("parent", container.Null)
	c, err := b.Build()
	require.NoError(t, err)

	i := c.IndexOf("parent")
	require.GreaterOrEqual(t, i, 0)

	require.NoError(t, container.SetRef(c, "parent", container.Reference(42), false))
	fh, err := c.GetFieldHeader(i)
	require.NoError(t, err)
	require.Equal(t, value.Ref, fh.Type.Tag())

	// A second write down the same 8-byte same-shape path must not flip
	// the tag again.
	require.NoError(t, container.SetRef(c, "parent", container.Reference(99), false))
	fh, err = c.GetFieldHeader(i)
	require.NoError(t, err)
	require.Equal(t, value.Ref, fh.Type.Tag())
}

// TestSetRefSpanPreservesTypeTagThroughSameShapeRewrite is the array-field
// counterpart of TestSetRefPreservesTypeTagThroughSameShapeRewrite.
func TestSetRefSpanPreservesTypeTagThroughSameShapeRewrite(t *testing.T) {
	b := builder.New(nil)
	b.SetRefArray("children", []container.Reference{container.Null, container.Null})
	c, err := b.Build()
	require.NoError(t, err)

	i := c.IndexOf("children")
	require.GreaterOrEqual(t, i, 0)

	require.NoError(t, container.SetRefSpan(c, "children", []container.Reference{1, 2}, false))
	fh, err := c.GetFieldHeader(i)
	require.NoError(t, err)
	require.Equal(t, value.Ref, fh.Type.Tag())
	require.True(t, fh.Type.IsArray())
}

func TestLifecycleWildTrackedDisposed(t *testing.T) {
	c := newTestContainer(t)
	require.Equal(t, container.StateWild, c.State())
	require.True(t, c.ID().IsWild())

	c.BindReference(container.Reference(1))
	require.Equal(t, container.StateTracked, c.State())
	require.False(t, c.Disposed())

	gen := c.Generation()
	c.Dispose()
	require.True(t, c.Disposed())
	require.Equal(t, gen+1, c.Generation())

	// Dispose is idempotent.
	c.Dispose()
	require.Equal(t, gen+1, c.Generation())
}

func TestOperationsOnDisposedContainerReturnErrDisposed(t *testing.T) {
	c := newTestContainer(t)
	c.Dispose()

	_, err := container.Read[int32](c, "count")
	require.True(t, errors.Is(err, errs.ErrDisposed))
}

func TestCloneIsIndependent(t *testing.T) {
	c := newTestContainer(t)

	clone, err := c.Clone()
	require.NoError(t, err)

	require.NoError(t, container.Write(clone, "count", int32(1000), false))

	orig, err := container.Read[int32](c, "count")
	require.NoError(t, err)
	require.Equal(t, int32(7), orig)

	cloned, err := container.Read[int32](clone, "count")
	require.NoError(t, err)
	require.Equal(t, int32(1000), cloned)
}

func TestBase64RoundTrip(t *testing.T) {
	c := newTestContainer(t)

	encoded := c.EncodeBase64()
	decoded, err := container.DecodeBase64(encoded, nil)
	require.NoError(t, err)

	v, err := container.Read[int32](decoded, "count")
	require.NoError(t, err)
	require.Equal(t, int32(7), v)
}

func TestFromBytesRejectsMalformedImage(t *testing.T) {
	_, err := container.FromBytes([]byte{1, 2, 3}, nil)
	require.Error(t, err)
}

func TestGetFieldHeaderOutOfRange(t *testing.T) {
	c := newTestContainer(t)

	_, err := c.GetFieldHeader(5)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestFieldHeaderReportsElemSizeAndType(t *testing.T) {
	c := newTestContainer(t)

	fh, err := c.GetFieldHeader(0)
	require.NoError(t, err)
	require.Equal(t, value.Int32, fh.Type.Tag())
	require.Equal(t, 4, int(fh.ElemSize))
	require.False(t, fh.Type.IsArray())
}
