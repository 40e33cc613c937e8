// Package errs defines the sentinel errors returned by the rest of this
// module. Call sites wrap these with fmt.Errorf("...: %w", errs.ErrX) so
// callers can test the kind with errors.Is while still getting a specific
// message.
package errs

import "errors"

var (
	// ErrDisposed is returned when an operation targets a container whose
	// generation has already advanced past the caller's view of it.
	ErrDisposed = errors.New("fieldtree: container is disposed")

	// ErrFieldMissing is returned when a field name does not resolve to
	// any field in the container's directory.
	ErrFieldMissing = errors.New("fieldtree: field not found")

	// ErrSizeMismatch is returned when a typed read/write's element size
	// does not match the field's element size and reschema is disallowed.
	ErrSizeMismatch = errors.New("fieldtree: size mismatch")

	// ErrTypeMismatch is the error kind for a ref-only API used on a value
	// field, or a value API used on a ref field. GetRef, GetRefSpan and the
	// typed value readers do not check a field's Ref tag, so none of them
	// returns it.
	ErrTypeMismatch = errors.New("fieldtree: type mismatch")

	// ErrInvalidType is returned when the builder is asked to create a
	// Blob field without an explicit element size, or any field with an
	// unrecognized ValueType.
	ErrInvalidType = errors.New("fieldtree: invalid value type")

	// ErrOverlappingBuffer is returned when a caller supplies a byte slice
	// that aliases the container's own backing buffer.
	ErrOverlappingBuffer = errors.New("fieldtree: buffer overlaps container image")

	// ErrDuplicateFieldName is returned when a layout or builder would
	// produce two fields with identical names.
	ErrDuplicateFieldName = errors.New("fieldtree: duplicate field name")

	// ErrIndexOutOfRange is returned by array element or field index
	// access outside the valid range.
	ErrIndexOutOfRange = errors.New("fieldtree: index out of range")

	// ErrInvalidHeaderSize is returned when a byte slice handed to a
	// header parser is shorter than the expected fixed size.
	ErrInvalidHeaderSize = errors.New("fieldtree: invalid header size")

	// ErrInvalidImage is returned when a container image fails one of its
	// structural invariants (offsets, lengths).
	ErrInvalidImage = errors.New("fieldtree: invalid container image")

	// ErrNotTracked is returned when an operation that requires a live
	// registry ID is attempted on a wild container.
	ErrNotTracked = errors.New("fieldtree: container is not tracked")

	// ErrAlreadyTracked is returned by Registry.Register when the supplied
	// container already carries a live ID.
	ErrAlreadyTracked = errors.New("fieldtree: container is already tracked")

	// ErrUnknownReference is returned when a ContainerReference does not
	// resolve to any entry in the registry.
	ErrUnknownReference = errors.New("fieldtree: unknown container reference")

	// ErrHashCollision is returned when two distinct field names hash to
	// the same 32-bit NameHash and the caller tracked by hash alone.
	ErrHashCollision = errors.New("fieldtree: field name hash collision")

	// ErrCyclicReference is returned when a serialization walk (Encode or
	// Decode) detects a container reachable from itself. Ref writes do not
	// check for cycles.
	ErrCyclicReference = errors.New("fieldtree: cyclic reference detected")

	// ErrUnsupportedCompression is returned by the serializer's envelope
	// codec registry for an unrecognized codec identifier.
	ErrUnsupportedCompression = errors.New("fieldtree: unsupported compression codec")
)
