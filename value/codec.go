package value

import (
	"math"

	"github.com/relsize/fieldtree/endian"
)

// defaultEngine is the little-endian engine every container image uses.
// It is exposed as a var, not a constant, only so call sites read
// naturally as engine.PutUint32 etc; every public
// entry point in this package is pinned to little-endian and does not
// accept an alternate engine.
var defaultEngine = endian.GetLittleEndianEngine()

// Read copies one element of type t from src into a freshly allocated
// byte slice sized to Size(t). If src is shorter than Size(t), the
// element is read from as many leading bytes as are available and the
// tail is zero-filled; callers that need strict bounds checking should
// validate len(src) themselves (layout guarantees this for well-formed
// containers).
func Read(src []byte, t Type) []byte {
	n := Size(t)
	out := make([]byte, n)
	copy(out, src)

	return out
}

// Write encodes v (already in its little-endian byte form, e.g. produced by
// PutUint32/PutFloat64 helpers below) into dst, zero-filling any trailing
// bytes of dst beyond len(v). dst must be at least len(v) bytes; Write
// copies min(len(dst), len(v)) bytes.
func Write(dst, v []byte) {
	n := copy(dst, v)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// IsZero reports whether the little-endian encoded element in src is the
// numeric zero value for t.
func IsZero(src []byte, t Type) bool {
	n := Size(t)
	if n == 0 {
		n = len(src)
	}
	for i := 0; i < n && i < len(src); i++ {
		if src[i] != 0 {
			return false
		}
	}

	return true
}

// asU64 widens the little-endian encoding of an integer-like type (Bool,
// Int8, UInt8, Char16, Int16, UInt16, Int32, UInt32, Int64, UInt64, Ref)
// to a u64, sign-extending signed types.
func asU64(src []byte, t Type) uint64 {
	switch t {
	case Bool, UInt8:
		return uint64(safeByte(src, 0))
	case Int8:
		return uint64(int64(int8(safeByte(src, 0))))
	case Char16, UInt16:
		return uint64(defaultEngine.Uint16(pad(src, 2)))
	case Int16:
		return uint64(int64(int16(defaultEngine.Uint16(pad(src, 2)))))
	case UInt32:
		return uint64(defaultEngine.Uint32(pad(src, 4)))
	case Int32:
		return uint64(int64(int32(defaultEngine.Uint32(pad(src, 4)))))
	case UInt64, Ref:
		return defaultEngine.Uint64(pad(src, 8))
	case Int64:
		return defaultEngine.Uint64(pad(src, 8))
	default:
		return 0
	}
}

func fromU64(v uint64, t Type) []byte {
	switch t {
	case Bool:
		if v != 0 {
			return []byte{1}
		}

		return []byte{0}
	case Int8, UInt8:
		return []byte{byte(v)}
	case Char16, UInt16, Int16:
		b := make([]byte, 2)
		defaultEngine.PutUint16(b, uint16(v))

		return b
	case Int32, UInt32:
		b := make([]byte, 4)
		defaultEngine.PutUint32(b, uint32(v))

		return b
	case Int64, UInt64, Ref:
		b := make([]byte, 8)
		defaultEngine.PutUint64(b, v)

		return b
	default:
		return nil
	}
}

func asF64(src []byte, t Type) float64 {
	switch t {
	case Float32:
		return float64(math.Float32frombits(defaultEngine.Uint32(pad(src, 4))))
	case Float64:
		return math.Float64frombits(defaultEngine.Uint64(pad(src, 8)))
	default:
		return 0
	}
}

func fromF64(v float64, t Type) []byte {
	switch t {
	case Float32:
		b := make([]byte, 4)
		defaultEngine.PutUint32(b, math.Float32bits(float32(v)))

		return b
	case Float64:
		b := make([]byte, 8)
		defaultEngine.PutUint64(b, math.Float64bits(v))

		return b
	default:
		return nil
	}
}

func isInteger(t Type) bool {
	switch t {
	case Bool, Int8, UInt8, Char16, Int16, UInt16, Int32, UInt32, Int64, UInt64, Ref:
		return true
	default:
		return false
	}
}

func isFloat(t Type) bool {
	return t == Float32 || t == Float64
}

func isSigned(t Type) bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

func safeByte(b []byte, i int) byte {
	if i < len(b) {
		return b[i]
	}

	return 0
}

// pad returns a slice of exactly n bytes, truncating or zero-padding src.
func pad(src []byte, n int) []byte {
	if len(src) == n {
		return src
	}

	out := make([]byte, n)
	copy(out, src)

	return out
}

// Convert migrates one element's bytes from type from to type to. dst
// must already be sized to Size(to) (or the caller's chosen length for
// Blob); it is fully overwritten: converted bytes followed by zero-fill
// for any remaining tail.
//
// explicit is currently unused; every conversion this package implements
// is value-preserving or truncating as described below regardless of its
// value.
//
// Returns true if a real conversion took place, false if the fallback raw
// copy was used (Unknown on either side, or an unconvertible pair).
func Convert(dst, src []byte, from, to Type, explicit bool) bool {
	_ = explicit

	if from == Unknown || to == Unknown {
		rawCopy(dst, src)

		return false
	}

	if from == to && Size(from) == Size(to) {
		rawCopy(dst, src)

		return false
	}

	switch {
	case from == Bool || to == Bool:
		return convertBool(dst, src, from, to)
	case isInteger(from) && isInteger(to):
		fromU := asU64(src, from)
		Write(dst, fromU64(fromU, to))

		return true
	case isInteger(from) && isFloat(to):
		var f float64
		if isSigned(from) {
			f = float64(int64(asU64(src, from)))
		} else {
			f = float64(asU64(src, from))
		}
		Write(dst, fromF64(f, to))

		return true
	case isFloat(from) && isInteger(to):
		f := asF64(src, from)
		var u uint64
		if math.IsNaN(f) || math.IsInf(f, 0) {
			u = 0
		} else {
			u = uint64(int64(math.Trunc(f)))
		}
		Write(dst, fromU64(u, to))

		return true
	case isFloat(from) && isFloat(to):
		Write(dst, fromF64(asF64(src, from), to))

		return true
	default:
		rawCopy(dst, src)

		return false
	}
}

func convertBool(dst, src []byte, from, to Type) bool {
	if from == Bool && to == Bool {
		rawCopy(dst, src)

		return false
	}

	if from == Bool {
		v := safeByte(src, 0) != 0
		var u uint64
		if v {
			u = 1
		}
		if isFloat(to) {
			Write(dst, fromF64(float64(u), to))
		} else {
			Write(dst, fromU64(u, to))
		}

		return true
	}

	// to == Bool: nonzero source element -> true.
	nonZero := !IsZero(src, from)
	if nonZero {
		Write(dst, []byte{1})
	} else {
		Write(dst, []byte{0})
	}

	return true
}

func rawCopy(dst, src []byte) {
	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// ConvertArray migrates a whole array payload from oldType to newType. It
// only performs element-wise conversion when both
// slices are element-aligned (len % elemSize == 0 for their respective
// element sizes); otherwise it falls back to the same raw-copy semantics
// as Convert. Unconvertible or short cells are zero-filled, and any
// destination tail beyond the number of whole source elements is
// zero-filled too.
func ConvertArray(dst, src []byte, oldType, newType Type) {
	oldSize := Size(oldType)
	newSize := Size(newType)

	if oldSize == 0 || newSize == 0 || len(src)%oldSize != 0 || len(dst)%newSize != 0 {
		rawCopy(dst, src)

		return
	}

	oldCount := len(src) / oldSize
	newCount := len(dst) / newSize
	n := oldCount
	if newCount < n {
		n = newCount
	}

	for i := 0; i < n; i++ {
		srcElem := src[i*oldSize : (i+1)*oldSize]
		dstElem := dst[i*newSize : (i+1)*newSize]
		Convert(dstElem, srcElem, oldType, newType, true)
	}

	for i := n * newSize; i < len(dst); i++ {
		dst[i] = 0
	}
}
