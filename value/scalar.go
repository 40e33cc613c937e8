package value

// Scalar lists the Go types this package can encode/decode directly via
// generics. Ref and Blob are addressed separately (container.Reference,
// raw byte spans) since they have no single natural Go scalar type.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// TypeOf returns the value.Type tag that corresponds to Go type T.
func TypeOf[T Scalar]() Type {
	var z T
	switch any(z).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case uint8:
		return UInt8
	case int16:
		return Int16
	case uint16:
		return UInt16
	case int32:
		return Int32
	case uint32:
		return UInt32
	case int64:
		return Int64
	case uint64:
		return UInt64
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		return Unknown
	}
}

// DecodeScalar reads one little-endian element of Go type T from data's
// leading Size(TypeOf[T]()) bytes.
func DecodeScalar[T Scalar](data []byte) T {
	var out T
	switch p := any(&out).(type) {
	case *bool:
		*p = safeByte(data, 0) != 0
	case *int8:
		*p = int8(safeByte(data, 0))
	case *uint8:
		*p = safeByte(data, 0)
	case *int16:
		*p = int16(defaultEngine.Uint16(pad(data, 2)))
	case *uint16:
		*p = defaultEngine.Uint16(pad(data, 2))
	case *int32:
		*p = int32(defaultEngine.Uint32(pad(data, 4)))
	case *uint32:
		*p = defaultEngine.Uint32(pad(data, 4))
	case *int64:
		*p = int64(defaultEngine.Uint64(pad(data, 8)))
	case *uint64:
		*p = defaultEngine.Uint64(pad(data, 8))
	case *float32:
		*p = float32(asF64(data, Float32))
	case *float64:
		*p = asF64(data, Float64)
	}

	return out
}

// EncodeScalar writes v as a new little-endian byte slice of length
// Size(TypeOf[T]()).
func EncodeScalar[T Scalar](v T) []byte {
	switch x := any(v).(type) {
	case bool:
		if x {
			return []byte{1}
		}

		return []byte{0}
	case int8:
		return []byte{byte(x)}
	case uint8:
		return []byte{x}
	case int16:
		return fromU64(uint64(uint16(x)), Int16)
	case uint16:
		return fromU64(uint64(x), UInt16)
	case int32:
		return fromU64(uint64(uint32(x)), Int32)
	case uint32:
		return fromU64(uint64(x), UInt32)
	case int64:
		return fromU64(uint64(x), Int64)
	case uint64:
		return fromU64(x, UInt64)
	case float32:
		return fromF64(float64(x), Float32)
	case float64:
		return fromF64(x, Float64)
	default:
		return nil
	}
}
