// Package compress provides compression and decompression codecs applied
// as an outer envelope around a serialized container tree.
//
// # Overview
//
// Serialization produces one exact byte stream: a depth-first walk of a
// container tree, each node prefixed by its reference ID. That stream's
// layout is fixed by the container image format and is never touched by
// this package. Compression instead wraps the whole stream as one opaque
// blob: compress after serializing, decompress before parsing. This keeps
// the serialized container format itself byte-exact while still letting
// callers trade CPU for size on the wire or on disk.
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): returns input unchanged, for callers
//     who want the uniform Codec interface without any compression cost.
//   - Zstd (format.CompressionZstd): best compression ratio, moderate
//     speed. Good for archived or rarely-read container snapshots.
//   - S2 (format.CompressionS2): balanced speed and ratio, Snappy-compatible.
//   - LZ4 (format.CompressionLZ4): fastest decompression, moderate ratio.
//     Good for container images read far more often than written.
//
// # Selection
//
// CreateCodec and GetCodec construct a Codec from a format.CompressionType,
// so a caller can pick an algorithm at configuration time and use the
// Codec interface uniformly afterward.
package compress
