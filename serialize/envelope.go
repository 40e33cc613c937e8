package serialize

import (
	"fmt"

	"github.com/relsize/fieldtree/compress"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/format"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/registry"
)

// EncodeCompressed is Encode followed by compressing the entire frame
// stream as one opaque blob under codecType, prefixed with a single byte
// identifying the codec so DecodeCompressed can pick the matching one
// back up without the caller having to remember it out of band.
func EncodeCompressed(reg *registry.Registry, root container.Reference, codecType format.CompressionType) ([]byte, error) {
	raw, err := Encode(reg, root)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(codecType)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w: %v", errs.ErrUnsupportedCompression, err)
	}
	compressed, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("serialize: compress: %w", err)
	}

	out := make([]byte, 0, len(compressed)+1)
	out = append(out, byte(codecType))
	out = append(out, compressed...)

	return out, nil
}

// DecodeCompressed reverses EncodeCompressed: it reads the leading codec
// byte, decompresses the remainder, and hands the result to Decode.
func DecodeCompressed(data []byte, p *pool.Pool) (*registry.Registry, container.Reference, error) {
	if len(data) < 1 {
		return nil, container.Null, fmt.Errorf("serialize: %w", errs.ErrInvalidImage)
	}

	codecType := format.CompressionType(data[0])
	codec, err := compress.GetCodec(codecType)
	if err != nil {
		return nil, container.Null, fmt.Errorf("serialize: %w: %v", errs.ErrUnsupportedCompression, err)
	}

	raw, err := codec.Decompress(data[1:])
	if err != nil {
		return nil, container.Null, fmt.Errorf("serialize: decompress: %w", err)
	}

	return Decode(raw, p)
}
