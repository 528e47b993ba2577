// Package source provides byte input for the demultiplexer: a ByteSource
// abstraction over the filesystem, transparent decompression of the archive
// suffixes the ground segment produces, and a pooled fixed-size frame
// reader.
package source

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/errs"
)

// Compressor compresses a byte slice.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte slice produced by the matching
// Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one compression algorithm.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[string]Codec{
	"":     NoOpCodec{},
	".gz":  GzipCodec{},
	".zst": ZstdCodec{},
	".s2":  S2Codec{},
	".lz4": LZ4Codec{},
}

// CodecForSuffix returns the registered Codec for a file suffix (including
// the leading dot, e.g. ".gz"; the empty string selects the no-op codec for
// uncompressed input).
func CodecForSuffix(suffix string) (Codec, error) {
	if c, ok := builtinCodecs[suffix]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("source: suffix %q: %w", suffix, errs.ErrUnsupportedCodec)
}
