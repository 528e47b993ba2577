package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// ByteSource yields raw bytes for a path and reports its size. Callers of
// the core inject a ByteSource rather than the core opening files directly,
// so a pass over a BGS archive, a test fixture directory, or an in-memory
// fixture set all satisfy the same contract.
type ByteSource interface {
	Open(path string) (io.ReadCloser, error)
	Size(path string) (int64, error)
}

// FileSource is the ByteSource backed directly by the local filesystem.
type FileSource struct{}

var _ ByteSource = FileSource{}

func (FileSource) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (FileSource) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// DecompressingSource wraps any ByteSource and transparently unwraps a
// recognized archive suffix via the codec registry, satisfying the
// interface-only decompression requirement on the source.
type DecompressingSource struct {
	Base ByteSource
}

var _ ByteSource = DecompressingSource{}

func (d DecompressingSource) Open(path string) (io.ReadCloser, error) {
	rc, err := d.Base.Open(path)
	if err != nil {
		return nil, err
	}

	codec, err := CodecForSuffix(filepath.Ext(path))
	if err != nil {
		rc.Close()

		return nil, err
	}
	if _, ok := codec.(NoOpCodec); ok {
		return rc, nil
	}

	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}

	decompressed, err := codec.Decompress(raw)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(decompressed)), nil
}

// Size reports the underlying (possibly compressed) source's size; a
// decompressed size is not known without reading the whole stream.
func (d DecompressingSource) Size(path string) (int64, error) {
	return d.Base.Size(path)
}
