package detect

import (
	"bytes"
	"io"
	"os"

	"github.com/mmr-tortoise/unpack/internal/model"
)

// signature maps a byte pattern at a fixed offset to a type identifier.
type signature struct {
	// offset is the byte position where the magic bytes are expected.
	offset int

	// magic is the byte sequence to match at offset.
	magic []byte

	// typ is the identifier reported on a match.
	typ model.TypeIdentifier
}

// signatureTable lists the recognized content signatures. Order
// matters where one magic is a prefix of another (none currently
// collide, but compress 1F 9D vs gzip 1F 8B share a first byte, so
// both carry their full two-byte magic).
var signatureTable = []signature{
	// Zip: local file header, empty archive, and spanned archive markers.
	{offset: 0, magic: []byte{0x50, 0x4B, 0x03, 0x04}, typ: model.TypeZip},
	{offset: 0, magic: []byte{0x50, 0x4B, 0x05, 0x06}, typ: model.TypeZip},
	{offset: 0, magic: []byte{0x50, 0x4B, 0x07, 0x08}, typ: model.TypeZip},
	// Xz.
	{offset: 0, magic: []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, typ: model.TypeXz},
	// Zstandard frame.
	{offset: 0, magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, typ: model.TypeZstd},
	// LZ4 frame.
	{offset: 0, magic: []byte{0x04, 0x22, 0x4D, 0x18}, typ: model.TypeLZ4},
	// Bzip2 ("BZh").
	{offset: 0, magic: []byte{0x42, 0x5A, 0x68}, typ: model.TypeBzip2},
	// Gzip.
	{offset: 0, magic: []byte{0x1F, 0x8B}, typ: model.TypeGzip},
	// Legacy compress(1).
	{offset: 0, magic: []byte{0x1F, 0x9D}, typ: model.TypeCompress},
}

// maxHeaderLength is the number of leading bytes that suffice to match
// every entry in the signature table. Computed once at init so adding
// a deeper signature later cannot silently under-read.
var maxHeaderLength int

func init() {
	for _, sig := range signatureTable {
		if n := sig.offset + len(sig.magic); n > maxHeaderLength {
			maxHeaderLength = n
		}
	}
}

// Detector classifies file content into TypeIdentifiers.
//
// It is stateless; the struct exists as a receiver so callers can hold
// it as a dependency and tests can substitute a stub via the runner's
// Sniffer interface.
type Detector struct{}

// New creates a Detector.
func New() *Detector {
	return &Detector{}
}

// DetectFile classifies the content of the file at path.
//
// Inspection failures (missing file, permission denied) deliberately do
// not surface as errors: an uninspectable item reports TypeUnknown and
// the run continues. A file that could not be read for detection will
// not fare better in a handler, and the per-item failure accounting
// belongs to the caller.
func (d *Detector) DetectFile(path string) model.TypeIdentifier {
	f, err := os.Open(path)
	if err != nil {
		return model.TypeUnknown
	}
	defer f.Close()

	return d.DetectReader(f)
}

// DetectReader classifies content read from r. At most maxHeaderLength
// bytes are consumed.
func (d *Detector) DetectReader(r io.Reader) model.TypeIdentifier {
	buf := make([]byte, maxHeaderLength)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return model.TypeUnknown
	}

	return DetectBytes(buf[:n])
}

// DetectBytes classifies a header already held in memory. Short inputs
// simply fail the signatures they cannot cover.
func DetectBytes(data []byte) model.TypeIdentifier {
	for _, sig := range signatureTable {
		end := sig.offset + len(sig.magic)
		if end > len(data) {
			continue
		}
		if bytes.Equal(data[sig.offset:end], sig.magic) {
			return sig.typ
		}
	}
	return model.TypeUnknown
}
