package fra

import "encoding/binary"

// Header is the small block preceding the record array.
//
// Byte layout (offsets from file start):
//
//	0..3   record count, native int32
//	4      reserved
//	5      feature byte (meaningful from version 4 on)
//	6      reserved
//	7      format version, unsigned byte
//	8..11  creating host's page size (versions 2+)
//	12..15 reserved, zero (versions 2+)
//
// Byte 7 is the authoritative version identifier of the whole file.
type Header struct {
	NumRecords int32
	Features   byte
	Version    byte
	PageSize   int32
}

// versionByteOffset is where the format version lives in every header
// layout.
const versionByteOffset = 7

// ReadHeader decodes the header from the start of a mapped file. The
// version byte itself tells how much of the block is meaningful.
func ReadHeader(b []byte) Header {
	h := Header{
		NumRecords: int32(binary.NativeEndian.Uint32(b[0:4])),
		Features:   b[5],
		Version:    b[versionByteOffset],
	}
	if h.Version >= 2 && len(b) >= 16 {
		h.PageSize = int32(binary.NativeEndian.Uint32(b[8:12]))
	}
	return h
}

// WriteHeader encodes the header into the start of a mapped file,
// writing exactly HeaderSize(h.Version) bytes.
func WriteHeader(b []byte, h Header) {
	binary.NativeEndian.PutUint32(b[0:4], uint32(h.NumRecords))
	b[4] = 0
	b[5] = h.Features
	b[6] = 0
	b[versionByteOffset] = h.Version
	if h.Version >= 2 {
		binary.NativeEndian.PutUint32(b[8:12], uint32(h.PageSize))
		for i := 12; i < 16; i++ {
			b[i] = 0
		}
	}
}

// PeekVersion returns the version byte of a header block.
func PeekVersion(b []byte) byte {
	return b[versionByteOffset]
}
