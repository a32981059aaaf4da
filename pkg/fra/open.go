package fra

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/fetchd-io/fetchd/internal/logger"
)

// Area is an open, mapped retrieve-area file at the current format
// version. Opening an older file migrates it in place first; the
// daemon-wide convention is that this happens once at startup, before
// reader processes attach.
type Area struct {
	f    *os.File
	path string
	data []byte
	size int64
	hdr  Header
}

// Open maps the retrieve-area file at path, upgrading it in place when
// its version byte is behind CurrentVersion.
func Open(path string, cfg MigrateConfig) (*Area, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open retrieve area %s: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat retrieve area %s: %w", path, err)
	}
	if st.Size() < int64(HeaderSize(0)) {
		f.Close()
		return nil, fmt.Errorf("retrieve area %s is too small (%d bytes)", path, st.Size())
	}

	head := make([]byte, 16)
	if _, err := f.ReadAt(head[:8], 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("read retrieve area header %s: %w", path, err)
	}
	version := PeekVersion(head)
	if version > CurrentVersion {
		f.Close()
		return nil, fmt.Errorf("retrieve area %s has version %d, newer than supported %d",
			path, version, CurrentVersion)
	}
	hdr := ReadHeader(head[:8])
	n := int(hdr.NumRecords)

	var data []byte
	size := st.Size()
	if version < CurrentVersion {
		data, err = Migrate(f, path, &size, n, version, CurrentVersion, cfg)
		if err != nil {
			f.Close()
			return nil, err
		}
	} else {
		if want := FileSize(version, n); size != want {
			logger.Warn("%s is %d bytes, expected %d", path, size, want)
		}
		data, err = unix.Mmap(int(f.Fd()), 0, int(size),
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("map retrieve area %s: %w", path, err)
		}
	}

	return &Area{
		f:    f,
		path: path,
		data: data,
		size: size,
		hdr:  ReadHeader(data),
	}, nil
}

// NumRecords returns the record count from the header.
func (a *Area) NumRecords() int { return int(a.hdr.NumRecords) }

// Header returns a copy of the file header.
func (a *Area) Header() Header { return a.hdr }

// Record decodes record i out of the mapping.
func (a *Area) Record(i int) (Record, error) {
	if i < 0 || i >= a.NumRecords() {
		return Record{}, fmt.Errorf("record index %d out of range [0,%d)", i, a.NumRecords())
	}
	base := HeaderSize(a.hdr.Version) + i*RecordSize(a.hdr.Version)
	return DecodeRecord(a.data[base:], a.hdr.Version), nil
}

// PutRecord encodes the record back into slot i of the mapping. Only
// the single startup writer may call this while readers are attached.
func (a *Area) PutRecord(i int, rec *Record) error {
	if i < 0 || i >= a.NumRecords() {
		return fmt.Errorf("record index %d out of range [0,%d)", i, a.NumRecords())
	}
	size := RecordSize(a.hdr.Version)
	base := HeaderSize(a.hdr.Version) + i*size
	EncodeRecord(a.data[base:base+size], rec, a.hdr.Version)
	return nil
}

// Sync flushes the mapping to disk.
func (a *Area) Sync() error {
	return unix.Msync(a.data, unix.MS_SYNC)
}

// Close unmaps and closes the file.
func (a *Area) Close() error {
	var first error
	if a.data != nil {
		if err := unix.Munmap(a.data); err != nil {
			first = err
		}
		a.data = nil
	}
	if err := a.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
