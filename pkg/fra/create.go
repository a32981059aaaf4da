package fra

import (
	"fmt"
	"os"
)

// Create writes a fresh, well-formed retrieve-area file with n zeroed
// records in the given format version. Used by first-boot provisioning
// and by tests; an existing file is truncated.
func Create(path string, n int, version byte) error {
	if version > CurrentVersion {
		return fmt.Errorf("create %s: unsupported version %d", path, version)
	}
	if n < 0 {
		return fmt.Errorf("create %s: negative record count", path)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, FileSize(version, n))
	WriteHeader(buf, Header{
		NumRecords: int32(n),
		Features:   0,
		Version:    version,
		PageSize:   int32(os.Getpagesize()),
	})

	// Zeroed records still need their identity sentinels.
	if HasField(version, FldIgnoreSize) || HasField(version, FldPriority) {
		var rec Record
		rec.Priority = DefaultPriority
		if HasField(version, FldIgnoreSize) {
			rec.IgnoreSize = NoIgnoreSize
		}
		if HasField(version, FldLockedFileTime) {
			rec.LockedFileTime = -1
		}
		if HasField(version, FldUnreadableFileTime) {
			rec.UnreadableFileTime = -1
		}
		size := RecordSize(version)
		base := HeaderSize(version)
		for i := 0; i < n; i++ {
			EncodeRecord(buf[base+i*size:base+(i+1)*size], &rec, version)
		}
	}

	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Sync()
}
