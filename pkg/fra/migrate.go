package fra

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/fetchd-io/fetchd/internal/logger"
)

// MigrateConfig carries the daemon-wide defaults that new record
// fields receive when the old format did not store them. The values
// come from the daemon configuration; see pkg/config.
type MigrateConfig struct {
	DefaultKeepConnected uint32
	DefaultWarnTime      int64
	DefaultInfoTime      int64
	MaxCopiedFiles       uint32
	MaxCopiedFileSize    int64
}

// maxTransformBuffer bounds the in-memory transform buffer. A record
// count implying more than this is treated as corruption rather than
// handed to the allocator.
const maxTransformBuffer = 1 << 32

// Migrate upgrades a mapped retrieve-area file in place from oldVer to
// newVer. The file keeps its record count; each record is decoded from
// the old layout, transformed (field copy, defaults, derivations) and
// written back in the new layout, the file is grown to the new size,
// and the header is rewritten last so that a crash mid-migration never
// leaves a new-version header over old-version records.
//
// On success *size receives the new total file size and the returned
// slice is the new shared mapping of the whole file. On failure *size
// is set to -1 and the returned mapping is nil; the file still carries
// its old header. Errors are returned as *MigrateError and also logged
// with the file path; the caller decides whether to abort the daemon.
func Migrate(f *os.File, path string, size *int64, n int, oldVer, newVer byte, cfg MigrateConfig) ([]byte, error) {
	fail := func(code MigrateErrorCode, err error) ([]byte, error) {
		*size = -1
		merr := &MigrateError{Code: code, Path: path, OldVersion: oldVer, NewVersion: newVer, Err: err}
		logger.Error("Failed to migrate %s: %v", path, merr)
		return nil, merr
	}

	if newVer > CurrentVersion || oldVer >= newVer {
		return fail(ErrUnknownPair, nil)
	}
	if n <= 0 {
		return fail(ErrEmpty, nil)
	}

	st, err := f.Stat()
	if err != nil {
		return fail(ErrStat, err)
	}
	if st.Size() == 0 {
		return fail(ErrEmpty, nil)
	}
	if want := FileSize(oldVer, n); st.Size() < want {
		// A short file cannot hold the claimed records; refuse
		// rather than read past the end.
		return fail(ErrShort, nil)
	} else if st.Size() > want {
		logger.Warn("%s is %d bytes, expected %d for %d version-%d records",
			path, st.Size(), want, n, oldVer)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail(ErrMap, err)
	}

	oldFeatures := byte(0)
	if oldVer >= 4 {
		oldFeatures = data[5]
	}

	oldSize := RecordSize(oldVer)
	newSize := RecordSize(newVer)
	if int64(n)*int64(newSize) > maxTransformBuffer {
		_ = unix.Munmap(data)
		return fail(ErrAlloc, nil)
	}
	buffer := make([]byte, n*newSize)

	// Transform every record through the logical view. This pass is
	// purely functional over the old record bytes.
	oldBase := HeaderSize(oldVer)
	for i := 0; i < n; i++ {
		old := DecodeRecord(data[oldBase+i*oldSize:], oldVer)
		rec := transformRecord(&old, oldVer, newVer, cfg)
		EncodeRecord(buffer[i*newSize:(i+1)*newSize], &rec, newVer)
	}

	if err := unix.Munmap(data); err != nil {
		return fail(ErrMap, err)
	}

	newTotal := FileSize(newVer, n)
	if err := unix.Ftruncate(int(f.Fd()), newTotal); err != nil {
		return fail(ErrResize, err)
	}
	newData, err := unix.Mmap(int(f.Fd()), 0, int(newTotal),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail(ErrResize, err)
	}

	copy(newData[HeaderSize(newVer):], buffer)

	// The payload must be observable before the new header claims the
	// new version.
	if err := unix.Msync(newData, unix.MS_SYNC); err != nil {
		logger.Warn("msync of %s failed: %v", path, err)
	}

	features := byte(0)
	if newVer >= 5 && oldVer >= 4 {
		features = oldFeatures
	}
	WriteHeader(newData, Header{
		NumRecords: int32(n),
		Features:   features,
		Version:    newVer,
		PageSize:   int32(os.Getpagesize()),
	})

	*size = newTotal
	logger.Info("Migrated %s from version %d to %d (%d records, %d bytes)",
		path, oldVer, newVer, n, newTotal)
	return newData, nil
}

// transformRecord materializes a new-version record from an old one:
// shared fields carry over through the logical view, fields the new
// layout introduces get their defined defaults, and the derived rules
// for dir_options and the disabled bit run last.
func transformRecord(old *Record, oldVer, newVer byte, cfg MigrateConfig) Record {
	rec := *old

	// Version 0 kept one combined age limit; it feeds both split
	// fields on the way up.
	if HasField(oldVer, FldOldFileTime) && !HasField(newVer, FldOldFileTime) {
		rec.UnknownFileTime = old.OldFileTime
		rec.QueuedFileTime = old.OldFileTime
	}

	// Before the slot array existed a record held exactly one entry.
	if !HasField(oldVer, FldNoOfTimeEntries) && HasField(newVer, FldNoOfTimeEntries) {
		if !rec.TimeEntries[0].IsZero() {
			rec.NoOfTimeEntries = 1
		} else {
			rec.NoOfTimeEntries = 0
		}
	}

	if !HasField(oldVer, FldKeepConnected) && HasField(newVer, FldKeepConnected) {
		rec.KeepConnected = cfg.DefaultKeepConnected
	}
	if !HasField(oldVer, FldWarnTime) && HasField(newVer, FldWarnTime) {
		rec.WarnTime = cfg.DefaultWarnTime
	}
	if !HasField(oldVer, FldInfoTime) && HasField(newVer, FldInfoTime) {
		rec.InfoTime = cfg.DefaultInfoTime
	}
	if !HasField(oldVer, FldMaxCopiedFiles) && HasField(newVer, FldMaxCopiedFiles) {
		rec.MaxCopiedFiles = cfg.MaxCopiedFiles
		rec.MaxCopiedFileSize = cfg.MaxCopiedFileSize
	}
	if !HasField(oldVer, FldIgnoreSize) && HasField(newVer, FldIgnoreSize) {
		rec.IgnoreSize = NoIgnoreSize
	}
	if !HasField(oldVer, FldLockedFileTime) && HasField(newVer, FldLockedFileTime) {
		rec.LockedFileTime = -1
	}
	if !HasField(oldVer, FldUnreadableFileTime) && HasField(newVer, FldUnreadableFileTime) {
		rec.UnreadableFileTime = -1
	}

	// The v8 namespace split: behavior flags get their canonical home
	// in dir_options while dir_flag keeps its bytes for diagnostics.
	if newVer == CurrentVersion && oldVer <= 7 {
		rec.DirOptions = MigrateToDirOptions(rec.DirFlag)
	}

	// A disabled directory must carry the disabled bit once dir_flag
	// exists, even when the old record never set it.
	if rec.DirStatus == DirStatusDisabled && rec.DirFlag&DirFlagDisabled == 0 {
		rec.DirFlag |= DirFlagDisabled
	}

	return rec
}
