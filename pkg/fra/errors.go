package fra

import "fmt"

// MigrateErrorCode classifies migration failures: one code per failure
// mode. All of them surface to the caller, which decides whether the
// daemon can continue; this package never exits the process.
type MigrateErrorCode int

const (
	// ErrStat means the file's size could not be learned.
	ErrStat MigrateErrorCode = iota

	// ErrMap means mapping the file failed.
	ErrMap

	// ErrEmpty means the file has no content to migrate.
	ErrEmpty

	// ErrShort means the file is smaller than its record count
	// requires, so reading the claimed records would run past the end.
	ErrShort

	// ErrAlloc means the transform buffer could not be allocated.
	ErrAlloc

	// ErrResize means growing the file to the new size failed.
	ErrResize

	// ErrUnknownPair means no transform exists for the version pair.
	ErrUnknownPair
)

func (c MigrateErrorCode) String() string {
	switch c {
	case ErrStat:
		return "stat"
	case ErrMap:
		return "map"
	case ErrEmpty:
		return "empty"
	case ErrShort:
		return "short file"
	case ErrAlloc:
		return "alloc"
	case ErrResize:
		return "resize"
	case ErrUnknownPair:
		return "unknown version pair"
	default:
		return "unknown"
	}
}

// MigrateError carries the failure mode plus the file and version pair
// involved, and wraps the underlying system error when there is one.
type MigrateError struct {
	Code       MigrateErrorCode
	Path       string
	OldVersion byte
	NewVersion byte
	Err        error
}

func (e *MigrateError) Error() string {
	msg := fmt.Sprintf("migrate %s (%d -> %d): %s",
		e.Path, e.OldVersion, e.NewVersion, e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MigrateError) Unwrap() error { return e.Err }
