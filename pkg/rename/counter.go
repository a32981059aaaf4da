package rename

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// AlternateFilePrefix is the basename prefix of per-rule counter files.
const AlternateFilePrefix = ".alternate."

// CounterIOError wraps any counter-file failure. Callers substitute 0
// for the counter value when they see it; the rename itself proceeds.
type CounterIOError struct {
	Path string
	Err  error
}

func (e *CounterIOError) Error() string {
	return fmt.Sprintf("counter file %s: %v", e.Path, e.Err)
}

func (e *CounterIOError) Unwrap() error { return e.Err }

// CounterStore hands out the monotonic per-rule counters backing the
// %n and %a tokens. Each rule (keyed by job id) owns one small file in
// the fifo directory holding a single native int; concurrent daemons
// and tools serialize through a blocking write lock on its first byte.
type CounterStore struct {
	dir string
}

// NewCounterStore returns a store rooted at the fifo directory.
func NewCounterStore(fifoDir string) *CounterStore {
	return &CounterStore{dir: fifoDir}
}

// Path returns the counter file path for a job id.
func (s *CounterStore) Path(jobID uint32) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%x", AlternateFilePrefix, jobID))
}

// Next returns the current counter for the job and persists its
// successor, wrapping to 0 on signed overflow. Successive successful
// calls therefore yield 0, 1, 2, ... until wrap. Any I/O failure comes
// back as a *CounterIOError.
func (s *CounterStore) Next(jobID uint32) (int32, error) {
	path := s.Path(jobID)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return 0, &CounterIOError{Path: path, Err: err}
	}
	defer f.Close()

	// Blocking exclusive lock on the first byte; released on close.
	lock := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: 0,
		Start:  0,
		Len:    1,
	}
	if err := unix.FcntlFlock(f.Fd(), unix.F_SETLKW, &lock); err != nil {
		return 0, &CounterIOError{Path: path, Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		return 0, &CounterIOError{Path: path, Err: err}
	}

	var value int32
	if st.Size() > 0 {
		var buf [4]byte
		if _, err := f.ReadAt(buf[:], 0); err != nil {
			return 0, &CounterIOError{Path: path, Err: err}
		}
		value = int32(binary.NativeEndian.Uint32(buf[:]))
	}

	next := value + 1
	if value == math.MaxInt32 {
		next = 0
	}

	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(next))
	if _, err := f.WriteAt(buf[:], 0); err != nil {
		return 0, &CounterIOError{Path: path, Err: err}
	}

	return value, nil
}
