// Package fra implements the File Retrieve Area: the versioned,
// memory-mapped on-disk array of per-source-directory records that the
// retrieve daemon's scanners and retrievers share.
//
// The package covers the record schema registry for every format
// version still found in the field, in-place migration of a mapped
// file from any older version to a newer one, the flag-namespace split
// introduced with version 8, and the text rendering of a record's
// active options.
package fra

import "github.com/fetchd-io/fetchd/pkg/timecal"

// CurrentVersion is the record format version this daemon writes.
const CurrentVersion byte = 8

// Fixed string capacities (excluding the terminating NUL byte that the
// on-disk arrays reserve).
const (
	MaxDirAlias        = 10
	MaxHostAlias       = 8
	MaxURL             = 256
	MaxLsDataAlias     = 10
	MaxRetrieveWorkDir = 256
	MaxTimezone        = 32
	MaxWaitForFilename = 64
)

// Directory status values.
const (
	DirStatusNormal   uint8 = 0
	DirStatusWarn     uint8 = 1
	DirStatusInactive uint8 = 2
	DirStatusDisabled uint8 = 3
)

// dir_flag bits. The behavior bits below DirFlagDisabled moved into
// the dir_options word with version 8; they are kept here byte-for-byte
// for diagnostic reads of old records.
const (
	DirFlagAcceptDotFilesOld         uint32 = 1 << 0
	DirFlagDontGetDirListOld         uint32 = 1 << 1
	DirFlagDisabled                  uint32 = 1 << 2
	DirFlagInotifyRenameOld          uint32 = 1 << 3
	DirFlagInotifyCloseOld           uint32 = 1 << 4
	DirFlagInotifyCreateOld          uint32 = 1 << 5
	DirFlagInotifyDeleteOld          uint32 = 1 << 6
	DirFlagInotifyAttribOld          uint32 = 1 << 7
	DirFlagDoNotParallelizeOld       uint32 = 1 << 8
	DirFlagDoNotMoveOld              uint32 = 1 << 9
	DirFlagOneProcessJustScanningOld uint32 = 1 << 10
	DirFlagURLCreatesFileNameOld     uint32 = 1 << 11
	DirFlagURLWithIndexFileNameOld   uint32 = 1 << 12
	DirFlagNoDelimiterOld            uint32 = 1 << 13
	DirFlagKeepPathOld               uint32 = 1 << 14
)

// dir_options bits, the canonical home of the behavior flags from
// version 8 onward.
const (
	OptAcceptDotFiles         uint32 = 1 << 0
	OptDontGetDirList         uint32 = 1 << 1
	OptInotifyRename          uint32 = 1 << 2
	OptInotifyClose           uint32 = 1 << 3
	OptInotifyCreate          uint32 = 1 << 4
	OptInotifyDelete          uint32 = 1 << 5
	OptInotifyAttrib          uint32 = 1 << 6
	OptDoNotParallelize       uint32 = 1 << 7
	OptDoNotMove              uint32 = 1 << 8
	OptOneProcessJustScanning uint32 = 1 << 9
	OptURLCreatesFileName     uint32 = 1 << 10
	OptURLWithIndexFileName   uint32 = 1 << 11
	OptNoDelimiter            uint32 = 1 << 12
	OptKeepPath               uint32 = 1 << 13
)

// delete_files_flag bits and their in_dc_flag counterparts. A deletion
// class is only honored when both words carry the class bit.
const (
	UnknownFiles    uint8 = 1 << 0
	QueuedFiles     uint8 = 1 << 1
	OldLockedFiles  uint8 = 1 << 2
	UnreadableFiles uint8 = 1 << 3

	UnknownFilesIDC    uint32 = 1 << 0
	QueuedFilesIDC     uint32 = 1 << 1
	OldLockedFilesIDC  uint32 = 1 << 2
	UnreadableFilesIDC uint32 = 1 << 3
)

// gt_lt_sign values composing with ignore_size and ignore_file_time.
const (
	SignEqual       uint32 = 0
	SignGreaterThan uint32 = 1
	SignLessThan    uint32 = 2
)

// dup_check_flag bits: detection variant, action and hash algorithm.
const (
	DCFilenameOnly       uint32 = 1 << 0
	DCFilenameAndSize    uint32 = 1 << 1
	DCNameNoSuffix       uint32 = 1 << 2
	DCFileContent        uint32 = 1 << 3
	DCFileContentAndName uint32 = 1 << 4

	DCDelete uint32 = 1 << 8
	DCStore  uint32 = 1 << 9
	DCWarn   uint32 = 1 << 10

	DCCRC32   uint32 = 1 << 15
	DCCRC32c  uint32 = 1 << 16
	DCMurmur3 uint32 = 1 << 17
)

// Retrieval protocols.
const (
	ProtocolFTP  uint32 = 0
	ProtocolHTTP uint32 = 1
	ProtocolSFTP uint32 = 2
	ProtocolEXEC uint32 = 3
)

// NoIgnoreSize is the ignore_size sentinel meaning "no size filter".
const NoIgnoreSize int64 = -1

// DefaultPriority is the priority character assigned to directories
// without an explicit priority option.
const DefaultPriority byte = '9'

// Record is the version-independent logical view of one retrieve-area
// entry: everything version 8 carries. Older on-disk versions decode
// into this view with the missing fields left zero; the migrator then
// fills in the defined defaults.
type Record struct {
	// Identity.
	DirAlias        string
	HostAlias       string
	URL             string
	LsDataAlias     string
	RetrieveWorkDir string
	Timezone        string
	WaitForFilename string
	DirID           uint32
	FsaPos          int32

	// Schedule. TimeEntries[0] doubles as the single pre-v5 slot.
	TimeEntries      [timecal.MaxEntries]timecal.Entry
	NoOfTimeEntries  uint8
	AlternateTime    timecal.Entry
	NextCheckTime    int64
	LastRetrieval    int64
	DirMtime         int64
	InfoTime         int64
	WarnTime         int64
	StartEventHandle int64
	EndEventHandle   int64

	// Options.
	DirOptions         uint32
	DirFlag            uint32
	InDCFlag           uint32
	DeleteFilesFlag    uint8
	ReportUnknownFiles uint8
	ImportantDir       uint8
	StupidMode         uint8
	ForceReread        uint8
	Remove             uint8
	DirMode            uint32
	Priority           byte
	KeepConnected      uint32
	Protocol           uint32
	GtLtSign           uint32
	IgnoreFileTime     uint32
	IgnoreSize         int64
	DupCheckFlag       uint32
	DupCheckTimeout    int64

	// Limits and counters.
	MaxProcess         uint32
	NoOfProcess        uint32
	MaxErrors          uint32
	ErrorCounter       uint32
	MaxCopiedFiles     uint32
	MaxCopiedFileSize  int64
	Accumulate         uint32
	AccumulateSize     int64
	FilesReceived      uint32
	BytesReceived      uint64
	FilesInDir         uint32
	FilesQueued        uint32
	BytesInDir         int64
	BytesInQueue       int64
	EndCharacter       int32
	UnknownFileTime    int64
	QueuedFileTime     int64
	LockedFileTime     int64
	UnreadableFileTime int64

	// State.
	DirStatus  uint8
	QueuedFlag uint8

	// OldFileTime only exists in version 0 files, where it served as
	// the combined age limit that later split into UnknownFileTime and
	// QueuedFileTime.
	OldFileTime int64
}
