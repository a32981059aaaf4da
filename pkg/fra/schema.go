package fra

// The schema registry: a single declarative table describing which
// fields each format version carries and in which order. Record layout,
// per-version record size and header size all derive from it; the
// migrator's field-copy pass is a consequence of two versions sharing a
// FieldID rather than hand-written per-pair code.

// FieldID names a logical record field across all versions.
type FieldID int

const (
	FldURL FieldID = iota
	FldDirAlias
	FldHostAlias
	FldLsDataAlias
	FldRetrieveWorkDir
	FldTimezone
	FldWaitForFilename
	FldDirID
	FldFsaPos
	FldTimeEntry
	FldTimeEntries
	FldNoOfTimeEntries
	FldAlternateTime
	FldNextCheckTime
	FldLastRetrieval
	FldDirMtime
	FldInfoTime
	FldWarnTime
	FldStartEventHandle
	FldEndEventHandle
	FldDirOptions
	FldDirFlag
	FldInDCFlag
	FldDeleteFilesFlag
	FldReportUnknownFiles
	FldImportantDir
	FldStupidMode
	FldForceReread
	FldRemove
	FldDirStatus
	FldQueued
	FldPriority
	FldDirMode
	FldKeepConnected
	FldProtocol
	FldGtLtSign
	FldIgnoreFileTime
	FldIgnoreSize
	FldDupCheckFlag
	FldDupCheckTimeout
	FldMaxProcess
	FldNoOfProcess
	FldMaxErrors
	FldErrorCounter
	FldMaxCopiedFiles
	FldMaxCopiedFileSize
	FldAccumulate
	FldAccumulateSize
	FldFilesReceived
	FldBytesReceived
	FldFilesInDir
	FldFilesQueued
	FldBytesInDir
	FldBytesInQueue
	FldEndCharacter
	FldOldFileTime
	FldUnknownFileTime
	FldQueuedFileTime
	FldLockedFileTime
	FldUnreadableFileTime
)

// FieldKind is the on-disk representation of a field. Multi-byte
// integers are host byte order, packed without padding.
type FieldKind int

const (
	KindBytes FieldKind = iota // fixed-length NUL-terminated byte array
	KindU8
	KindChar // single byte carrying an ASCII character
	KindU32
	KindI32
	KindU64
	KindI64
	KindEntry      // one serialized time entry (32 bytes)
	KindEntryArray // Len serialized time entries
)

// timeEntrySize is the serialized size of one time entry: two 8-byte
// minute words plus four 4-byte calendar words.
const timeEntrySize = 8 + 8 + 4 + 4 + 4 + 4

// Field describes one slot of the record layout: its identity, wire
// kind and the version span it exists in (From..To inclusive).
type Field struct {
	ID   FieldID
	Kind FieldKind
	Len  int // byte length for KindBytes, element count for KindEntryArray
	From byte
	To   byte
}

const toCurrent byte = 0xff

// recordFields is the master field order. A version's concrete layout
// is this list filtered to the fields whose span covers the version.
// The order and spans are frozen; changing either breaks every file in
// the field.
var recordFields = []Field{
	{ID: FldURL, Kind: KindBytes, Len: MaxURL + 1, From: 0, To: toCurrent},
	{ID: FldDirAlias, Kind: KindBytes, Len: MaxDirAlias + 1, From: 0, To: toCurrent},
	{ID: FldHostAlias, Kind: KindBytes, Len: MaxHostAlias + 1, From: 0, To: toCurrent},
	{ID: FldLsDataAlias, Kind: KindBytes, Len: MaxLsDataAlias + 1, From: 6, To: toCurrent},
	{ID: FldRetrieveWorkDir, Kind: KindBytes, Len: MaxRetrieveWorkDir + 1, From: 6, To: toCurrent},
	{ID: FldTimezone, Kind: KindBytes, Len: MaxTimezone + 1, From: 6, To: toCurrent},
	{ID: FldWaitForFilename, Kind: KindBytes, Len: MaxWaitForFilename + 1, From: 2, To: toCurrent},
	{ID: FldDirID, Kind: KindU32, From: 3, To: toCurrent},
	{ID: FldFsaPos, Kind: KindI32, From: 0, To: toCurrent},
	{ID: FldTimeEntry, Kind: KindEntry, From: 0, To: 4},
	{ID: FldTimeEntries, Kind: KindEntryArray, Len: 12, From: 5, To: toCurrent},
	{ID: FldNoOfTimeEntries, Kind: KindU8, From: 5, To: toCurrent},
	{ID: FldAlternateTime, Kind: KindEntry, From: 2, To: toCurrent},
	{ID: FldNextCheckTime, Kind: KindI64, From: 0, To: toCurrent},
	{ID: FldLastRetrieval, Kind: KindI64, From: 0, To: toCurrent},
	{ID: FldDirMtime, Kind: KindI64, From: 7, To: toCurrent},
	{ID: FldInfoTime, Kind: KindI64, From: 6, To: toCurrent},
	{ID: FldWarnTime, Kind: KindI64, From: 4, To: toCurrent},
	{ID: FldStartEventHandle, Kind: KindI64, From: 5, To: toCurrent},
	{ID: FldEndEventHandle, Kind: KindI64, From: 5, To: toCurrent},
	{ID: FldDirOptions, Kind: KindU32, From: 8, To: toCurrent},
	{ID: FldDirFlag, Kind: KindU32, From: 1, To: toCurrent},
	{ID: FldInDCFlag, Kind: KindU32, From: 3, To: toCurrent},
	{ID: FldDeleteFilesFlag, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldReportUnknownFiles, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldImportantDir, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldStupidMode, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldForceReread, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldRemove, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldDirStatus, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldQueued, Kind: KindU8, From: 0, To: toCurrent},
	{ID: FldPriority, Kind: KindChar, From: 0, To: toCurrent},
	{ID: FldDirMode, Kind: KindU32, From: 6, To: toCurrent},
	{ID: FldKeepConnected, Kind: KindU32, From: 4, To: toCurrent},
	{ID: FldProtocol, Kind: KindU32, From: 0, To: toCurrent},
	{ID: FldGtLtSign, Kind: KindU32, From: 2, To: toCurrent},
	{ID: FldIgnoreFileTime, Kind: KindU32, From: 2, To: toCurrent},
	{ID: FldIgnoreSize, Kind: KindI64, From: 2, To: toCurrent},
	{ID: FldDupCheckFlag, Kind: KindU32, From: 2, To: toCurrent},
	{ID: FldDupCheckTimeout, Kind: KindI64, From: 2, To: toCurrent},
	{ID: FldMaxProcess, Kind: KindU32, From: 0, To: toCurrent},
	{ID: FldNoOfProcess, Kind: KindU32, From: 0, To: toCurrent},
	{ID: FldMaxErrors, Kind: KindU32, From: 4, To: toCurrent},
	{ID: FldErrorCounter, Kind: KindU32, From: 4, To: toCurrent},
	{ID: FldMaxCopiedFiles, Kind: KindU32, From: 2, To: toCurrent},
	{ID: FldMaxCopiedFileSize, Kind: KindI64, From: 2, To: toCurrent},
	{ID: FldAccumulate, Kind: KindU32, From: 2, To: toCurrent},
	{ID: FldAccumulateSize, Kind: KindI64, From: 2, To: toCurrent},
	{ID: FldFilesReceived, Kind: KindU32, From: 0, To: toCurrent},
	{ID: FldBytesReceived, Kind: KindU64, From: 0, To: toCurrent},
	{ID: FldFilesInDir, Kind: KindU32, From: 1, To: toCurrent},
	{ID: FldFilesQueued, Kind: KindU32, From: 1, To: toCurrent},
	{ID: FldBytesInDir, Kind: KindI64, From: 1, To: toCurrent},
	{ID: FldBytesInQueue, Kind: KindI64, From: 1, To: toCurrent},
	{ID: FldEndCharacter, Kind: KindI32, From: 0, To: toCurrent},
	{ID: FldOldFileTime, Kind: KindI64, From: 0, To: 0},
	{ID: FldUnknownFileTime, Kind: KindI64, From: 1, To: toCurrent},
	{ID: FldQueuedFileTime, Kind: KindI64, From: 1, To: toCurrent},
	{ID: FldLockedFileTime, Kind: KindI64, From: 2, To: toCurrent},
	{ID: FldUnreadableFileTime, Kind: KindI64, From: 6, To: toCurrent},
}

func (f *Field) covers(version byte) bool {
	return version >= f.From && version <= f.To
}

// size returns the serialized byte length of the field.
func (f *Field) size() int {
	switch f.Kind {
	case KindBytes:
		return f.Len
	case KindU8, KindChar:
		return 1
	case KindU32, KindI32:
		return 4
	case KindU64, KindI64:
		return 8
	case KindEntry:
		return timeEntrySize
	case KindEntryArray:
		return f.Len * timeEntrySize
	default:
		return 0
	}
}

// Fields returns the ordered layout of the given format version.
func Fields(version byte) []Field {
	out := make([]Field, 0, len(recordFields))
	for _, f := range recordFields {
		if f.covers(version) {
			out = append(out, f)
		}
	}
	return out
}

// HasField reports whether the version's layout carries the field.
func HasField(version byte, id FieldID) bool {
	for _, f := range recordFields {
		if f.ID == id {
			return f.covers(version)
		}
	}
	return false
}

// RecordSize returns the serialized record size of the version.
func RecordSize(version byte) int {
	total := 0
	for _, f := range recordFields {
		if f.covers(version) {
			total += f.size()
		}
	}
	return total
}

// HeaderSize returns the byte offset of the first record: versions 0
// and 1 used an 8-byte header, later versions a 16-byte one that also
// records the creating host's page size.
func HeaderSize(version byte) int {
	if version <= 1 {
		return 8
	}
	return 16
}

// FileSize returns the well-formed file size for n records.
func FileSize(version byte, n int) int64 {
	return int64(HeaderSize(version)) + int64(n)*int64(RecordSize(version))
}
