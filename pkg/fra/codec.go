package fra

import (
	"bytes"
	"encoding/binary"

	"github.com/fetchd-io/fetchd/pkg/bitset"
	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// The record codec. Records live on disk in the packed, host-order
// layout described by the schema registry; in memory they are plain
// value types. The mapped region is only ever treated as a byte view,
// decoded into Record values for inspection or transformation and
// encoded back for commit.

// DecodeRecord deserializes one record of the given version from b.
// Fields absent from the version are left at their zero value.
func DecodeRecord(b []byte, version byte) Record {
	var r Record
	off := 0
	for _, f := range recordFields {
		if !f.covers(version) {
			continue
		}
		raw := b[off : off+f.size()]
		decodeField(&r, &f, raw)
		off += f.size()
	}
	return r
}

// EncodeRecord serializes the record into b, which must be at least
// RecordSize(version) bytes. Fields the version does not carry are
// skipped.
func EncodeRecord(b []byte, r *Record, version byte) {
	off := 0
	for _, f := range recordFields {
		if !f.covers(version) {
			continue
		}
		encodeField(b[off:off+f.size()], r, &f)
		off += f.size()
	}
}

func decodeField(r *Record, f *Field, raw []byte) {
	switch f.ID {
	case FldURL:
		r.URL = decodeString(raw)
	case FldDirAlias:
		r.DirAlias = decodeString(raw)
	case FldHostAlias:
		r.HostAlias = decodeString(raw)
	case FldLsDataAlias:
		r.LsDataAlias = decodeString(raw)
	case FldRetrieveWorkDir:
		r.RetrieveWorkDir = decodeString(raw)
	case FldTimezone:
		r.Timezone = decodeString(raw)
	case FldWaitForFilename:
		r.WaitForFilename = decodeString(raw)
	case FldDirID:
		r.DirID = decodeU32(raw)
	case FldFsaPos:
		r.FsaPos = int32(decodeU32(raw))
	case FldTimeEntry:
		r.TimeEntries[0] = decodeEntry(raw)
	case FldTimeEntries:
		for i := 0; i < f.Len; i++ {
			r.TimeEntries[i] = decodeEntry(raw[i*timeEntrySize:])
		}
	case FldNoOfTimeEntries:
		// Clamp against corruption: callers slice TimeEntries by
		// this count.
		r.NoOfTimeEntries = raw[0]
		if r.NoOfTimeEntries > timecal.MaxEntries {
			r.NoOfTimeEntries = timecal.MaxEntries
		}
	case FldAlternateTime:
		r.AlternateTime = decodeEntry(raw)
	case FldNextCheckTime:
		r.NextCheckTime = decodeI64(raw)
	case FldLastRetrieval:
		r.LastRetrieval = decodeI64(raw)
	case FldDirMtime:
		r.DirMtime = decodeI64(raw)
	case FldInfoTime:
		r.InfoTime = decodeI64(raw)
	case FldWarnTime:
		r.WarnTime = decodeI64(raw)
	case FldStartEventHandle:
		r.StartEventHandle = decodeI64(raw)
	case FldEndEventHandle:
		r.EndEventHandle = decodeI64(raw)
	case FldDirOptions:
		r.DirOptions = decodeU32(raw)
	case FldDirFlag:
		r.DirFlag = decodeU32(raw)
	case FldInDCFlag:
		r.InDCFlag = decodeU32(raw)
	case FldDeleteFilesFlag:
		r.DeleteFilesFlag = raw[0]
	case FldReportUnknownFiles:
		r.ReportUnknownFiles = raw[0]
	case FldImportantDir:
		r.ImportantDir = raw[0]
	case FldStupidMode:
		r.StupidMode = raw[0]
	case FldForceReread:
		r.ForceReread = raw[0]
	case FldRemove:
		r.Remove = raw[0]
	case FldDirStatus:
		r.DirStatus = raw[0]
	case FldQueued:
		r.QueuedFlag = raw[0]
	case FldPriority:
		r.Priority = raw[0]
	case FldDirMode:
		r.DirMode = decodeU32(raw)
	case FldKeepConnected:
		r.KeepConnected = decodeU32(raw)
	case FldProtocol:
		r.Protocol = decodeU32(raw)
	case FldGtLtSign:
		r.GtLtSign = decodeU32(raw)
	case FldIgnoreFileTime:
		r.IgnoreFileTime = decodeU32(raw)
	case FldIgnoreSize:
		r.IgnoreSize = decodeI64(raw)
	case FldDupCheckFlag:
		r.DupCheckFlag = decodeU32(raw)
	case FldDupCheckTimeout:
		r.DupCheckTimeout = decodeI64(raw)
	case FldMaxProcess:
		r.MaxProcess = decodeU32(raw)
	case FldNoOfProcess:
		r.NoOfProcess = decodeU32(raw)
	case FldMaxErrors:
		r.MaxErrors = decodeU32(raw)
	case FldErrorCounter:
		r.ErrorCounter = decodeU32(raw)
	case FldMaxCopiedFiles:
		r.MaxCopiedFiles = decodeU32(raw)
	case FldMaxCopiedFileSize:
		r.MaxCopiedFileSize = decodeI64(raw)
	case FldAccumulate:
		r.Accumulate = decodeU32(raw)
	case FldAccumulateSize:
		r.AccumulateSize = decodeI64(raw)
	case FldFilesReceived:
		r.FilesReceived = decodeU32(raw)
	case FldBytesReceived:
		r.BytesReceived = binary.NativeEndian.Uint64(raw)
	case FldFilesInDir:
		r.FilesInDir = decodeU32(raw)
	case FldFilesQueued:
		r.FilesQueued = decodeU32(raw)
	case FldBytesInDir:
		r.BytesInDir = decodeI64(raw)
	case FldBytesInQueue:
		r.BytesInQueue = decodeI64(raw)
	case FldEndCharacter:
		r.EndCharacter = int32(decodeU32(raw))
	case FldOldFileTime:
		r.OldFileTime = decodeI64(raw)
	case FldUnknownFileTime:
		r.UnknownFileTime = decodeI64(raw)
	case FldQueuedFileTime:
		r.QueuedFileTime = decodeI64(raw)
	case FldLockedFileTime:
		r.LockedFileTime = decodeI64(raw)
	case FldUnreadableFileTime:
		r.UnreadableFileTime = decodeI64(raw)
	}
}

func encodeField(raw []byte, r *Record, f *Field) {
	switch f.ID {
	case FldURL:
		encodeString(raw, r.URL)
	case FldDirAlias:
		encodeString(raw, r.DirAlias)
	case FldHostAlias:
		encodeString(raw, r.HostAlias)
	case FldLsDataAlias:
		encodeString(raw, r.LsDataAlias)
	case FldRetrieveWorkDir:
		encodeString(raw, r.RetrieveWorkDir)
	case FldTimezone:
		encodeString(raw, r.Timezone)
	case FldWaitForFilename:
		encodeString(raw, r.WaitForFilename)
	case FldDirID:
		encodeU32(raw, r.DirID)
	case FldFsaPos:
		encodeU32(raw, uint32(r.FsaPos))
	case FldTimeEntry:
		encodeEntry(raw, &r.TimeEntries[0])
	case FldTimeEntries:
		for i := 0; i < f.Len; i++ {
			encodeEntry(raw[i*timeEntrySize:], &r.TimeEntries[i])
		}
	case FldNoOfTimeEntries:
		raw[0] = r.NoOfTimeEntries
	case FldAlternateTime:
		encodeEntry(raw, &r.AlternateTime)
	case FldNextCheckTime:
		encodeI64(raw, r.NextCheckTime)
	case FldLastRetrieval:
		encodeI64(raw, r.LastRetrieval)
	case FldDirMtime:
		encodeI64(raw, r.DirMtime)
	case FldInfoTime:
		encodeI64(raw, r.InfoTime)
	case FldWarnTime:
		encodeI64(raw, r.WarnTime)
	case FldStartEventHandle:
		encodeI64(raw, r.StartEventHandle)
	case FldEndEventHandle:
		encodeI64(raw, r.EndEventHandle)
	case FldDirOptions:
		encodeU32(raw, r.DirOptions)
	case FldDirFlag:
		encodeU32(raw, r.DirFlag)
	case FldInDCFlag:
		encodeU32(raw, r.InDCFlag)
	case FldDeleteFilesFlag:
		raw[0] = r.DeleteFilesFlag
	case FldReportUnknownFiles:
		raw[0] = r.ReportUnknownFiles
	case FldImportantDir:
		raw[0] = r.ImportantDir
	case FldStupidMode:
		raw[0] = r.StupidMode
	case FldForceReread:
		raw[0] = r.ForceReread
	case FldRemove:
		raw[0] = r.Remove
	case FldDirStatus:
		raw[0] = r.DirStatus
	case FldQueued:
		raw[0] = r.QueuedFlag
	case FldPriority:
		raw[0] = r.Priority
	case FldDirMode:
		encodeU32(raw, r.DirMode)
	case FldKeepConnected:
		encodeU32(raw, r.KeepConnected)
	case FldProtocol:
		encodeU32(raw, r.Protocol)
	case FldGtLtSign:
		encodeU32(raw, r.GtLtSign)
	case FldIgnoreFileTime:
		encodeU32(raw, r.IgnoreFileTime)
	case FldIgnoreSize:
		encodeI64(raw, r.IgnoreSize)
	case FldDupCheckFlag:
		encodeU32(raw, r.DupCheckFlag)
	case FldDupCheckTimeout:
		encodeI64(raw, r.DupCheckTimeout)
	case FldMaxProcess:
		encodeU32(raw, r.MaxProcess)
	case FldNoOfProcess:
		encodeU32(raw, r.NoOfProcess)
	case FldMaxErrors:
		encodeU32(raw, r.MaxErrors)
	case FldErrorCounter:
		encodeU32(raw, r.ErrorCounter)
	case FldMaxCopiedFiles:
		encodeU32(raw, r.MaxCopiedFiles)
	case FldMaxCopiedFileSize:
		encodeI64(raw, r.MaxCopiedFileSize)
	case FldAccumulate:
		encodeU32(raw, r.Accumulate)
	case FldAccumulateSize:
		encodeI64(raw, r.AccumulateSize)
	case FldFilesReceived:
		encodeU32(raw, r.FilesReceived)
	case FldBytesReceived:
		binary.NativeEndian.PutUint64(raw, r.BytesReceived)
	case FldFilesInDir:
		encodeU32(raw, r.FilesInDir)
	case FldFilesQueued:
		encodeU32(raw, r.FilesQueued)
	case FldBytesInDir:
		encodeI64(raw, r.BytesInDir)
	case FldBytesInQueue:
		encodeI64(raw, r.BytesInQueue)
	case FldEndCharacter:
		encodeU32(raw, uint32(r.EndCharacter))
	case FldOldFileTime:
		encodeI64(raw, r.OldFileTime)
	case FldUnknownFileTime:
		encodeI64(raw, r.UnknownFileTime)
	case FldQueuedFileTime:
		encodeI64(raw, r.QueuedFileTime)
	case FldLockedFileTime:
		encodeI64(raw, r.LockedFileTime)
	case FldUnreadableFileTime:
		encodeI64(raw, r.UnreadableFileTime)
	}
}

// decodeString extracts the NUL-terminated prefix of a fixed array.
func decodeString(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// encodeString copies the string into the fixed array, truncating to
// leave room for the terminating NUL, and zero-fills the remainder.
func encodeString(raw []byte, s string) {
	n := copy(raw[:len(raw)-1], s)
	for i := n; i < len(raw); i++ {
		raw[i] = 0
	}
}

func decodeU32(raw []byte) uint32 { return binary.NativeEndian.Uint32(raw) }

func encodeU32(raw []byte, v uint32) { binary.NativeEndian.PutUint32(raw, v) }

func decodeI64(raw []byte) int64 { return int64(binary.NativeEndian.Uint64(raw)) }

func encodeI64(raw []byte, v int64) { binary.NativeEndian.PutUint64(raw, uint64(v)) }

func decodeEntry(raw []byte) timecal.Entry {
	e := timecal.NewEntry()
	e.Minute = bitset.SetFromBytes(raw[0:8], bitset.MinuteBits)
	e.ContinuousMinute = bitset.SetFromBytes(raw[8:16], bitset.MinuteBits)
	e.Hour = bitset.FromWord(uint64(binary.NativeEndian.Uint32(raw[16:20])), bitset.HourBits)
	e.DayOfMonth = bitset.FromWord(uint64(binary.NativeEndian.Uint32(raw[20:24])), bitset.DayOfMonthBits)
	e.SetMonthWord(uint64(binary.NativeEndian.Uint32(raw[24:28])))
	e.DayOfWeek = bitset.FromWord(uint64(binary.NativeEndian.Uint32(raw[28:32])), bitset.DayOfWeekBits)
	return e
}

func encodeEntry(raw []byte, e *timecal.Entry) {
	binary.NativeEndian.PutUint64(raw[0:8], e.Minute.Word())
	binary.NativeEndian.PutUint64(raw[8:16], e.ContinuousMinute.Word())
	binary.NativeEndian.PutUint32(raw[16:20], uint32(e.Hour.Word()))
	binary.NativeEndian.PutUint32(raw[20:24], uint32(e.DayOfMonth.Word()))
	binary.NativeEndian.PutUint32(raw[24:28], uint32(e.MonthWord()))
	binary.NativeEndian.PutUint32(raw[28:32], uint32(e.DayOfWeek.Word()))
}
