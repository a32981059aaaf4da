// Package fraxdr provides a portable dump format for retrieve-area
// records. The native file format is host-specific (byte order, word
// sizes); this XDR encoding is the escape hatch for moving a record
// set between hosts with different ABIs, and for archiving a readable
// snapshot of the array.
package fraxdr

import (
	"fmt"
	"io"

	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/fetchd-io/fetchd/pkg/bitset"
	"github.com/fetchd-io/fetchd/pkg/fra"
	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// formatVersion guards the dump layout itself, independent of the
// record schema version it carries.
const formatVersion = 1

// Dump is the top-level XDR structure.
type Dump struct {
	Format        uint32
	SchemaVersion uint32
	Records       []RecordX
}

// TimeEntryX is the portable form of one time entry.
type TimeEntryX struct {
	Minute           uint64
	ContinuousMinute uint64
	Hour             uint32
	DayOfMonth       uint32
	Month            uint32
	DayOfWeek        uint32
}

// RecordX is the portable form of the current logical record view.
// Sub-word integers widen to uint32 since XDR has no smaller unit.
type RecordX struct {
	DirAlias        string
	HostAlias       string
	URL             string
	LsDataAlias     string
	RetrieveWorkDir string
	Timezone        string
	WaitForFilename string
	DirID           uint32
	FsaPos          int32

	TimeEntries      []TimeEntryX
	NoOfTimeEntries  uint32
	AlternateTime    TimeEntryX
	NextCheckTime    int64
	LastRetrieval    int64
	DirMtime         int64
	InfoTime         int64
	WarnTime         int64
	StartEventHandle int64
	EndEventHandle   int64

	DirOptions         uint32
	DirFlag            uint32
	InDCFlag           uint32
	DeleteFilesFlag    uint32
	ReportUnknownFiles uint32
	ImportantDir       uint32
	StupidMode         uint32
	ForceReread        uint32
	Remove             uint32
	DirMode            uint32
	Priority           uint32
	KeepConnected      uint32
	Protocol           uint32
	GtLtSign           uint32
	IgnoreFileTime     uint32
	IgnoreSize         int64
	DupCheckFlag       uint32
	DupCheckTimeout    int64

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

	DirStatus uint32
	Queued    uint32
}

// Write encodes the record set to w.
func Write(w io.Writer, records []fra.Record) error {
	dump := Dump{
		Format:        formatVersion,
		SchemaVersion: uint32(fra.CurrentVersion),
		Records:       make([]RecordX, len(records)),
	}
	for i := range records {
		dump.Records[i] = toPortable(&records[i])
	}
	if _, err := xdr.Marshal(w, &dump); err != nil {
		return fmt.Errorf("encode record dump: %w", err)
	}
	return nil
}

// Read decodes a record set from r.
func Read(r io.Reader) ([]fra.Record, error) {
	var dump Dump
	if _, err := xdr.Unmarshal(r, &dump); err != nil {
		return nil, fmt.Errorf("decode record dump: %w", err)
	}
	if dump.Format != formatVersion {
		return nil, fmt.Errorf("unsupported dump format %d", dump.Format)
	}
	records := make([]fra.Record, len(dump.Records))
	for i := range dump.Records {
		records[i] = fromPortable(&dump.Records[i])
	}
	return records, nil
}

func toPortableEntry(e *timecal.Entry) TimeEntryX {
	return TimeEntryX{
		Minute:           e.Minute.Word(),
		ContinuousMinute: e.ContinuousMinute.Word(),
		Hour:             uint32(e.Hour.Word()),
		DayOfMonth:       uint32(e.DayOfMonth.Word()),
		Month:            uint32(e.MonthWord()),
		DayOfWeek:        uint32(e.DayOfWeek.Word()),
	}
}

func fromPortableEntry(x *TimeEntryX) timecal.Entry {
	e := timecal.NewEntry()
	e.Minute = bitset.FromWord(x.Minute, bitset.MinuteBits)
	e.ContinuousMinute = bitset.FromWord(x.ContinuousMinute, bitset.MinuteBits)
	e.Hour = bitset.FromWord(uint64(x.Hour), bitset.HourBits)
	e.DayOfMonth = bitset.FromWord(uint64(x.DayOfMonth), bitset.DayOfMonthBits)
	e.SetMonthWord(uint64(x.Month))
	e.DayOfWeek = bitset.FromWord(uint64(x.DayOfWeek), bitset.DayOfWeekBits)
	return e
}

func toPortable(r *fra.Record) RecordX {
	x := RecordX{
		DirAlias:        r.DirAlias,
		HostAlias:       r.HostAlias,
		URL:             r.URL,
		LsDataAlias:     r.LsDataAlias,
		RetrieveWorkDir: r.RetrieveWorkDir,
		Timezone:        r.Timezone,
		WaitForFilename: r.WaitForFilename,
		DirID:           r.DirID,
		FsaPos:          r.FsaPos,

		NoOfTimeEntries:  uint32(r.NoOfTimeEntries),
		AlternateTime:    toPortableEntry(&r.AlternateTime),
		NextCheckTime:    r.NextCheckTime,
		LastRetrieval:    r.LastRetrieval,
		DirMtime:         r.DirMtime,
		InfoTime:         r.InfoTime,
		WarnTime:         r.WarnTime,
		StartEventHandle: r.StartEventHandle,
		EndEventHandle:   r.EndEventHandle,

		DirOptions:         r.DirOptions,
		DirFlag:            r.DirFlag,
		InDCFlag:           r.InDCFlag,
		DeleteFilesFlag:    uint32(r.DeleteFilesFlag),
		ReportUnknownFiles: uint32(r.ReportUnknownFiles),
		ImportantDir:       uint32(r.ImportantDir),
		StupidMode:         uint32(r.StupidMode),
		ForceReread:        uint32(r.ForceReread),
		Remove:             uint32(r.Remove),
		DirMode:            r.DirMode,
		Priority:           uint32(r.Priority),
		KeepConnected:      r.KeepConnected,
		Protocol:           r.Protocol,
		GtLtSign:           r.GtLtSign,
		IgnoreFileTime:     r.IgnoreFileTime,
		IgnoreSize:         r.IgnoreSize,
		DupCheckFlag:       r.DupCheckFlag,
		DupCheckTimeout:    r.DupCheckTimeout,

		MaxProcess:         r.MaxProcess,
		NoOfProcess:        r.NoOfProcess,
		MaxErrors:          r.MaxErrors,
		ErrorCounter:       r.ErrorCounter,
		MaxCopiedFiles:     r.MaxCopiedFiles,
		MaxCopiedFileSize:  r.MaxCopiedFileSize,
		Accumulate:         r.Accumulate,
		AccumulateSize:     r.AccumulateSize,
		FilesReceived:      r.FilesReceived,
		BytesReceived:      r.BytesReceived,
		FilesInDir:         r.FilesInDir,
		FilesQueued:        r.FilesQueued,
		BytesInDir:         r.BytesInDir,
		BytesInQueue:       r.BytesInQueue,
		EndCharacter:       r.EndCharacter,
		UnknownFileTime:    r.UnknownFileTime,
		QueuedFileTime:     r.QueuedFileTime,
		LockedFileTime:     r.LockedFileTime,
		UnreadableFileTime: r.UnreadableFileTime,

		DirStatus: uint32(r.DirStatus),
		Queued:    uint32(r.QueuedFlag),
	}
	x.TimeEntries = make([]TimeEntryX, timecal.MaxEntries)
	for i := range r.TimeEntries {
		x.TimeEntries[i] = toPortableEntry(&r.TimeEntries[i])
	}
	return x
}

func fromPortable(x *RecordX) fra.Record {
	r := fra.Record{
		DirAlias:        x.DirAlias,
		HostAlias:       x.HostAlias,
		URL:             x.URL,
		LsDataAlias:     x.LsDataAlias,
		RetrieveWorkDir: x.RetrieveWorkDir,
		Timezone:        x.Timezone,
		WaitForFilename: x.WaitForFilename,
		DirID:           x.DirID,
		FsaPos:          x.FsaPos,

		NoOfTimeEntries:  uint8(x.NoOfTimeEntries),
		AlternateTime:    fromPortableEntry(&x.AlternateTime),
		NextCheckTime:    x.NextCheckTime,
		LastRetrieval:    x.LastRetrieval,
		DirMtime:         x.DirMtime,
		InfoTime:         x.InfoTime,
		WarnTime:         x.WarnTime,
		StartEventHandle: x.StartEventHandle,
		EndEventHandle:   x.EndEventHandle,

		DirOptions:         x.DirOptions,
		DirFlag:            x.DirFlag,
		InDCFlag:           x.InDCFlag,
		DeleteFilesFlag:    uint8(x.DeleteFilesFlag),
		ReportUnknownFiles: uint8(x.ReportUnknownFiles),
		ImportantDir:       uint8(x.ImportantDir),
		StupidMode:         uint8(x.StupidMode),
		ForceReread:        uint8(x.ForceReread),
		Remove:             uint8(x.Remove),
		DirMode:            x.DirMode,
		Priority:           byte(x.Priority),
		KeepConnected:      x.KeepConnected,
		Protocol:           x.Protocol,
		GtLtSign:           x.GtLtSign,
		IgnoreFileTime:     x.IgnoreFileTime,
		IgnoreSize:         x.IgnoreSize,
		DupCheckFlag:       x.DupCheckFlag,
		DupCheckTimeout:    x.DupCheckTimeout,

		MaxProcess:         x.MaxProcess,
		NoOfProcess:        x.NoOfProcess,
		MaxErrors:          x.MaxErrors,
		ErrorCounter:       x.ErrorCounter,
		MaxCopiedFiles:     x.MaxCopiedFiles,
		MaxCopiedFileSize:  x.MaxCopiedFileSize,
		Accumulate:         x.Accumulate,
		AccumulateSize:     x.AccumulateSize,
		FilesReceived:      x.FilesReceived,
		BytesReceived:      x.BytesReceived,
		FilesInDir:         x.FilesInDir,
		FilesQueued:        x.FilesQueued,
		BytesInDir:         x.BytesInDir,
		BytesInQueue:       x.BytesInQueue,
		EndCharacter:       x.EndCharacter,
		UnknownFileTime:    x.UnknownFileTime,
		QueuedFileTime:     x.QueuedFileTime,
		LockedFileTime:     x.LockedFileTime,
		UnreadableFileTime: x.UnreadableFileTime,

		DirStatus:  uint8(x.DirStatus),
		QueuedFlag: uint8(x.Queued),
	}
	for i := 0; i < len(x.TimeEntries) && i < timecal.MaxEntries; i++ {
		r.TimeEntries[i] = fromPortableEntry(&x.TimeEntries[i])
	}
	return r
}
