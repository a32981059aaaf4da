package fra

import (
	"fmt"

	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// Limits of the extracted option text block.
const (
	MaxNoOptions    = 20
	MaxOptionLength = 256
)

// DirOptionsText receives the text rendering of a record's active
// options: one line per feature, space-separated tokens, stable across
// releases so tools and tests can diff it.
type DirOptionsText struct {
	NoOfOptions int
	Options     [MaxNoOptions]string
}

// add appends one option line, truncating to MaxOptionLength. Once
// MaxNoOptions lines exist further ones are dropped.
func (d *DirOptionsText) add(line string) {
	if d.NoOfOptions >= MaxNoOptions {
		return
	}
	if len(line) > MaxOptionLength {
		line = line[:MaxOptionLength]
	}
	d.Options[d.NoOfOptions] = line
	d.NoOfOptions++
}

// Lines returns the populated option lines.
func (d *DirOptionsText) Lines() []string {
	return d.Options[:d.NoOfOptions]
}

// hoursOrSentinel renders a seconds value as whole hours, preserving
// the -1 "unset" sentinel.
func hoursOrSentinel(seconds int64) int64 {
	if seconds == -1 {
		return -1
	}
	return seconds / 3600
}

// ExtractOptions renders the active feature flags and scalar options of
// a record (materialized to the current version's view) into out. This
// is the reverse of the schema registry's defaults: a freshly created
// record extracts to no lines at all.
func ExtractOptions(r *Record, out *DirOptionsText) {
	out.NoOfOptions = 0

	if r.DeleteFilesFlag&UnknownFiles != 0 && r.InDCFlag&UnknownFilesIDC != 0 {
		out.add(fmt.Sprintf("delete unknown files %d", hoursOrSentinel(r.UnknownFileTime)))
	}
	if r.DeleteFilesFlag&QueuedFiles != 0 && r.InDCFlag&QueuedFilesIDC != 0 {
		out.add(fmt.Sprintf("delete queued files %d", hoursOrSentinel(r.QueuedFileTime)))
	}
	if r.DeleteFilesFlag&OldLockedFiles != 0 && r.InDCFlag&OldLockedFilesIDC != 0 {
		out.add(fmt.Sprintf("delete old locked files %d", hoursOrSentinel(r.LockedFileTime)))
	}
	if r.DeleteFilesFlag&UnreadableFiles != 0 && r.InDCFlag&UnreadableFilesIDC != 0 {
		out.add(fmt.Sprintf("delete unreadable files %d", hoursOrSentinel(r.UnreadableFileTime)))
	}

	if r.ReportUnknownFiles != 0 {
		out.add("report unknown files")
	}
	if r.ImportantDir != 0 {
		out.add("important dir")
	}
	if r.StupidMode != 0 {
		out.add("stupid mode")
	}
	if r.KeepConnected != 0 {
		out.add(fmt.Sprintf("keep connected %d", r.KeepConnected))
	}
	if r.Priority != 0 && r.Priority != DefaultPriority {
		out.add(fmt.Sprintf("priority %c", r.Priority))
	}
	if r.MaxProcess != 0 {
		out.add(fmt.Sprintf("max process %d", r.MaxProcess))
	}
	if r.MaxErrors != 0 {
		out.add(fmt.Sprintf("max errors %d", r.MaxErrors))
	}

	for _, opt := range []struct {
		bit  uint32
		line string
	}{
		{OptAcceptDotFiles, "accept dot files"},
		{OptDontGetDirList, "do not get dir list"},
		{OptDoNotParallelize, "do not parallelize"},
		{OptDoNotMove, "do not move"},
		{OptOneProcessJustScanning, "one process just scanning"},
		{OptURLCreatesFileName, "url creates file name"},
		{OptURLWithIndexFileName, "url with index file name"},
		{OptNoDelimiter, "no delimiter"},
		{OptKeepPath, "keep path"},
	} {
		if r.DirOptions&opt.bit != 0 {
			out.add(opt.line)
		}
	}

	if r.IgnoreSize != NoIgnoreSize {
		out.add(fmt.Sprintf("ignore size %s%d", signPrefix(r.GtLtSign), r.IgnoreSize))
	}
	if r.IgnoreFileTime != 0 {
		out.add(fmt.Sprintf("ignore file time %s%d", signPrefix(r.GtLtSign), r.IgnoreFileTime))
	}
	if r.Timezone != "" {
		out.add("timezone " + r.Timezone)
	}

	for i := 0; i < int(r.NoOfTimeEntries) && i < timecal.MaxEntries; i++ {
		out.add("time " + timecal.Format(&r.TimeEntries[i]))
	}

	if r.DupCheckFlag != 0 {
		out.add(fmt.Sprintf("dupcheck %d %s %s %s",
			r.DupCheckTimeout,
			dupCheckVariant(r.DupCheckFlag),
			dupCheckAction(r.DupCheckFlag),
			dupCheckHash(r.DupCheckFlag)))
	}
}

func signPrefix(sign uint32) string {
	switch sign {
	case SignGreaterThan:
		return ">"
	case SignLessThan:
		return "<"
	default:
		return ""
	}
}

func dupCheckVariant(flag uint32) string {
	switch {
	case flag&DCFilenameOnly != 0:
		return "filename-only"
	case flag&DCFilenameAndSize != 0:
		return "filename-and-size"
	case flag&DCNameNoSuffix != 0:
		return "name-no-suffix"
	case flag&DCFileContentAndName != 0:
		return "file-content-and-name"
	case flag&DCFileContent != 0:
		return "file-content"
	default:
		return "unknown"
	}
}

func dupCheckAction(flag uint32) string {
	switch {
	case flag&DCDelete != 0 && flag&DCWarn != 0:
		return "delete-warn"
	case flag&DCDelete != 0:
		return "delete"
	case flag&DCStore != 0 && flag&DCWarn != 0:
		return "store-warn"
	case flag&DCStore != 0:
		return "store"
	case flag&DCWarn != 0:
		return "warn"
	default:
		return "unknown"
	}
}

func dupCheckHash(flag uint32) string {
	switch {
	case flag&DCCRC32c != 0:
		return "crc32c"
	case flag&DCMurmur3 != 0:
		return "murmur3"
	default:
		return "crc32"
	}
}
