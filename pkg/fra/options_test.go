package fra

import (
	"testing"

	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// TestExtractOptionsFreshRecord verifies that a record carrying only
// the creation sentinels renders no option lines.
func TestExtractOptionsFreshRecord(t *testing.T) {
	rec := Record{
		Priority:           DefaultPriority,
		IgnoreSize:         NoIgnoreSize,
		LockedFileTime:     -1,
		UnreadableFileTime: -1,
	}

	var out DirOptionsText
	ExtractOptions(&rec, &out)
	if out.NoOfOptions != 0 {
		t.Fatalf("fresh record extracted %d lines: %v", out.NoOfOptions, out.Lines())
	}
}

func TestExtractOptionsLines(t *testing.T) {
	entry, err := timecal.Parse("*/5 * * * *")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	rec := Record{
		DeleteFilesFlag:    UnknownFiles | QueuedFiles,
		InDCFlag:           UnknownFilesIDC, // queued class lacks its IDC bit
		UnknownFileTime:    7200,
		QueuedFileTime:     3600,
		ReportUnknownFiles: 1,
		ImportantDir:       1,
		KeepConnected:      45,
		Priority:           '2',
		MaxProcess:         3,
		MaxErrors:          10,
		DirOptions:         OptAcceptDotFiles | OptKeepPath,
		GtLtSign:           SignGreaterThan,
		IgnoreSize:         2048,
		Timezone:           "Europe/Berlin",
		NoOfTimeEntries:    1,
		DupCheckFlag:       DCFilenameOnly | DCDelete | DCCRC32c,
		DupCheckTimeout:    3600,
	}
	rec.TimeEntries[0] = *entry

	var out DirOptionsText
	ExtractOptions(&rec, &out)

	want := []string{
		"delete unknown files 2",
		"report unknown files",
		"important dir",
		"keep connected 45",
		"priority 2",
		"max process 3",
		"max errors 10",
		"accept dot files",
		"keep path",
		"ignore size >2048",
		"timezone Europe/Berlin",
		"time 0,5,10,15,20,25,30,35,40,45,50,55 * * * *",
		"dupcheck 3600 filename-only delete crc32c",
	}

	got := out.Lines()
	if len(got) != len(want) {
		t.Fatalf("extracted %d lines, want %d:\n%v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestExtractOptionsCaps verifies the line-count cap.
func TestExtractOptionsCaps(t *testing.T) {
	var out DirOptionsText
	for i := 0; i < MaxNoOptions+5; i++ {
		out.add("line")
	}
	if out.NoOfOptions != MaxNoOptions {
		t.Fatalf("NoOfOptions = %d, want %d", out.NoOfOptions, MaxNoOptions)
	}
}
