package fra

import "testing"

// TestFileSizeInvariant verifies that every version's well-formed file
// size is header plus record count times record size.
func TestFileSizeInvariant(t *testing.T) {
	for v := byte(0); v <= CurrentVersion; v++ {
		for _, n := range []int{0, 1, 2, 100} {
			want := int64(HeaderSize(v)) + int64(n)*int64(RecordSize(v))
			if got := FileSize(v, n); got != want {
				t.Errorf("FileSize(%d, %d) = %d, want %d", v, n, got, want)
			}
		}
	}
}

func TestHeaderSize(t *testing.T) {
	if HeaderSize(0) != 8 || HeaderSize(1) != 8 {
		t.Error("versions 0 and 1 carry an 8-byte header")
	}
	for v := byte(2); v <= CurrentVersion; v++ {
		if HeaderSize(v) != 16 {
			t.Errorf("HeaderSize(%d) = %d, want 16", v, HeaderSize(v))
		}
	}
}

// TestRecordSizeGrows pins down that each version's record is at least
// as large as its predecessor's; the format only ever added fields
// except for the v0 combined age limit, which was replaced by two
// larger fields.
func TestRecordSizeGrows(t *testing.T) {
	for v := byte(1); v <= CurrentVersion; v++ {
		if RecordSize(v) < RecordSize(v-1) {
			t.Errorf("RecordSize(%d) = %d < RecordSize(%d) = %d",
				v, RecordSize(v), v-1, RecordSize(v-1))
		}
	}
}

func TestFieldSpans(t *testing.T) {
	tests := []struct {
		id   FieldID
		ver  byte
		want bool
	}{
		{FldOldFileTime, 0, true},
		{FldOldFileTime, 1, false},
		{FldUnknownFileTime, 0, false},
		{FldUnknownFileTime, 1, true},
		{FldTimeEntry, 4, true},
		{FldTimeEntry, 5, false},
		{FldTimeEntries, 4, false},
		{FldTimeEntries, 5, true},
		{FldNoOfTimeEntries, 4, false},
		{FldNoOfTimeEntries, 5, true},
		{FldDirOptions, 7, false},
		{FldDirOptions, 8, true},
		{FldDirFlag, 0, false},
		{FldDirFlag, 1, true},
		{FldTimezone, 5, false},
		{FldTimezone, 6, true},
		{FldDirID, 2, false},
		{FldDirID, 3, true},
		{FldWaitForFilename, 1, false},
		{FldWaitForFilename, 2, true},
		{FldDirMtime, 6, false},
		{FldDirMtime, 7, true},
	}

	for _, tt := range tests {
		if got := HasField(tt.ver, tt.id); got != tt.want {
			t.Errorf("HasField(%d, %d) = %v, want %v", tt.ver, tt.id, got, tt.want)
		}
	}
}

// TestFieldsSumToRecordSize cross-checks the derived layout against the
// derived size.
func TestFieldsSumToRecordSize(t *testing.T) {
	for v := byte(0); v <= CurrentVersion; v++ {
		total := 0
		for _, f := range Fields(v) {
			total += f.size()
		}
		if total != RecordSize(v) {
			t.Errorf("version %d: field sizes sum to %d, RecordSize is %d",
				v, total, RecordSize(v))
		}
	}
}
