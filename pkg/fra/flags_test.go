package fra

import "testing"

func TestMigrateToDirOptionsZero(t *testing.T) {
	if got := MigrateToDirOptions(0); got != 0 {
		t.Fatalf("MigrateToDirOptions(0) = %#x, want 0", got)
	}
}

func TestMigrateToDirOptionsSingleBits(t *testing.T) {
	tests := []struct {
		name string
		old  uint32
		want uint32
	}{
		{"accept dot files", DirFlagAcceptDotFilesOld, OptAcceptDotFiles},
		{"dont get dir list", DirFlagDontGetDirListOld, OptDontGetDirList},
		{"inotify rename", DirFlagInotifyRenameOld, OptInotifyRename},
		{"inotify close", DirFlagInotifyCloseOld, OptInotifyClose},
		{"inotify create", DirFlagInotifyCreateOld, OptInotifyCreate},
		{"inotify delete", DirFlagInotifyDeleteOld, OptInotifyDelete},
		{"inotify attrib", DirFlagInotifyAttribOld, OptInotifyAttrib},
		{"do not parallelize", DirFlagDoNotParallelizeOld, OptDoNotParallelize},
		{"do not move", DirFlagDoNotMoveOld, OptDoNotMove},
		{"one process just scanning", DirFlagOneProcessJustScanningOld, OptOneProcessJustScanning},
		{"url creates file name", DirFlagURLCreatesFileNameOld, OptURLCreatesFileName},
		{"url with index file name", DirFlagURLWithIndexFileNameOld, OptURLWithIndexFileName},
		{"no delimiter", DirFlagNoDelimiterOld, OptNoDelimiter},
		{"keep path", DirFlagKeepPathOld, OptKeepPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MigrateToDirOptions(tt.old); got != tt.want {
				t.Fatalf("MigrateToDirOptions(%#x) = %#x, want %#x", tt.old, got, tt.want)
			}
		})
	}
}

// TestMigrateToDirOptionsComposes verifies that multi-bit translation
// is the bitwise OR of the single-bit translations.
func TestMigrateToDirOptionsComposes(t *testing.T) {
	old := DirFlagAcceptDotFilesOld | DirFlagKeepPathOld
	want := OptAcceptDotFiles | OptKeepPath
	if got := MigrateToDirOptions(old); got != want {
		t.Fatalf("MigrateToDirOptions(%#x) = %#x, want %#x", old, got, want)
	}

	// The disabled bit has no dir_options counterpart and must not
	// leak through.
	if got := MigrateToDirOptions(DirFlagDisabled); got != 0 {
		t.Fatalf("MigrateToDirOptions(disabled) = %#x, want 0", got)
	}
}
