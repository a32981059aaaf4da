package fra

// dirOptionMap is the one-to-one translation of behavior flags from the
// overloaded pre-v8 dir_flag word into the v8 dir_options word.
var dirOptionMap = []struct {
	old uint32
	new uint32
}{
	{DirFlagAcceptDotFilesOld, OptAcceptDotFiles},
	{DirFlagDontGetDirListOld, OptDontGetDirList},
	{DirFlagInotifyRenameOld, OptInotifyRename},
	{DirFlagInotifyCloseOld, OptInotifyClose},
	{DirFlagInotifyCreateOld, OptInotifyCreate},
	{DirFlagInotifyDeleteOld, OptInotifyDelete},
	{DirFlagInotifyAttribOld, OptInotifyAttrib},
	{DirFlagDoNotParallelizeOld, OptDoNotParallelize},
	{DirFlagDoNotMoveOld, OptDoNotMove},
	{DirFlagOneProcessJustScanningOld, OptOneProcessJustScanning},
	{DirFlagURLCreatesFileNameOld, OptURLCreatesFileName},
	{DirFlagURLWithIndexFileNameOld, OptURLWithIndexFileName},
	{DirFlagNoDelimiterOld, OptNoDelimiter},
	{DirFlagKeepPathOld, OptKeepPath},
}

// MigrateToDirOptions builds a v8 dir_options word from a pre-v8
// dir_flag word. The translation is bit-for-bit; composition is
// bitwise OR. The dir_flag input is left untouched by migration so
// old diagnostic reads keep working.
func MigrateToDirOptions(dirFlag uint32) uint32 {
	var opts uint32
	for _, m := range dirOptionMap {
		if dirFlag&m.old != 0 {
			opts |= m.new
		}
	}
	return opts
}
