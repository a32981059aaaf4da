package fra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// sampleRecord fills the fields every version carries plus a
// representative slice of the newer ones.
func sampleRecord(t *testing.T) Record {
	t.Helper()
	entry, err := timecal.Parse("*/5 * * * *")
	require.NoError(t, err)

	var r Record
	r.URL = "ftp://host/incoming/data"
	r.DirAlias = "incoming"
	r.HostAlias = "host"
	r.Timezone = "Europe/Berlin"
	r.DirID = 42
	r.FsaPos = -1
	r.TimeEntries[0] = *entry
	r.NoOfTimeEntries = 1
	r.NextCheckTime = 1700000000
	r.LastRetrieval = 1699999999
	r.DirFlag = DirFlagDisabled
	r.DirOptions = OptAcceptDotFiles | OptKeepPath
	r.DirStatus = DirStatusNormal
	r.Priority = '3'
	r.Protocol = ProtocolSFTP
	r.GtLtSign = SignGreaterThan
	r.IgnoreSize = 1024
	r.IgnoreFileTime = 600
	r.MaxProcess = 5
	r.BytesReceived = 1 << 40
	r.BytesInQueue = -7
	r.EndCharacter = -1
	r.UnknownFileTime = 3600
	r.QueuedFileTime = 7200
	r.LockedFileTime = -1
	r.UnreadableFileTime = -1
	return r
}

func TestRecordRoundTripCurrent(t *testing.T) {
	r := sampleRecord(t)

	buf := make([]byte, RecordSize(CurrentVersion))
	EncodeRecord(buf, &r, CurrentVersion)
	got := DecodeRecord(buf, CurrentVersion)

	assert.Equal(t, r.URL, got.URL)
	assert.Equal(t, r.DirAlias, got.DirAlias)
	assert.Equal(t, r.HostAlias, got.HostAlias)
	assert.Equal(t, r.Timezone, got.Timezone)
	assert.Equal(t, r.DirID, got.DirID)
	assert.Equal(t, r.FsaPos, got.FsaPos)
	assert.Equal(t, r.NoOfTimeEntries, got.NoOfTimeEntries)
	assert.True(t, got.TimeEntries[0].Minute.Equal(r.TimeEntries[0].Minute))
	assert.True(t, got.TimeEntries[0].Hour.Equal(r.TimeEntries[0].Hour))
	assert.Equal(t, r.DirFlag, got.DirFlag)
	assert.Equal(t, r.DirOptions, got.DirOptions)
	assert.Equal(t, r.Priority, got.Priority)
	assert.Equal(t, r.Protocol, got.Protocol)
	assert.Equal(t, r.GtLtSign, got.GtLtSign)
	assert.Equal(t, r.IgnoreSize, got.IgnoreSize)
	assert.Equal(t, r.IgnoreFileTime, got.IgnoreFileTime)
	assert.Equal(t, r.MaxProcess, got.MaxProcess)
	assert.Equal(t, r.BytesReceived, got.BytesReceived)
	assert.Equal(t, r.BytesInQueue, got.BytesInQueue)
	assert.Equal(t, r.EndCharacter, got.EndCharacter)
	assert.Equal(t, r.UnknownFileTime, got.UnknownFileTime)
	assert.Equal(t, r.LockedFileTime, got.LockedFileTime)
	assert.Equal(t, r.UnreadableFileTime, got.UnreadableFileTime)

	// A second encode of the decoded record must be byte-identical.
	buf2 := make([]byte, RecordSize(CurrentVersion))
	EncodeRecord(buf2, &got, CurrentVersion)
	assert.Equal(t, buf, buf2)
}

// TestRecordRoundTripOldVersions encodes through each historical layout
// and checks that the fields the layout carries survive.
func TestRecordRoundTripOldVersions(t *testing.T) {
	r := sampleRecord(t)
	r.OldFileTime = 7200

	for v := byte(0); v < CurrentVersion; v++ {
		buf := make([]byte, RecordSize(v))
		EncodeRecord(buf, &r, v)
		got := DecodeRecord(buf, v)

		assert.Equal(t, r.URL, got.URL, "version %d", v)
		assert.Equal(t, r.DirAlias, got.DirAlias, "version %d", v)
		assert.Equal(t, r.Priority, got.Priority, "version %d", v)
		assert.Equal(t, r.Protocol, got.Protocol, "version %d", v)

		if HasField(v, FldOldFileTime) {
			assert.Equal(t, r.OldFileTime, got.OldFileTime, "version %d", v)
		} else {
			assert.Zero(t, got.OldFileTime, "version %d", v)
		}
		if HasField(v, FldTimezone) {
			assert.Equal(t, r.Timezone, got.Timezone, "version %d", v)
		} else {
			assert.Empty(t, got.Timezone, "version %d", v)
		}
		if HasField(v, FldIgnoreSize) {
			assert.Equal(t, r.IgnoreSize, got.IgnoreSize, "version %d", v)
		}
	}
}

// TestEncodeStringTruncates verifies that overlong strings clip to the
// array capacity minus the terminating NUL.
func TestEncodeStringTruncates(t *testing.T) {
	var r Record
	for i := 0; i < MaxDirAlias+5; i++ {
		r.DirAlias += "x"
	}

	buf := make([]byte, RecordSize(CurrentVersion))
	EncodeRecord(buf, &r, CurrentVersion)
	got := DecodeRecord(buf, CurrentVersion)

	require.Len(t, got.DirAlias, MaxDirAlias)
}

func TestExternalEntrySurvivesCodec(t *testing.T) {
	entry, err := timecal.Parse("external")
	require.NoError(t, err)

	var r Record
	r.TimeEntries[0] = *entry
	r.NoOfTimeEntries = 1

	buf := make([]byte, RecordSize(CurrentVersion))
	EncodeRecord(buf, &r, CurrentVersion)
	got := DecodeRecord(buf, CurrentVersion)

	require.True(t, got.TimeEntries[0].External)
	assert.Equal(t, timecal.TimeExternal, got.TimeEntries[0].MonthWord())
}

// TestDecodeClampsEntryCount guards the schedule-slot bound: a corrupt
// entry count on disk must not let callers slice TimeEntries past its
// capacity.
func TestDecodeClampsEntryCount(t *testing.T) {
	r := sampleRecord(t)

	buf := make([]byte, RecordSize(CurrentVersion))
	EncodeRecord(buf, &r, CurrentVersion)

	off := 0
	for _, f := range Fields(CurrentVersion) {
		if f.ID == FldNoOfTimeEntries {
			break
		}
		off += f.size()
	}
	buf[off] = 200

	got := DecodeRecord(buf, CurrentVersion)
	require.Equal(t, uint8(timecal.MaxEntries), got.NoOfTimeEntries)
	assert.NotPanics(t, func() {
		_ = got.TimeEntries[:got.NoOfTimeEntries]
	})
}
