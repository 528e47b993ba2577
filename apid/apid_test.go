package apid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	for _, id := range []APID{STEIN, MAGIC, RecordedHSK, RecentHSK, Overflow} {
		require.True(t, Supported(id), "%v should be supported", id)
	}

	require.False(t, Supported(APID(0x1234)))
}

func TestString(t *testing.T) {
	require.Equal(t, "STEIN", STEIN.String())
	require.Equal(t, "MAGIC", MAGIC.String())
	require.Equal(t, "RECORDED_HSK", RecordedHSK.String())
	require.Equal(t, "RECENT_HSK", RecentHSK.String())
	require.Equal(t, "OVERFLOW", Overflow.String())
	require.Equal(t, "unknown", APID(0xFFFF).String())

	for id, name := range Unsupported {
		require.Equal(t, name, id.String())
	}
}
