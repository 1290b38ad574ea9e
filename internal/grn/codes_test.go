package grn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatItemCode(t *testing.T) {
	require.Equal(t, "2024000001", FormatItemCode(2024, 1))
	require.Equal(t, "2024000123", FormatItemCode(2024, 123))
	require.Equal(t, "2025999999", FormatItemCode(2025, 999999))
}

func TestParseItemCode(t *testing.T) {
	year, seq, err := ParseItemCode("2024000042")
	require.NoError(t, err)
	require.Equal(t, 2024, year)
	require.Equal(t, 42, seq)

	for _, code := range []string{"", "2024", "20240000001", "2024abc001"} {
		_, _, err := ParseItemCode(code)
		require.Error(t, err, "code %q", code)
	}
}

func TestSeqFromMaxCode(t *testing.T) {
	require.Equal(t, 7, SeqFromMaxCode("2024000007", 2024))
	// A maximum code from a previous year restarts the sequence.
	require.Equal(t, 0, SeqFromMaxCode("2024000310", 2025))
	require.Equal(t, 0, SeqFromMaxCode("", 2024))
	require.Equal(t, 0, SeqFromMaxCode("garbage", 2024))
}
