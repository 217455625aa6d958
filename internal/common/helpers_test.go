package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "$12.30", FormatMoney(decimal.RequireFromString("12.3")))
	require.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	require.Equal(t, "$0.50", FormatMoney(decimal.RequireFromString("0.5")))
}

func TestPluralizePhotos(t *testing.T) {
	cases := map[int]string{
		1:   "фотография",
		2:   "фотографии",
		5:   "фотографий",
		11:  "фотографий",
		21:  "фотография",
		24:  "фотографии",
		114: "фотографий",
	}
	for n, want := range cases {
		require.Equal(t, want, PluralizePhotos(n), "n=%d", n)
	}
}

func TestPluralizePayments(t *testing.T) {
	require.Equal(t, "выплата", PluralizePayments(1))
	require.Equal(t, "выплаты", PluralizePayments(3))
	require.Equal(t, "выплат", PluralizePayments(12))
}

func TestTruncateIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	require.Equal(t, "a, b, c, d", TruncateIDs(ids, 5))
	require.Equal(t, "a, b ... и ещё 2", TruncateIDs(ids, 2))
	require.Equal(t, "", TruncateIDs(nil, 5))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC)
	require.Equal(t, "31.08.2026 10:05", FormatDateTime(ts))
}
