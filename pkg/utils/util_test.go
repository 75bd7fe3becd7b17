package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashIDRoundTrip(t *testing.T) {
	code := GenHashID("salt", 1849238479238479872)
	require.GreaterOrEqual(t, len(code), 12)

	id, err := DecodeHashID("salt", code)
	require.NoError(t, err)
	require.Equal(t, int64(1849238479238479872), id)

	require.NotEqual(t, code, GenHashID("other", 1849238479238479872))
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 3, 1, 23, 59, 0, 0, time.Local)
	require.Equal(t, "2026-03-01", DayKey(ts))
	require.Equal(t, "2026-03-02", DayKey(ts.Add(2*time.Minute)))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), StartOfDay(ts))
}
