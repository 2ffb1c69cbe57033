package timeslot_test

import (
	"testing"
	"time"

	"portal-service/internal/timeslot"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 9 * 60},
		{in: "9:05", want: 9*60 + 5},
		{in: "00:00", want: 0},
		{in: "23:59", want: 23*60 + 59},
		{in: "9:00am", want: 9 * 60},
		{in: "12:00am", want: 0},
		{in: "12:30pm", want: 12*60 + 30},
		{in: "1:15pm", want: 13*60 + 15},
		{in: "11:45PM", want: 23*60 + 45},
		{in: " 10:00 ", want: 10 * 60},
		{in: "", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "13:00pm", wantErr: true},
		{in: "0:30am", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "morning", wantErr: true},
	}

	for _, tc := range cases {
		got, err := timeslot.ParseClock(tc.in)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestFormatClock(t *testing.T) {
	require.Equal(t, "09:05", timeslot.FormatClock(9*60+5))
	require.Equal(t, "00:00", timeslot.FormatClock(0))
	// additions past midnight wrap
	require.Equal(t, "00:30", timeslot.FormatClock(24*60+30))
}

func TestMaterialize_SlotCount(t *testing.T) {
	// 60 minutes in 10-minute steps from 09:00
	times, err := timeslot.Materialize("09:00", 60, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "09:10", "09:20", "09:30", "09:40", "09:50"}, times)
}

func TestMaterialize_RemainderDropped(t *testing.T) {
	times, err := timeslot.Materialize("10:00", 50, 15)
	require.NoError(t, err)
	require.Equal(t, []string{"10:00", "10:15", "10:30"}, times)
}

func TestMaterialize_AmPmInputNormalized(t *testing.T) {
	times, err := timeslot.Materialize("1:30pm", 45, 15)
	require.NoError(t, err)
	require.Equal(t, []string{"13:30", "13:45", "14:00"}, times)
}

func TestMaterialize_TotalShorterThanSlot(t *testing.T) {
	times, err := timeslot.Materialize("09:00", 5, 10)
	require.NoError(t, err)
	require.Empty(t, times)
}

func TestMaterialize_InvalidPlan(t *testing.T) {
	_, err := timeslot.Materialize("09:00", 60, 0)
	require.ErrorIs(t, err, timeslot.ErrInvalidSlotPlan)

	_, err = timeslot.Materialize("09:00", -10, 10)
	require.ErrorIs(t, err, timeslot.ErrInvalidSlotPlan)

	_, err = timeslot.Materialize("bogus", 60, 10)
	require.ErrorIs(t, err, timeslot.ErrInvalidClock)
}

func strptr(s string) *string { return &s }

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)

	require.True(t, timeslot.IsExpired(strptr("2025-09-20"), strptr("11:59"), now))
	require.False(t, timeslot.IsExpired(strptr("2025-09-20"), strptr("12:00"), now))
	require.False(t, timeslot.IsExpired(strptr("2025-09-21"), strptr("08:00"), now))

	// absent or malformed cutoff means the session never expires
	require.False(t, timeslot.IsExpired(nil, strptr("11:00"), now))
	require.False(t, timeslot.IsExpired(strptr("2025-09-20"), nil, now))
	require.False(t, timeslot.IsExpired(strptr("someday"), strptr("11:00"), now))
}
