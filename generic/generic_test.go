package generic

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONAndMonth(t *testing.T) {
	d := MustParseDate("2025-01-31")

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-31"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &back))
	assert.True(t, back.IsZero())
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d))

	assert.Equal(t, "2025-01", d.MonthKey())
	assert.Equal(t, "2025-02-01", d.Next().String())
	assert.Equal(t, 31, EndOfMonth(2025, time.January).Day())
	assert.Equal(t, 28, EndOfMonth(2025, time.February).Day())
	assert.True(t, MustParseDate("2025-01-04").IsWeekend())
}

func TestParseMonth(t *testing.T) {
	d, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d.String())
	assert.Equal(t, 29, MonthPeriod(d).End.Day())

	_, err = ParseMonth("February")
	assert.Error(t, err)
}

func TestTimeOfDay(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
		err   bool
	}{
		{"09:05", "09:05", true, false},
		{"9:5", "09:05", true, false},
		{"18:30:59", "18:30", true, false},
		{"", "", false, false},
		{"-", "", false, false},
		{"24:00", "", false, true},
		{"12:60", "", false, true},
		{"noon", "", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.valid, got.Valid())
			assert.Equal(t, tc.want, got.String())
		})
	}

	// Window bounds are inclusive
	assert.True(t, At(13, 0).Within(At(13, 0), At(13, 30)))
	assert.True(t, At(13, 30).Within(At(13, 0), At(13, 30)))
	assert.False(t, TimeOfDay{}.Within(At(0, 0), At(23, 59)))
}

func TestTimeOfDay_JSONNull(t *testing.T) {
	b, err := json.Marshal(struct{ T TimeOfDay }{})
	require.NoError(t, err)
	assert.Equal(t, `{"T":null}`, string(b))

	var v struct{ T TimeOfDay }
	require.NoError(t, json.Unmarshal([]byte(`{"T":"08:15"}`), &v))
	assert.Equal(t, 8*60+15, v.T.Minutes())
}

func TestPeriod(t *testing.T) {
	first := Period{Start: MustParseDate("2025-01-01"), End: MustParseDate("2025-01-15")}
	second := Period{Start: MustParseDate("2025-01-16"), End: MustParseDate("2025-01-31")}

	assert.True(t, first.Valid())
	assert.True(t, first.Precedes(second))
	assert.False(t, first.Overlaps(second))
	assert.True(t, first.Contains(MustParseDate("2025-01-15")))
	assert.False(t, first.Contains(MustParseDate("2025-01-16")))
	assert.Len(t, first.Days(), 15)
	assert.Equal(t, "1 Jan – 15 Jan 2025", first.Label())

	// Single-day and reversed periods are invalid
	assert.False(t, Period{Start: first.Start, End: first.Start}.Valid())
	assert.False(t, Period{Start: first.End, End: first.Start}.Valid())

	span := Period{Start: MustParseDate("2024-12-16"), End: MustParseDate("2025-01-15")}
	assert.Equal(t, "16 Dec 2024 – 15 Jan 2025", span.Label())
}

func TestAmount_Round2(t *testing.T) {
	a := HoursFromMinutes(50)

	assert.Equal(t, "0.83", a.Round2().String())
	assert.Equal(t, "1.50", HoursFromMinutes(30).Add(HoursFromMinutes(60)).String())
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0:30", FormatMinutes(30))
	assert.Equal(t, "1:05", FormatMinutes(65))
	assert.Equal(t, "-2:00", FormatMinutes(-120))
}

func TestYearPeriod(t *testing.T) {
	y := YearPeriod(2024)
	assert.True(t, y.Contains(MustParseDate("2024-01-01")))
	assert.True(t, y.Contains(MustParseDate("2024-12-31")))
	assert.False(t, y.Contains(MustParseDate("2025-01-01")))
	assert.Len(t, y.Days(), 366)
}

func TestErrorHelpers(t *testing.T) {
	gap := &PeriodGapError{
		Requested: Period{Start: MustParseDate("2025-01-20"), End: MustParseDate("2025-01-31")},
		Gap:       Period{Start: MustParseDate("2025-01-16"), End: MustParseDate("2025-01-19")},
	}
	wrapped := fmt.Errorf("add period: %w", gap)

	assert.ErrorIs(t, wrapped, ErrPeriodGap)
	assert.True(t, IsConflict(wrapped))
	assert.True(t, IsClientError(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Contains(t, gap.Error(), "4 day(s)")

	missing := &MissingFieldError{Fields: []string{"date", "time"}}
	assert.True(t, IsClientError(missing))
	assert.Equal(t, "missing required field(s): date, time", missing.Error())

	assert.True(t, IsNotFound(fmt.Errorf("%w: x", ErrEntryNotFound)))
	assert.False(t, IsClientError(fmt.Errorf("disk full")))
}
