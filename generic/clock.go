package generic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY - Wall-clock minute on an unspecified day
// =============================================================================

// TimeOfDay is a minute-granularity wall-clock time with no zone.
// The zero value is an absent time (an open check-in has an absent end).
// Absent values encode as JSON null; null, "" and "-" decode as absent.
type TimeOfDay struct {
	minutes int
	valid   bool
}

// At returns the time h:m.
func At(h, m int) TimeOfDay {
	return TimeOfDay{minutes: h*60 + m, valid: true}
}

// ClockOf returns the wall-clock minute of t.
func ClockOf(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses "HH:MM" (seconds, if present, are ignored).
// Blank input returns an absent time and no error.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return TimeOfDay{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q (use HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return At(h, m), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Valid() bool  { return t.valid }
func (t TimeOfDay) Minutes() int { return t.minutes }

// Within reports whether t lies in [from, to], bounds included.
func (t TimeOfDay) Within(from, to TimeOfDay) bool {
	return t.valid && t.minutes >= from.minutes && t.minutes <= to.minutes
}

func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = TimeOfDay{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FormatMinutes renders a minute count as "H:MM" (negative values keep the sign).
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}
