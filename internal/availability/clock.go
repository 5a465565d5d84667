package availability

import (
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Date is a civil calendar date without time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads YYYY-MM-DD, or a timestamp whose leading calendar portion is
// kept exactly as written. Time-of-day and offset suffixes are discarded rather
// than converted so that "2024-03-10T23:00:00-05:00" keys as 2024-03-10.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(dateLayout) {
		sep := raw[len(dateLayout)]
		if sep != 'T' && sep != ' ' && sep != 't' {
			return Date{}, appErrors.InvalidInput("malformed date %q", raw)
		}
		raw = raw[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, appErrors.InvalidInput("malformed date %q", raw)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the calendar date of instant t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// String renders the canonical YYYY-MM-DD key.
func (d Date) String() string {
	return d.civil().Format(dateLayout)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Weekday of the civil date, independent of any zone.
func (d Date) Weekday() time.Weekday {
	return d.civil().Weekday()
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	t := d.civil().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.civil().Before(other.civil())
}

// MondayOfWeek returns the Monday starting the week that contains d.
func (d Date) MondayOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Midnight returns the first instant of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// WallClock is a local time-of-day. It cannot be compared with instants; use On.
type WallClock struct {
	Hour   int
	Minute int
	Second int
}

// ParseWallClock reads HH:MM or HH:MM:SS.
func ParseWallClock(raw string) (WallClock, error) {
	h, m, s, ok := splitClock(raw)
	if !ok || h > 23 || m > 59 || s > 59 {
		return WallClock{}, appErrors.InvalidInput("malformed time of day %q", raw)
	}
	return WallClock{Hour: h, Minute: m, Second: s}, nil
}

// On combines the clock with date in loc. The UTC offset is the one in force on
// that date, so 08:00 in Europe/Berlin is 07:00Z in January and 06:00Z in July.
func (c WallClock) On(date Date, loc *time.Location) time.Time {
	return time.Date(date.Year, date.Month, date.Day, c.Hour, c.Minute, c.Second, 0, loc).UTC()
}

// String renders HH:MM:SS.
func (c WallClock) String() string {
	return pad2(c.Hour) + ":" + pad2(c.Minute) + ":" + pad2(c.Second)
}

// ParseClockDuration reads a duration written as a clock value, e.g. "01:30:00".
func ParseClockDuration(raw string) (time.Duration, error) {
	h, m, s, ok := splitClock(raw)
	if !ok || m > 59 || s > 59 {
		return 0, appErrors.InvalidInput("malformed duration %q", raw)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
}

// LeadTime is the minimum notice for a same-day booking. NextDay blocks the
// remainder of the current day regardless of Duration.
type LeadTime struct {
	Duration time.Duration
	NextDay  bool
}

// ParseLeadTime accepts "", clock values ("00:30:00"), Go durations ("90m") and
// the next-day sentinel.
func ParseLeadTime(raw string) (LeadTime, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", "0":
		return LeadTime{}, nil
	case "next-day", "next_day", "nextday":
		return LeadTime{NextDay: true}, nil
	}
	if strings.Contains(value, ":") {
		d, err := ParseClockDuration(value)
		if err != nil {
			return LeadTime{}, appErrors.InvalidInput("malformed lead time %q", raw)
		}
		return LeadTime{Duration: d}, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return LeadTime{}, appErrors.InvalidInput("malformed lead time %q", raw)
	}
	return LeadTime{Duration: d}, nil
}

func splitClock(raw string) (h, m, s int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	values := make([]int, 3)
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return 0, 0, 0, false
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, 0, 0, false
		}
		values[i] = v
	}
	return values[0], values[1], values[2], true
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// MarshalText renders the canonical key so Date works as a JSON value and map key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts anything ParseDate accepts.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
