package availability

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func mustDate(t *testing.T, raw string) Date {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func mustClock(t *testing.T, raw string) WallClock {
	t.Helper()
	c, err := ParseWallClock(raw)
	require.NoError(t, err)
	return c
}

// local returns the instant of date and clock in loc.
func local(t *testing.T, loc *time.Location, date, clock string) time.Time {
	t.Helper()
	return mustClock(t, clock).On(mustDate(t, date), loc)
}

func clockPtr(t *testing.T, raw string) *WallClock {
	c := mustClock(t, raw)
	return &c
}
