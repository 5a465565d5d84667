package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-availability-api/internal/availability"
	"github.com/noah-isme/appointment-availability-api/internal/dto"
	"github.com/noah-isme/appointment-availability-api/internal/models"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
)

type employeeRepoStub struct {
	employees map[string]models.Employee
	byService map[string][]string
}

func (s *employeeRepoStub) FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	var out []models.Employee
	for _, id := range ids {
		if e, ok := s.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *employeeRepoStub) ListByService(ctx context.Context, serviceID string) ([]models.Employee, error) {
	var out []models.Employee
	for _, id := range s.byService[serviceID] {
		out = append(out, s.employees[id])
	}
	return out, nil
}

type serviceRepoStub struct {
	services map[string]models.Service
	calls    int
}

func (s *serviceRepoStub) FindByID(ctx context.Context, id string) (*models.Service, error) {
	s.calls++
	svc, ok := s.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &svc, nil
}

type workingHoursRepoStub struct {
	rows []models.WorkingHours
}

func (s *workingHoursRepoStub) ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.WorkingHours, error) {
	return s.rows, nil
}

type appointmentRepoStub struct {
	rows     []models.Appointment
	from, to time.Time
}

func (s *appointmentRepoStub) ListActiveInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.Appointment, error) {
	s.from, s.to = from, to
	return s.rows, nil
}

type blockedTimeRepoStub struct {
	rows     []models.BlockedTime
	from, to string
	err      error
}

func (s *blockedTimeRepoStub) ListInRange(ctx context.Context, employeeIDs []string, from, to string) ([]models.BlockedTime, error) {
	s.from, s.to = from, to
	return s.rows, s.err
}

type busyFetcherStub struct {
	result BusyFetchResult
	ids    []string
}

func (s *busyFetcherStub) FetchBusy(ctx context.Context, employeeIDs []string, from, to time.Time) BusyFetchResult {
	s.ids = employeeIDs
	return s.result
}

type availabilityFixture struct {
	employees    *employeeRepoStub
	services     *serviceRepoStub
	hours        *workingHoursRepoStub
	appointments *appointmentRepoStub
	blocked      *blockedTimeRepoStub
	busy         *busyFetcherStub
	cache        *memoryCacheRepo
}

func strPtr(v string) *string { return &v }

func newAvailabilityFixture() *availabilityFixture {
	return &availabilityFixture{
		employees: &employeeRepoStub{
			employees: map[string]models.Employee{
				"emp-a": {ID: "emp-a", Name: "Anna", Active: true},
				"emp-b": {ID: "emp-b", Name: "Ben", Active: true},
			},
			byService: map[string][]string{
				"cut":   {"emp-a"},
				"color": {"emp-b"},
			},
		},
		services: &serviceRepoStub{services: map[string]models.Service{
			"cut":   {ID: "cut", Duration: "00:45:00", BufferTime: "00:15:00"},
			"color": {ID: "color", Duration: "00:30:00"},
			"zero":  {ID: "zero", Duration: "00:00:00"},
		}},
		hours: &workingHoursRepoStub{rows: []models.WorkingHours{
			{ID: "wh-a", EmployeeID: "emp-a", Weekday: 2, StartTime: "09:00:00", EndTime: "12:00:00"},
			{ID: "wh-b", EmployeeID: "emp-b", Weekday: 2, StartTime: "09:00:00", EndTime: "12:00:00"},
		}},
		appointments: &appointmentRepoStub{rows: []models.Appointment{{
			ID:         "appt-1",
			EmployeeID: "emp-a",
			Date:       "2024-03-12T00:00:00Z",
			StartTime:  time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
			Status:     models.AppointmentConfirmed,
		}}},
		blocked: &blockedTimeRepoStub{},
		busy:    &busyFetcherStub{},
		cache:   newMemoryCacheRepo(),
	}
}

func (f *availabilityFixture) service(t *testing.T, cacheEnabled bool) *AvailabilityService {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	metrics := NewMetricsService()
	svc := NewAvailabilityService(AvailabilityServiceParams{
		Employees:    f.employees,
		Services:     f.services,
		WorkingHours: f.hours,
		Appointments: f.appointments,
		BlockedTimes: f.blocked,
		Busy:         f.busy,
		Cache:        NewCacheService(f.cache, metrics, time.Minute, nil, cacheEnabled),
		Metrics:      metrics,
		Config:       AvailabilityConfig{Location: loc},
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC) }
	return svc
}

func slotLabels(day dto.DayView) []string {
	labels := make([]string, 0, len(day.Slots))
	for _, slot := range day.Slots {
		labels = append(labels, slot.Time)
	}
	return labels
}

func TestAvailabilityServiceWeek(t *testing.T) {
	f := newAvailabilityFixture()
	svc := f.service(t, false)

	resp, hit, err := svc.Week(context.Background(), dto.AvailabilityQuery{Date: "2024-03-13", ServiceID: "cut"})
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, "cut", resp.ServiceID)
	assert.Equal(t, "Europe/Berlin", resp.Timezone)
	assert.Equal(t, "2024-03-11", resp.WeekStart)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "Monday", resp.Days[0].Weekday)
	assert.Empty(t, resp.Days[0].Slots)

	tuesday := resp.Days[1]
	assert.Equal(t, "2024-03-12", tuesday.Date)
	assert.Equal(t, []string{"09:00", "11:00"}, slotLabels(tuesday))
	assert.Equal(t, time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC), tuesday.Slots[0].Start)
	assert.Equal(t, []string{"emp-a"}, tuesday.Slots[0].EmployeeIDs)
	assert.Empty(t, resp.Issues)

	assert.Equal(t, time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), f.appointments.from)
	assert.Equal(t, time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC), f.appointments.to)
	assert.Equal(t, "2024-03-11", f.blocked.from)
	assert.Equal(t, "2024-03-17", f.blocked.to)
	assert.Equal(t, []string{"emp-a"}, f.busy.ids)
}

func TestAvailabilityServiceWeekAppliesExternalBusyAndIssues(t *testing.T) {
	f := newAvailabilityFixture()
	f.busy.result = BusyFetchResult{
		Busy: map[string][]availability.Interval{
			"emp-a": {{Start: time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 12, 11, 0, 0, 0, time.UTC)}},
		},
		Degraded: []availability.Issue{{EmployeeID: "emp-z", Reason: "external calendar timeout"}},
	}
	svc := f.service(t, false)

	resp, _, err := svc.Week(context.Background(), dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, slotLabels(resp.Days[1]))
	assert.Equal(t, []dto.AvailabilityIssue{{EmployeeID: "emp-z", Reason: "external calendar timeout"}}, resp.Issues)
}

func TestAvailabilityServiceWeekIsolatesBrokenEmployee(t *testing.T) {
	f := newAvailabilityFixture()
	f.hours.rows[1].StartTime = "9am"
	svc := f.service(t, false)

	resp, _, err := svc.Week(context.Background(), dto.AvailabilityQuery{
		Date:        "2024-03-12",
		ServiceID:   "cut",
		EmployeeIDs: []string{"emp-b", "emp-a", "emp-a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slotLabels(resp.Days[1]))
	for _, slot := range resp.Days[1].Slots {
		assert.Equal(t, []string{"emp-a"}, slot.EmployeeIDs)
	}
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, "emp-b", resp.Issues[0].EmployeeID)
	assert.Contains(t, resp.Issues[0].Reason, "9am")
}

func TestAvailabilityServiceWeekBlockedAllDay(t *testing.T) {
	f := newAvailabilityFixture()
	f.blocked.rows = []models.BlockedTime{{ID: "b1", EmployeeID: "emp-a", GroupID: strPtr("vacation"), Date: "2024-03-12", AllDay: true}}
	svc := f.service(t, false)

	resp, _, err := svc.Week(context.Background(), dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut"})
	require.NoError(t, err)
	assert.Empty(t, resp.Days[1].Slots)
}

func TestAvailabilityServiceWeekRejectsInvalidInput(t *testing.T) {
	cases := map[string]dto.AvailabilityQuery{
		"missing date":     {ServiceID: "cut"},
		"malformed date":   {Date: "12.03.2024", ServiceID: "cut"},
		"unknown service":  {Date: "2024-03-12", ServiceID: "nope"},
		"unknown employee": {Date: "2024-03-12", ServiceID: "cut", EmployeeIDs: []string{"emp-a", "ghost"}},
		"zero duration":    {Date: "2024-03-12", ServiceID: "zero", EmployeeIDs: []string{"emp-a"}},
		"no employees":     {Date: "2024-03-12", ServiceID: "color", EmployeeIDs: nil},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			f := newAvailabilityFixture()
			if name == "no employees" {
				f.employees.byService["color"] = nil
			}
			_, _, err := f.service(t, false).Week(context.Background(), q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestAvailabilityServiceWeekDatabaseFailure(t *testing.T) {
	f := newAvailabilityFixture()
	f.blocked.err = errors.New("connection refused")
	_, _, err := f.service(t, false).Week(context.Background(), dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestAvailabilityServiceWeekUsesCache(t *testing.T) {
	f := newAvailabilityFixture()
	svc := f.service(t, true)
	q := dto.AvailabilityQuery{Date: "2024-03-12", ServiceID: "cut", EmployeeIDs: []string{"emp-a"}}

	_, hit, err := svc.Week(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, f.cache.items, 1)

	resp, hit, err := svc.Week(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"09:00", "11:00"}, slotLabels(resp.Days[1]))
	assert.Equal(t, 1, f.services.calls)
}

func TestAvailabilityServiceCombined(t *testing.T) {
	f := newAvailabilityFixture()
	svc := f.service(t, false)

	resp, _, err := svc.Combined(context.Background(), dto.CombinedAvailabilityQuery{
		Date:            "2024-03-12",
		ServiceID:       "cut",
		SecondServiceID: "color",
	})
	require.NoError(t, err)
	assert.Equal(t, "cut", resp.ServiceID)
	assert.Equal(t, "color", resp.SecondServiceID)
	assert.Equal(t, []string{"emp-a", "emp-b"}, f.busy.ids)

	tuesday := resp.Days[1]
	require.Len(t, tuesday.Slots, 1)
	slot := tuesday.Slots[0]
	assert.Equal(t, "09:00", slot.First.StartTime)
	assert.Equal(t, "10:00", slot.First.EndTime)
	assert.Equal(t, []string{"emp-a"}, slot.First.EmployeeIDs)
	assert.Equal(t, "10:00", slot.Second.StartTime)
	assert.Equal(t, "10:30", slot.Second.EndTime)
	assert.Equal(t, []string{"emp-b"}, slot.Second.EmployeeIDs)
}

func TestAvailabilityServiceCombinedUnknownSecondService(t *testing.T) {
	f := newAvailabilityFixture()
	_, _, err := f.service(t, false).Combined(context.Background(), dto.CombinedAvailabilityQuery{
		Date:            "2024-03-12",
		ServiceID:       "cut",
		SecondServiceID: "missing",
	})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}
