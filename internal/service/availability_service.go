package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/appointment-availability-api/internal/availability"
	"github.com/noah-isme/appointment-availability-api/internal/dto"
	"github.com/noah-isme/appointment-availability-api/internal/models"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/logger"
)

const (
	computeKindWeek     = "week"
	computeKindCombined = "combined"
	slotLabelLayout     = "15:04"
)

type employeeRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error)
	ListByService(ctx context.Context, serviceID string) ([]models.Employee, error)
}

type serviceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type workingHoursRepository interface {
	ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.WorkingHours, error)
}

type appointmentRepository interface {
	ListActiveInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.Appointment, error)
}

type blockedTimeRepository interface {
	ListInRange(ctx context.Context, employeeIDs []string, from, to string) ([]models.BlockedTime, error)
}

type busyFetcher interface {
	FetchBusy(ctx context.Context, employeeIDs []string, from, to time.Time) BusyFetchResult
}

// AvailabilityConfig tunes availability computation.
type AvailabilityConfig struct {
	Location         *time.Location
	CombineTolerance time.Duration
	CacheTTL         time.Duration
}

// AvailabilityServiceParams groups constructor dependencies.
type AvailabilityServiceParams struct {
	Employees    employeeRepository
	Services     serviceRepository
	WorkingHours workingHoursRepository
	Appointments appointmentRepository
	BlockedTimes blockedTimeRepository
	Busy         busyFetcher
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       AvailabilityConfig
}

// AvailabilityService loads everything an availability request depends on and
// runs the engine over it.
type AvailabilityService struct {
	employees    employeeRepository
	services     serviceRepository
	workingHours workingHoursRepository
	appointments appointmentRepository
	blockedTimes blockedTimeRepository
	busy         busyFetcher
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
	cfg          AvailabilityConfig
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(params AvailabilityServiceParams) *AvailabilityService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CombineTolerance <= 0 {
		cfg.CombineTolerance = availability.DefaultCombineTolerance
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityService{
		employees:    params.Employees,
		services:     params.Services,
		workingHours: params.WorkingHours,
		appointments: params.Appointments,
		blockedTimes: params.BlockedTimes,
		busy:         params.Busy,
		cache:        params.Cache,
		metrics:      params.Metrics,
		validator:    validate,
		logger:       log,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Location is the zone slots are presented in.
func (s *AvailabilityService) Location() *time.Location {
	return s.cfg.Location
}

// weekFrame is the resolved time frame of one request.
type weekFrame struct {
	anchor availability.Date
	monday availability.Date
	now    time.Time
}

func (f weekFrame) bounds(loc *time.Location) (time.Time, time.Time) {
	return f.monday.Midnight(loc), f.monday.AddDays(7).Midnight(loc)
}

// Week returns the availability of one service in the week containing q.Date.
// The boolean reports whether the result came from cache.
func (s *AvailabilityService) Week(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, bool, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, false, appErrors.InvalidInput("invalid availability query: %v", err)
	}
	frame, err := s.frame(q.Date)
	if err != nil {
		return nil, false, err
	}

	employeeIDs := normalizeIDs(q.EmployeeIDs)
	cacheKey := AvailabilityKey(computeKindWeek, q.ServiceID, frame.anchor.String(),
		availability.DateOf(frame.now, s.cfg.Location).String(), strings.Join(employeeIDs, ","))
	var cached dto.AvailabilityResponse
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	svc, duration, err := s.loadService(ctx, q.ServiceID)
	if err != nil {
		return nil, false, err
	}
	employees, err := s.resolveEmployees(ctx, svc.ID, employeeIDs)
	if err != nil {
		return nil, false, err
	}
	inputs, issues, err := s.loadInputs(ctx, frame, employees)
	if err != nil {
		return nil, false, err
	}

	started := time.Now()
	result, err := availability.ComputeWeek(availability.WeekRequest{
		Anchor:   frame.anchor,
		Location: s.cfg.Location,
		Now:      frame.now,
		Demand:   availability.Demand{Duration: duration, Employees: pick(inputs, employees)},
	})
	s.metrics.ObserveComputation(computeKindWeek, time.Since(started))
	if err != nil {
		return nil, false, err
	}

	resp := s.presentWeek(svc.ID, frame, result, issues)
	s.persistCache(ctx, cacheKey, resp)
	return resp, false, nil
}

// Combined returns start times at which two services can be booked back to back.
func (s *AvailabilityService) Combined(ctx context.Context, q dto.CombinedAvailabilityQuery) (*dto.CombinedAvailabilityResponse, bool, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, false, appErrors.InvalidInput("invalid availability query: %v", err)
	}
	frame, err := s.frame(q.Date)
	if err != nil {
		return nil, false, err
	}

	employeeIDs := normalizeIDs(q.EmployeeIDs)
	cacheKey := AvailabilityKey(computeKindCombined, q.ServiceID, q.SecondServiceID, frame.anchor.String(),
		availability.DateOf(frame.now, s.cfg.Location).String(), strings.Join(employeeIDs, ","))
	var cached dto.CombinedAvailabilityResponse
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	first, firstDuration, err := s.loadService(ctx, q.ServiceID)
	if err != nil {
		return nil, false, err
	}
	second, secondDuration, err := s.loadService(ctx, q.SecondServiceID)
	if err != nil {
		return nil, false, err
	}
	firstEmployees, err := s.resolveEmployees(ctx, first.ID, employeeIDs)
	if err != nil {
		return nil, false, err
	}
	secondEmployees, err := s.resolveEmployees(ctx, second.ID, employeeIDs)
	if err != nil {
		return nil, false, err
	}
	inputs, issues, err := s.loadInputs(ctx, frame, unionIDs(firstEmployees, secondEmployees))
	if err != nil {
		return nil, false, err
	}

	started := time.Now()
	result, err := availability.ComputeCombinedWeek(availability.CombinedWeekRequest{
		Anchor:    frame.anchor,
		Location:  s.cfg.Location,
		Now:       frame.now,
		First:     availability.Demand{Duration: firstDuration, Employees: pick(inputs, firstEmployees)},
		Second:    availability.Demand{Duration: secondDuration, Employees: pick(inputs, secondEmployees)},
		Tolerance: s.cfg.CombineTolerance,
	})
	s.metrics.ObserveComputation(computeKindCombined, time.Since(started))
	if err != nil {
		return nil, false, err
	}

	resp := s.presentCombined(first.ID, second.ID, frame, result, issues)
	s.persistCache(ctx, cacheKey, resp)
	return resp, false, nil
}

func (s *AvailabilityService) frame(raw string) (weekFrame, error) {
	anchor, err := availability.ParseDate(raw)
	if err != nil {
		return weekFrame{}, err
	}
	return weekFrame{anchor: anchor, monday: anchor.MondayOfWeek(), now: s.now().UTC()}, nil
}

// loadService returns the service and its full occupancy, duration plus buffer.
func (s *AvailabilityService) loadService(ctx context.Context, id string) (*models.Service, time.Duration, error) {
	started := time.Now()
	svc, err := s.services.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("services.find", time.Since(started))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.InvalidInput("unknown service %s", id)
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	if svc == nil {
		return nil, 0, appErrors.InvalidInput("unknown service %s", id)
	}

	duration, err := availability.ParseClockDuration(svc.Duration)
	if err != nil {
		return nil, 0, err
	}
	var buffer time.Duration
	if strings.TrimSpace(svc.BufferTime) != "" {
		if buffer, err = availability.ParseClockDuration(svc.BufferTime); err != nil {
			return nil, 0, err
		}
	}
	total := duration + buffer
	if total <= 0 {
		return nil, 0, appErrors.InvalidInput("service %s has no duration", id)
	}
	return svc, total, nil
}

// resolveEmployees returns the requested employees, or every active employee
// offering the service when none were requested.
func (s *AvailabilityService) resolveEmployees(ctx context.Context, serviceID string, ids []string) ([]string, error) {
	started := time.Now()
	var (
		employees []models.Employee
		err       error
	)
	if len(ids) == 0 {
		employees, err = s.employees.ListByService(ctx, serviceID)
	} else {
		employees, err = s.employees.FindByIDs(ctx, ids)
	}
	s.metrics.ObserveDBQuery("employees.list", time.Since(started))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}

	found := make(map[string]struct{}, len(employees))
	resolved := make([]string, 0, len(employees))
	for _, e := range employees {
		if _, dup := found[e.ID]; dup {
			continue
		}
		found[e.ID] = struct{}{}
		resolved = append(resolved, e.ID)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, appErrors.InvalidInput("unknown employee %s", id)
		}
	}
	sort.Strings(resolved)
	return resolved, nil
}

// loadInputs reads schedules and every block source of the week. Records that
// cannot be interpreted exclude their employee and are returned as issues.
func (s *AvailabilityService) loadInputs(ctx context.Context, frame weekFrame, employeeIDs []string) (map[string]availability.EmployeeInput, []availability.Issue, error) {
	from, to := frame.bounds(s.cfg.Location)
	log := logger.WithContext(ctx, s.logger)

	started := time.Now()
	hours, err := s.workingHours.ListByEmployees(ctx, employeeIDs)
	s.metrics.ObserveDBQuery("working_hours.list", time.Since(started))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}

	started = time.Now()
	appointments, err := s.appointments.ListActiveInRange(ctx, employeeIDs, from, to)
	s.metrics.ObserveDBQuery("appointments.list", time.Since(started))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	started = time.Now()
	blocked, err := s.blockedTimes.ListInRange(ctx, employeeIDs, frame.monday.String(), frame.monday.AddDays(6).String())
	s.metrics.ObserveDBQuery("blocked_times.list", time.Since(started))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocked times")
	}

	inputs := make(map[string]availability.EmployeeInput, len(employeeIDs))
	for _, id := range employeeIDs {
		inputs[id] = availability.EmployeeInput{ID: id}
	}
	broken := make(map[string]error)

	for _, wh := range hours {
		input, ok := inputs[wh.EmployeeID]
		if !ok {
			continue
		}
		entry, err := scheduleEntry(wh)
		if err != nil {
			broken[wh.EmployeeID] = err
			continue
		}
		input.Schedule = append(input.Schedule, entry)
		inputs[wh.EmployeeID] = input
	}

	for _, a := range appointments {
		input, ok := inputs[a.EmployeeID]
		if !ok {
			continue
		}
		input.Sources.Appointments = append(input.Sources.Appointments, availability.Appointment{
			EmployeeID: a.EmployeeID,
			DateKey:    a.Date,
			Start:      a.StartTime,
			End:        a.EndTime,
		})
		inputs[a.EmployeeID] = input
	}

	for _, b := range blocked {
		input, ok := inputs[b.EmployeeID]
		if !ok {
			continue
		}
		entry, err := blockedEntry(b)
		if err != nil {
			broken[b.EmployeeID] = err
			continue
		}
		input.Sources.Blocked = append(input.Sources.Blocked, entry)
		inputs[b.EmployeeID] = input
	}

	busy := BusyFetchResult{}
	if s.busy != nil {
		busy = s.busy.FetchBusy(ctx, employeeIDs, from, to)
	}
	for id, intervals := range busy.Busy {
		input, ok := inputs[id]
		if !ok {
			continue
		}
		input.Sources.ExternalBusy = intervals
		inputs[id] = input
	}
	s.metrics.RecordDegradedProviders(len(busy.Degraded))

	issues := append([]availability.Issue(nil), busy.Degraded...)
	for _, id := range employeeIDs {
		err, ok := broken[id]
		if !ok {
			continue
		}
		log.Warn("employee excluded from availability", zap.String("employee_id", id), zap.Error(err))
		inputs[id] = availability.EmployeeInput{ID: id}
		issues = append(issues, availability.Issue{EmployeeID: id, Reason: err.Error()})
	}
	return inputs, issues, nil
}

func scheduleEntry(wh models.WorkingHours) (availability.ScheduleEntry, error) {
	if wh.Weekday < 0 || wh.Weekday > 6 {
		return availability.ScheduleEntry{}, appErrors.InvalidInput("working hours %s has weekday %d", wh.ID, wh.Weekday)
	}
	start, err := availability.ParseWallClock(wh.StartTime)
	if err != nil {
		return availability.ScheduleEntry{}, err
	}
	end, err := availability.ParseWallClock(wh.EndTime)
	if err != nil {
		return availability.ScheduleEntry{}, err
	}
	lead, err := availability.ParseLeadTime(wh.LeadTime)
	if err != nil {
		return availability.ScheduleEntry{}, err
	}
	entry := availability.ScheduleEntry{
		Weekday:     time.Weekday(wh.Weekday),
		Start:       start,
		End:         end,
		LeadTime:    lead,
		Granularity: wh.TimeslotInterval,
	}
	if entry.PauseStart, err = optionalClock(wh.PauseStart); err != nil {
		return availability.ScheduleEntry{}, err
	}
	if entry.PauseEnd, err = optionalClock(wh.PauseEnd); err != nil {
		return availability.ScheduleEntry{}, err
	}
	if (entry.PauseStart == nil) != (entry.PauseEnd == nil) {
		return availability.ScheduleEntry{}, appErrors.InvalidInput("working hours %s has an open-ended pause", wh.ID)
	}
	return entry, nil
}

func blockedEntry(b models.BlockedTime) (availability.BlockedEntry, error) {
	entry := availability.BlockedEntry{EmployeeID: b.EmployeeID, DateKey: b.Date, AllDay: b.AllDay}
	if b.GroupID != nil {
		entry.GroupID = *b.GroupID
	}
	var err error
	if entry.Start, err = optionalClock(b.StartTime); err != nil {
		return availability.BlockedEntry{}, err
	}
	if entry.End, err = optionalClock(b.EndTime); err != nil {
		return availability.BlockedEntry{}, err
	}
	return entry, nil
}

func optionalClock(raw *string) (*availability.WallClock, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	clock, err := availability.ParseWallClock(*raw)
	if err != nil {
		return nil, err
	}
	return &clock, nil
}

func (s *AvailabilityService) presentWeek(serviceID string, frame weekFrame, result availability.WeekResult, loadIssues []availability.Issue) *dto.AvailabilityResponse {
	loc := s.cfg.Location
	resp := &dto.AvailabilityResponse{
		ServiceID: serviceID,
		Timezone:  loc.String(),
		WeekStart: frame.monday.String(),
		Days:      make([]dto.DayView, 0, len(result.Days)),
		Issues:    presentIssues(loadIssues, result.Issues),
	}
	for _, day := range result.Days {
		view := dto.DayView{Date: day.Date.String(), Weekday: day.Date.Weekday().String(), Slots: make([]dto.SlotView, 0, len(day.Slots))}
		for _, slot := range day.Slots {
			view.Slots = append(view.Slots, dto.SlotView{
				Start:       slot.Start.UTC(),
				Time:        slot.Start.In(loc).Format(slotLabelLayout),
				EmployeeIDs: slot.EmployeeIDs,
			})
		}
		resp.Days = append(resp.Days, view)
	}
	return resp
}

func (s *AvailabilityService) presentCombined(firstID, secondID string, frame weekFrame, result availability.CombinedWeekResult, loadIssues []availability.Issue) *dto.CombinedAvailabilityResponse {
	loc := s.cfg.Location
	resp := &dto.CombinedAvailabilityResponse{
		ServiceID:       firstID,
		SecondServiceID: secondID,
		Timezone:        loc.String(),
		WeekStart:       frame.monday.String(),
		Days:            make([]dto.CombinedDayView, 0, len(result.Days)),
		Issues:          presentIssues(loadIssues, result.Issues),
	}
	for _, day := range result.Days {
		view := dto.CombinedDayView{Date: day.Date.String(), Weekday: day.Date.Weekday().String(), Slots: make([]dto.CombinedSlotView, 0, len(day.Slots))}
		for _, slot := range day.Slots {
			view.Slots = append(view.Slots, dto.CombinedSlotView{
				First:  serviceSlotView(slot.First, loc),
				Second: serviceSlotView(slot.Second, loc),
			})
		}
		resp.Days = append(resp.Days, view)
	}
	return resp
}

func serviceSlotView(slot availability.ServiceSlot, loc *time.Location) dto.ServiceSlotView {
	return dto.ServiceSlotView{
		Start:       slot.Start.UTC(),
		End:         slot.End.UTC(),
		StartTime:   slot.Start.In(loc).Format(slotLabelLayout),
		EndTime:     slot.End.In(loc).Format(slotLabelLayout),
		EmployeeIDs: slot.EmployeeIDs,
	}
}

func presentIssues(lists ...[]availability.Issue) []dto.AvailabilityIssue {
	var out []dto.AvailabilityIssue
	seen := make(map[availability.Issue]struct{})
	for _, list := range lists {
		for _, issue := range list {
			if _, ok := seen[issue]; ok {
				continue
			}
			seen[issue] = struct{}{}
			out = append(out, dto.AvailabilityIssue{EmployeeID: issue.EmployeeID, Reason: issue.Reason})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func (s *AvailabilityService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		// Cache outages fall through to a fresh computation.
		return false
	}
	return hit
}

func (s *AvailabilityService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// normalizeIDs trims, drops blanks and duplicates, and sorts.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func unionIDs(lists ...[]string) []string {
	var all []string
	for _, list := range lists {
		all = append(all, list...)
	}
	return normalizeIDs(all)
}

func pick(inputs map[string]availability.EmployeeInput, ids []string) []availability.EmployeeInput {
	out := make([]availability.EmployeeInput, 0, len(ids))
	for _, id := range ids {
		input, ok := inputs[id]
		if !ok {
			input = availability.EmployeeInput{ID: id}
		}
		out = append(out, input)
	}
	return out
}
