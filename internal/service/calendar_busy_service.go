package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/appointment-availability-api/internal/availability"
	"github.com/noah-isme/appointment-availability-api/internal/models"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/jobs"
	"github.com/noah-isme/appointment-availability-api/pkg/logger"
)

// JobCalendarDisable disables an integration whose authorization expired.
const JobCalendarDisable = "calendar.disable"

const (
	calendarReasonUnauthorized = "unauthorized"
	calendarReasonTimeout      = "timeout"
	calendarReasonError        = "error"
)

type calendarIntegrationRepository interface {
	FindByEmployee(ctx context.Context, employeeID string) (*models.CalendarIntegration, error)
	Disable(ctx context.Context, id string) error
}

type busyPeriodSource interface {
	BusyPeriods(ctx context.Context, integration *models.CalendarIntegration, from, to time.Time) ([]models.ExternalBusyPeriod, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// CalendarBusyConfig tunes external calendar fetching.
type CalendarBusyConfig struct {
	Enabled     bool
	Timeout     time.Duration
	Concurrency int
	MemoTTL     time.Duration
	MemoSize    int
}

// BusyFetchResult holds busy intervals per employee plus the employees whose
// calendar could not be read and were treated as free.
type BusyFetchResult struct {
	Busy     map[string][]availability.Interval
	Degraded []availability.Issue
}

// CalendarBusyService fetches external busy periods for many employees at once.
// Every failure is isolated to its employee.
type CalendarBusyService struct {
	integrations calendarIntegrationRepository
	source       busyPeriodSource
	queue        jobEnqueuer
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          CalendarBusyConfig
	memo         *expirable.LRU[string, []availability.Interval]
}

// NewCalendarBusyService constructs the service. queue may be nil, in which
// case expired integrations are only logged.
func NewCalendarBusyService(integrations calendarIntegrationRepository, source busyPeriodSource, queue jobEnqueuer, metrics *MetricsService, logger *zap.Logger, cfg CalendarBusyConfig) *CalendarBusyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = 512
	}
	if cfg.MemoTTL <= 0 {
		cfg.MemoTTL = 30 * time.Second
	}
	return &CalendarBusyService{
		integrations: integrations,
		source:       source,
		queue:        queue,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		memo:         expirable.NewLRU[string, []availability.Interval](cfg.MemoSize, nil, cfg.MemoTTL),
	}
}

// FetchBusy returns busy intervals overlapping [from, to) for every employee.
// It never fails as a whole; employees whose calendar errored map to nothing
// and are listed in Degraded.
func (s *CalendarBusyService) FetchBusy(ctx context.Context, employeeIDs []string, from, to time.Time) BusyFetchResult {
	result := BusyFetchResult{Busy: make(map[string][]availability.Interval, len(employeeIDs))}
	if s == nil || !s.cfg.Enabled || s.integrations == nil || s.source == nil || len(employeeIDs) == 0 {
		return result
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	var mu sync.Mutex
	for _, employeeID := range employeeIDs {
		employeeID := employeeID
		g.Go(func() error {
			busy, issue := s.fetchOne(gctx, employeeID, from, to)

			mu.Lock()
			defer mu.Unlock()
			if issue != nil {
				result.Degraded = append(result.Degraded, *issue)
				return nil
			}
			if len(busy) > 0 {
				result.Busy[employeeID] = busy
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (s *CalendarBusyService) fetchOne(ctx context.Context, employeeID string, from, to time.Time) ([]availability.Interval, *availability.Issue) {
	key := memoKey(employeeID, from, to)
	if cached, ok := s.memo.Get(key); ok {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	log := logger.WithContext(ctx, s.logger).With(zap.String("employee_id", employeeID))

	integration, err := s.integrations.FindByEmployee(callCtx, employeeID)
	if err != nil {
		return nil, s.degrade(log, employeeID, classify(callCtx, err), err)
	}
	if integration == nil {
		s.memo.Add(key, nil)
		return nil, nil
	}

	periods, err := s.source.BusyPeriods(callCtx, integration, from, to)
	if err != nil {
		if errors.Is(err, appErrors.ErrCalendarNotConfigured) {
			s.memo.Add(key, nil)
			return nil, nil
		}
		reason := classify(callCtx, err)
		if reason == calendarReasonUnauthorized {
			s.requestDisable(log, integration)
		}
		return nil, s.degrade(log, employeeID, reason, err)
	}

	busy := make([]availability.Interval, 0, len(periods))
	for _, p := range periods {
		if !p.Start.Before(p.End) {
			continue
		}
		busy = append(busy, availability.Interval{Start: p.Start.UTC(), End: p.End.UTC()})
	}
	s.memo.Add(key, busy)
	return busy, nil
}

func (s *CalendarBusyService) degrade(log *zap.Logger, employeeID, reason string, err error) *availability.Issue {
	s.metrics.RecordCalendarFailure(reason)
	log.Warn("external calendar unavailable, treating employee as free",
		zap.String("reason", reason),
		zap.Error(err))
	return &availability.Issue{EmployeeID: employeeID, Reason: "external calendar " + reason}
}

func (s *CalendarBusyService) requestDisable(log *zap.Logger, integration *models.CalendarIntegration) {
	if s.queue == nil {
		log.Warn("calendar authorization expired, no queue to disable integration", zap.String("integration_id", integration.ID))
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		Type:    JobCalendarDisable,
		Key:     JobCalendarDisable + ":" + integration.ID,
		Payload: integration.ID,
	})
	if err != nil {
		log.Error("enqueue calendar disable failed", zap.String("integration_id", integration.ID), zap.Error(err))
	}
}

// DisableIntegrationJob is the queue handler for JobCalendarDisable.
func (s *CalendarBusyService) DisableIntegrationJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok || id == "" {
		return fmt.Errorf("job %s: integration id missing", job.ID)
	}
	if err := s.integrations.Disable(ctx, id); err != nil {
		return err
	}
	s.logger.Info("calendar integration disabled", zap.String("integration_id", id))
	return nil
}

func classify(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, appErrors.ErrCalendarUnauthorized):
		return calendarReasonUnauthorized
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return calendarReasonTimeout
	default:
		return calendarReasonError
	}
}

func memoKey(employeeID string, from, to time.Time) string {
	return employeeID + "|" + from.UTC().Format(time.RFC3339) + "|" + to.UTC().Format(time.RFC3339)
}
