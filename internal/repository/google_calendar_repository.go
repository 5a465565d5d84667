package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/noah-isme/appointment-availability-api/internal/models"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/gcal"
)

const googleEventsPageSize = 250

// GoogleCalendarRepository reads busy periods from Google Calendar.
type GoogleCalendarRepository struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

// NewGoogleCalendarRepository constructs the repository. opts are passed to every client.
func NewGoogleCalendarRepository(oauthCfg *oauth2.Config, opts ...option.ClientOption) *GoogleCalendarRepository {
	return &GoogleCalendarRepository{oauth: oauthCfg, opts: opts}
}

// BusyPeriods lists opaque, non-cancelled events of the integration's calendar
// overlapping [from, to). Revoked grants surface as ErrCalendarUnauthorized.
func (r *GoogleCalendarRepository) BusyPeriods(ctx context.Context, integration *models.CalendarIntegration, from, to time.Time) ([]models.ExternalBusyPeriod, error) {
	if integration == nil {
		return nil, appErrors.ErrCalendarNotConfigured
	}

	token := gcal.Token(integration.AccessToken, integration.RefreshToken, integration.TokenExpiry)
	svc, err := gcal.NewService(ctx, r.oauth, token, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}

	calendarID := integration.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	call := svc.Events.List(calendarID).
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(googleEventsPageSize)

	var periods []models.ExternalBusyPeriod
	err = call.Pages(ctx, func(page *calendar.Events) error {
		loc := pageLocation(page.TimeZone)
		for _, event := range page.Items {
			period, ok, convErr := busyPeriodFromEvent(event, loc)
			if convErr != nil {
				return convErr
			}
			if ok {
				periods = append(periods, period)
			}
		}
		return nil
	})
	if err != nil {
		if gcal.IsUnauthorized(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrCalendarUnauthorized.Code, appErrors.ErrCalendarUnauthorized.Status, appErrors.ErrCalendarUnauthorized.Message)
		}
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return periods, nil
}

func busyPeriodFromEvent(event *calendar.Event, loc *time.Location) (models.ExternalBusyPeriod, bool, error) {
	if event == nil || event.Status == "cancelled" || event.Transparency == "transparent" {
		return models.ExternalBusyPeriod{}, false, nil
	}
	start, err := eventTime(event.Start, loc)
	if err != nil {
		return models.ExternalBusyPeriod{}, false, fmt.Errorf("event %s start: %w", event.Id, err)
	}
	end, err := eventTime(event.End, loc)
	if err != nil {
		return models.ExternalBusyPeriod{}, false, fmt.Errorf("event %s end: %w", event.Id, err)
	}
	if !start.Before(end) {
		return models.ExternalBusyPeriod{}, false, nil
	}
	return models.ExternalBusyPeriod{Start: start, End: end, Title: event.Summary}, true, nil
}

// eventTime reads timed events as instants and all-day events as local midnight.
func eventTime(at *calendar.EventDateTime, loc *time.Location) (time.Time, error) {
	if at == nil {
		return time.Time{}, fmt.Errorf("missing time")
	}
	if at.DateTime != "" {
		t, err := time.Parse(time.RFC3339, at.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	if at.TimeZone != "" {
		if tz, err := time.LoadLocation(at.TimeZone); err == nil {
			loc = tz
		}
	}
	t, err := time.ParseInLocation("2006-01-02", at.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func pageLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
