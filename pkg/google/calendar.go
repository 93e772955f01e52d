package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spendario/spendario/pkg/calendar"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Calendar implements calendar.Provider on the Google Calendar API.
type Calendar struct {
	auth       *Auth
	calendarId string
	loc        *time.Location

	mu      sync.Mutex
	service *gcal.Service
}

func NewCalendar(auth *Auth, calendarId string, loc *time.Location) *Calendar {
	return &Calendar{
		auth:       auth,
		calendarId: calendarId,
		loc:        loc,
	}
}

func (c *Calendar) Insert(ctx context.Context, draft calendar.EventDraft) (calendar.Event, error) {
	service, err := c.prepareService(ctx)
	if err != nil {
		return calendar.Event{}, err
	}

	inserted, err := service.Events.Insert(c.calendarId, &gcal.Event{
		Summary:     draft.Summary,
		Location:    draft.Location,
		Description: draft.Description,
		Start: &gcal.EventDateTime{
			DateTime: draft.Start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: draft.End.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		Reminders: &gcal.EventReminders{UseDefault: true},
	}).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		log.Error(err)
		return calendar.Event{}, err
	}

	return c.toEvent(inserted), nil
}

func (c *Calendar) Get(ctx context.Context, eventId string) (calendar.Event, error) {
	service, err := c.prepareService(ctx)
	if err != nil {
		return calendar.Event{}, err
	}

	found, err := service.Events.Get(c.calendarId, eventId).Do()
	if err != nil {
		if isNotFound(err) {
			return calendar.Event{}, fmt.Errorf("%w: %s", calendar.ErrNotFound, eventId)
		}
		err := fmt.Errorf("unable to retrieve event from Google Calendar: %v", err)
		log.Error(err)
		return calendar.Event{}, err
	}

	return c.toEvent(found), nil
}

func (c *Calendar) Update(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	service, err := c.prepareService(ctx)
	if err != nil {
		return calendar.Event{}, err
	}

	updated, err := service.Events.Update(c.calendarId, event.ID, &gcal.Event{
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start:       c.toEventDateTime(event.Start, event.AllDay),
		End:         c.toEventDateTime(event.End, event.AllDay),
	}).Do()
	if err != nil {
		if isNotFound(err) {
			return calendar.Event{}, fmt.Errorf("%w: %s", calendar.ErrNotFound, event.ID)
		}
		err := fmt.Errorf("unable to update event in Google Calendar: %v", err)
		log.Error(err)
		return calendar.Event{}, err
	}

	return c.toEvent(updated), nil
}

func (c *Calendar) Delete(ctx context.Context, eventId string) error {
	service, err := c.prepareService(ctx)
	if err != nil {
		return err
	}

	if err := service.Events.Delete(c.calendarId, eventId).Do(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", calendar.ErrNotFound, eventId)
		}
		err := fmt.Errorf("unable to delete event from Google Calendar: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func (c *Calendar) List(ctx context.Context, from time.Time, max int) ([]calendar.Event, error) {
	service, err := c.prepareService(ctx)
	if err != nil {
		return nil, err
	}

	result, err := service.Events.List(c.calendarId).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(int64(max)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}

	events := make([]calendar.Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, c.toEvent(item))
	}
	return events, nil
}

func (c *Calendar) prepareService(ctx context.Context) (*gcal.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service != nil {
		return c.service, nil
	}

	client, err := c.auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	c.service = service
	return service, nil
}

func (c *Calendar) toEvent(item *gcal.Event) calendar.Event {
	event := calendar.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Location:    item.Location,
		Description: item.Description,
	}
	event.Start, event.AllDay = c.parseEventTime(item.Start)
	event.End, _ = c.parseEventTime(item.End)
	return event
}

// parseEventTime reads a Google event boundary. Date without DateTime marks
// an all-day event; it parses as midnight in the display timezone.
func (c *Calendar) parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			log.Warnf("unparsable event time from Google Calendar: %q", edt.DateTime)
			return time.Time{}, false
		}
		return t.In(c.loc), false
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, c.loc)
		if err != nil {
			log.Warnf("unparsable event date from Google Calendar: %q", edt.Date)
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func (c *Calendar) toEventDateTime(t time.Time, allDay bool) *gcal.EventDateTime {
	if allDay {
		return &gcal.EventDateTime{Date: t.In(c.loc).Format("2006-01-02")}
	}
	return &gcal.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}
