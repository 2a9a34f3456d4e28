package google

import (
	"context"
	"fmt"
	"time"

	"github.com/hartono/hr-screener/internal/scheduling"

	"google.golang.org/api/calendar/v3"

	"go.uber.org/zap"
)

// eventTimeZone is the IANA zone attached to created interview events.
const eventTimeZone = "Asia/Jakarta"

const allDayFormat = "2006-01-02"

// Calendar wraps the Calendar client behind the event operations of the
// slot finder and the workflow.
type Calendar struct {
	srv        *calendar.Service
	calendarID string
	logger     *zap.Logger
}

// Events returns the busy intervals between the two instants. All-day events
// block their whole day. Events whose timestamps cannot be parsed are skipped.
func (c *Calendar) Events(ctx context.Context, from, to time.Time) ([]scheduling.BusyInterval, error) {
	resp, err := c.srv.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	busy := make([]scheduling.BusyInterval, 0, len(resp.Items))
	for _, item := range resp.Items {
		start, startErr := parseEventTime(item.Start)
		end, endErr := parseEventTime(item.End)
		if startErr != nil || endErr != nil {
			c.logger.Warn("skipping event with unparseable times",
				zap.String("event_id", item.Id),
			)
			continue
		}

		busy = append(busy, scheduling.BusyInterval{Start: start, End: end})
	}

	return busy, nil
}

func parseEventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing event time")
	}

	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}

	return time.Parse(allDayFormat, edt.Date)
}

// CreateEvent inserts a new interview event with default reminders.
func (c *Calendar) CreateEvent(ctx context.Context, title, description string, start, end time.Time, attendees []string) error {
	eventAttendees := make([]*calendar.EventAttendee, 0, len(attendees))
	for _, email := range attendees {
		eventAttendees = append(eventAttendees, &calendar.EventAttendee{Email: email})
	}

	event := &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: eventTimeZone},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: eventTimeZone},
		Attendees:   eventAttendees,
		Reminders:   &calendar.EventReminders{UseDefault: true, ForceSendFields: []string{"UseDefault"}},
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("inserting calendar event: %w", err)
	}

	c.logger.Debug("calendar event created",
		zap.String("event_id", created.Id),
		zap.Time("start", start),
	)

	return nil
}
