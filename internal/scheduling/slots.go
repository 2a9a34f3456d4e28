// Package scheduling finds free interview slots against a calendar of busy
// intervals.
package scheduling

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoSlot is returned when every candidate slot inside the lookahead window
// conflicts with an existing event.
var ErrNoSlot = errors.New("no free interview slot within the lookahead window")

// BusyInterval is one occupied span on the calendar.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// EventSource lists busy intervals between two instants.
type EventSource interface {
	Events(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
}

const (
	defaultLookaheadDays = 7
	defaultDayStartHour  = 9
	defaultDayEndHour    = 17
)

// Config bounds the slot search. Zero values fall back to office defaults:
// a seven day window of hourly weekday slots between 09:00 and 17:00 in the
// UTC+7 office zone.
type Config struct {
	Location      *time.Location
	LookaheadDays int
	DayStartHour  int
	DayEndHour    int
	SlotDuration  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.FixedZone("WIB", 7*60*60)
	}
	if c.LookaheadDays <= 0 {
		c.LookaheadDays = defaultLookaheadDays
	}
	if c.DayStartHour <= 0 {
		c.DayStartHour = defaultDayStartHour
	}
	if c.DayEndHour <= 0 {
		c.DayEndHour = defaultDayEndHour
	}
	if c.SlotDuration <= 0 {
		c.SlotDuration = time.Hour
	}
	return c
}

// Finder locates the earliest free interview slot. The search starts on the
// day after the current one so a candidate is never invited same day.
type Finder struct {
	events EventSource
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewFinder(events EventSource, cfg Config, log *zap.Logger) *Finder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Finder{
		events: events,
		cfg:    cfg.withDefaults(),
		logger: log,
		now:    time.Now,
	}
}

// Next returns the start of the earliest free slot. Candidate slots are hourly
// on weekdays, scanned day by day from tomorrow through the lookahead window.
// A slot conflicts with an event when the two spans overlap at all.
func (f *Finder) Next(ctx context.Context) (time.Time, error) {
	now := f.now().In(f.cfg.Location)
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, f.cfg.Location)
	windowEnd := windowStart.AddDate(0, 0, f.cfg.LookaheadDays)

	busy, err := f.events.Events(ctx, windowStart, windowEnd)
	if err != nil {
		return time.Time{}, err
	}

	for day := windowStart.AddDate(0, 0, 1); day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		for hour := f.cfg.DayStartHour; hour < f.cfg.DayEndHour; hour++ {
			slot := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, f.cfg.Location)
			if !f.conflicts(slot, busy) {
				f.logger.Debug("free interview slot found",
					zap.Time("slot", slot),
					zap.Int("busy_events", len(busy)),
				)
				return slot, nil
			}
		}
	}

	return time.Time{}, ErrNoSlot
}

func (f *Finder) conflicts(slot time.Time, busy []BusyInterval) bool {
	slotEnd := slot.Add(f.cfg.SlotDuration)
	for _, ev := range busy {
		if slot.Before(ev.End) && slotEnd.After(ev.Start) {
			return true
		}
	}
	return false
}
