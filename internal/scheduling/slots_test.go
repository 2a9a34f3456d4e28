package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubEventSource struct {
	busy []BusyInterval
	err  error

	from time.Time
	to   time.Time
}

func (s *stubEventSource) Events(_ context.Context, from, to time.Time) ([]BusyInterval, error) {
	s.from = from
	s.to = to
	if s.err != nil {
		return nil, s.err
	}
	return s.busy, nil
}

var wib = time.FixedZone("WIB", 7*60*60)

// monday is a fixed reference instant so the scan window is deterministic.
var monday = time.Date(2026, time.March, 2, 15, 30, 0, 0, wib)

func newTestFinder(events EventSource, at time.Time) *Finder {
	finder := NewFinder(events, Config{Location: wib}, zap.NewNop())
	finder.now = func() time.Time { return at }
	return finder
}

func TestNextEmptyCalendarStartsTomorrowMorning(t *testing.T) {
	source := &stubEventSource{}
	finder := newTestFinder(source, monday)

	slot, err := finder.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, time.March, 3, 9, 0, 0, 0, wib)
	if !slot.Equal(want) {
		t.Fatalf("expected %v, got %v", want, slot)
	}

	wantFrom := time.Date(2026, time.March, 2, 0, 0, 0, 0, wib)
	if !source.from.Equal(wantFrom) {
		t.Fatalf("expected window start %v, got %v", wantFrom, source.from)
	}

	if !source.to.Equal(wantFrom.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected window end %v", source.to)
	}
}

func TestNextSkipsBusySlot(t *testing.T) {
	source := &stubEventSource{busy: []BusyInterval{
		{
			Start: time.Date(2026, time.March, 3, 9, 0, 0, 0, wib),
			End:   time.Date(2026, time.March, 3, 10, 0, 0, 0, wib),
		},
	}}
	finder := newTestFinder(source, monday)

	slot, err := finder.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Back to back with the existing event is fine.
	want := time.Date(2026, time.March, 3, 10, 0, 0, 0, wib)
	if !slot.Equal(want) {
		t.Fatalf("expected %v, got %v", want, slot)
	}
}

func TestNextSkipsPartialOverlap(t *testing.T) {
	source := &stubEventSource{busy: []BusyInterval{
		{
			Start: time.Date(2026, time.March, 3, 8, 30, 0, 0, wib),
			End:   time.Date(2026, time.March, 3, 9, 30, 0, 0, wib),
		},
	}}
	finder := newTestFinder(source, monday)

	slot, err := finder.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, time.March, 3, 10, 0, 0, 0, wib)
	if !slot.Equal(want) {
		t.Fatalf("expected %v, got %v", want, slot)
	}
}

func TestNextSkipsWeekend(t *testing.T) {
	friday := time.Date(2026, time.March, 6, 11, 0, 0, 0, wib)
	finder := newTestFinder(&stubEventSource{}, friday)

	slot, err := finder.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, time.March, 9, 9, 0, 0, 0, wib)
	if !slot.Equal(want) {
		t.Fatalf("expected Monday morning %v, got %v", want, slot)
	}

	if wd := slot.Weekday(); wd == time.Saturday || wd == time.Sunday {
		t.Fatalf("slot landed on a weekend: %v", slot)
	}
}

func TestNextFullyBookedWindow(t *testing.T) {
	source := &stubEventSource{busy: []BusyInterval{
		{
			Start: time.Date(2026, time.March, 2, 0, 0, 0, 0, wib),
			End:   time.Date(2026, time.March, 16, 0, 0, 0, 0, wib),
		},
	}}
	finder := newTestFinder(source, monday)

	if _, err := finder.Next(context.Background()); !errors.Is(err, ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}
}

func TestNextPropagatesCalendarError(t *testing.T) {
	fetchErr := errors.New("calendar unavailable")
	finder := newTestFinder(&stubEventSource{err: fetchErr}, monday)

	if _, err := finder.Next(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestNextRespectsOfficeHours(t *testing.T) {
	// Tuesday is fully booked during office hours, so the first free slot is
	// Wednesday morning rather than Tuesday evening.
	source := &stubEventSource{busy: []BusyInterval{
		{
			Start: time.Date(2026, time.March, 3, 9, 0, 0, 0, wib),
			End:   time.Date(2026, time.March, 3, 17, 0, 0, 0, wib),
		},
	}}
	finder := newTestFinder(source, monday)

	slot, err := finder.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, time.March, 4, 9, 0, 0, 0, wib)
	if !slot.Equal(want) {
		t.Fatalf("expected %v, got %v", want, slot)
	}
}
