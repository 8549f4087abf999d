package caldav

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"calblock/core/calendar"
)

const (
	// maxOccurrencesPerSeries caps how many occurrences one series may
	// expand to, so an unbounded rule cannot stall a pass.
	maxOccurrencesPerSeries = 5000

	// unboundedHorizon is how far past now a recurring series expands
	// when the listing window is unbounded. Unbounded listings serve
	// the reset flow, which acts on placeholders, and placeholders
	// never recur.
	unboundedHorizon = 365 * 24 * time.Hour
)

// ExpandICS parses a raw iCalendar stream and expands it the way a
// listing would. Debug tooling uses it to preview how a series
// materializes into occurrences.
func ExpandICS(r io.Reader, window calendar.Window, log *zap.Logger) ([]calendar.Event, error) {
	data, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	obj := caldav.CalendarObject{Data: data}
	return expandObject(&obj, window, log), nil
}

// expandObject turns one calendar object into concrete occurrences.
// A single object carries a whole series: the base VEVENT plus any
// RECURRENCE-ID overrides sharing its UID. Events that cannot be
// parsed or expanded are logged and skipped; they never fail the
// listing.
func expandObject(obj *caldav.CalendarObject, window calendar.Window, log *zap.Logger) []calendar.Event {
	if obj.Data == nil {
		return nil
	}

	var bases, overrides []icsEvent
	for _, ve := range obj.Data.Events() {
		ev, err := parseEvent(ve)
		if err != nil {
			log.Warn("Skipping unparsable event",
				zap.String("path", obj.Path),
				zap.Error(err))
			continue
		}
		if ev.RecurrenceID != nil {
			overrides = append(overrides, ev)
		} else {
			bases = append(bases, ev)
		}
	}

	var events []calendar.Event
	applied := make(map[int]bool, len(overrides))
	for _, base := range bases {
		events = append(events, expandSeries(base, overrides, applied, window, obj.Path, log)...)
	}

	// An override can move an occurrence into the window from outside
	// the expanded range; emit those directly.
	for i, ov := range overrides {
		if applied[i] || ov.Cancelled || !window.Contains(ov.Start) {
			continue
		}
		events = append(events, ov.toEvent(ov.Start, ov.End, obj.Path))
	}
	return events
}

// expandSeries expands one base VEVENT into its occurrences inside the
// window, substituting overrides. Indexes of consumed overrides are
// recorded in applied.
func expandSeries(base icsEvent, overrides []icsEvent, applied map[int]bool, window calendar.Window, ref string, log *zap.Logger) []calendar.Event {
	if base.Cancelled {
		return nil
	}
	if base.RawRRule == "" {
		return expandSingle(base, overrides, applied, window, ref)
	}

	r, err := rrule.StrToRRule(base.RawRRule)
	if err != nil {
		log.Warn("Recurrence rule cannot be expanded, skipping series",
			zap.String("uid", base.UID),
			zap.String("rrule", base.RawRRule),
			zap.Error(err))
		return nil
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range base.ExDates {
		set.ExDate(ex.In(base.Start.Location()))
	}

	rangeStart, rangeEnd := expansionRange(base.Start, window)
	occStarts := set.Between(rangeStart, rangeEnd, true)
	if len(occStarts) > maxOccurrencesPerSeries {
		occStarts = occStarts[:maxOccurrencesPerSeries]
		log.Warn("Recurring series truncated",
			zap.String("uid", base.UID),
			zap.Int("cap", maxOccurrencesPerSeries))
	}

	duration := base.End.Sub(base.Start)
	events := make([]calendar.Event, 0, len(occStarts))
	for _, occStart := range occStarts {
		ev := base
		start := occStart
		end := occStart.Add(duration)

		if i, ok := findOverride(base.UID, overrides, occStart); ok {
			applied[i] = true
			if overrides[i].Cancelled {
				continue
			}
			ev = overrides[i]
			start = ev.Start
			end = ev.End
		}
		if !window.Contains(start) {
			continue
		}
		events = append(events, ev.toEvent(start, end, ref))
	}
	return events
}

// expandSingle handles a non-recurring VEVENT, which may still carry
// an override when the event was rescheduled.
func expandSingle(base icsEvent, overrides []icsEvent, applied map[int]bool, window calendar.Window, ref string) []calendar.Event {
	ev := base
	start, end := base.Start, base.End

	if i, ok := findOverride(base.UID, overrides, base.Start); ok {
		applied[i] = true
		if overrides[i].Cancelled {
			return nil
		}
		ev = overrides[i]
		start, end = ev.Start, ev.End
	}
	if !window.Contains(start) {
		return nil
	}
	return []calendar.Event{ev.toEvent(start, end, ref)}
}

// expansionRange bounds Between for one series. An unbounded window
// expands from the series start to a year past now.
func expansionRange(seriesStart time.Time, window calendar.Window) (time.Time, time.Time) {
	if window.IsZero() {
		return seriesStart, time.Now().Add(unboundedHorizon)
	}
	return window.Start.In(seriesStart.Location()), window.End.In(seriesStart.Location())
}

// findOverride locates the override whose RECURRENCE-ID matches the
// occurrence start.
func findOverride(uid string, overrides []icsEvent, occStart time.Time) (int, bool) {
	for i, ov := range overrides {
		if ov.UID != uid || ov.RecurrenceID == nil {
			continue
		}
		if ov.RecurrenceID.Equal(occStart) {
			return i, true
		}
	}
	return -1, false
}
