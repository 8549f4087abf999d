package caldav

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"calblock/core/calendar"
)

const (
	// PropSourceID is the property that ties a placeholder to the
	// meeting occurrence it stands in for. Events carrying it are
	// reported with the value as their correlation tag.
	PropSourceID = "X-CALBLOCK-SOURCE-ID"

	uidSuffix = "@calblock"
	productID = "-//calblock//CalDAV//EN"

	transparencyOpaque      = "OPAQUE"
	transparencyTransparent = "TRANSPARENT"
	statusCancelled         = "CANCELLED"
)

// icsEvent is one VEVENT pulled off the wire, before recurrence
// expansion. A VEVENT with a RECURRENCE-ID is an override for a single
// occurrence of the series sharing its UID.
type icsEvent struct {
	UID       string
	Summary   string
	Location  string
	Organizer string
	Tag       string

	Start     time.Time
	End       time.Time
	AllDay    bool
	Busy      calendar.BusyStatus
	Cancelled bool

	RawRRule     string
	ExDates      []time.Time
	RecurrenceID *time.Time
}

// parseEvent maps a VEVENT into the intermediate form. UID and DTSTART
// are required; everything else degrades to its zero value.
func parseEvent(ve ical.Event) (icsEvent, error) {
	var out icsEvent

	uidProp := ve.Props.Get(ical.PropUID)
	if uidProp == nil || uidProp.Value == "" {
		return out, fmt.Errorf("missing UID")
	}
	out.UID = uidProp.Value

	startProp := ve.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return out, fmt.Errorf("event %s has no DTSTART", out.UID)
	}
	start, err := startProp.DateTime(time.UTC)
	if err != nil {
		return out, fmt.Errorf("event %s: parse DTSTART: %w", out.UID, err)
	}
	out.Start = start
	if startProp.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
		out.AllDay = true
	}

	// DateTimeEnd falls back to DURATION, and to a full day for
	// date-valued starts.
	end, err := ve.DateTimeEnd(time.UTC)
	if err != nil {
		return out, fmt.Errorf("event %s: parse DTEND: %w", out.UID, err)
	}
	out.End = end

	if prop := ve.Props.Get(ical.PropSummary); prop != nil {
		out.Summary = prop.Value
	}
	if prop := ve.Props.Get(ical.PropLocation); prop != nil {
		out.Location = prop.Value
	}
	if prop := ve.Props.Get(ical.PropOrganizer); prop != nil {
		out.Organizer = stripMailto(prop.Value)
	}
	if prop := ve.Props.Get(PropSourceID); prop != nil {
		out.Tag = prop.Value
	}

	out.Busy = calendar.BusyStatusBusy
	if prop := ve.Props.Get(ical.PropTransparency); prop != nil && strings.EqualFold(prop.Value, transparencyTransparent) {
		out.Busy = calendar.BusyStatusFree
	}
	if prop := ve.Props.Get(ical.PropStatus); prop != nil && strings.EqualFold(prop.Value, statusCancelled) {
		out.Cancelled = true
	}

	if prop := ve.Props.Get(ical.PropRecurrenceRule); prop != nil {
		out.RawRRule = prop.Value
	}
	for _, prop := range ve.Props[ical.PropExceptionDates] {
		// EXDATE lines may carry a comma-separated list of instants.
		for _, raw := range strings.Split(prop.Value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			one := prop
			one.Value = raw
			t, err := one.DateTime(start.Location())
			if err != nil {
				return out, fmt.Errorf("event %s: parse EXDATE %q: %w", out.UID, raw, err)
			}
			out.ExDates = append(out.ExDates, t)
		}
	}
	if prop := ve.Props.Get(ical.PropRecurrenceID); prop != nil {
		t, err := prop.DateTime(start.Location())
		if err != nil {
			return out, fmt.Errorf("event %s: parse RECURRENCE-ID: %w", out.UID, err)
		}
		out.RecurrenceID = &t
	}

	return out, nil
}

// toEvent materializes one occurrence of the event at the given span.
// ref is the object path the occurrence can be deleted under.
func (e icsEvent) toEvent(start, end time.Time, ref string) calendar.Event {
	return calendar.Event{
		SourceID:       e.UID,
		Start:          start,
		End:            end,
		Subject:        e.Summary,
		AllDay:         e.AllDay,
		Busy:           e.Busy,
		Location:       e.Location,
		Organizer:      e.Organizer,
		CorrelationTag: e.Tag,
		Ref:            ref,
	}
}

// blockerCalendar renders a placeholder as a single-VEVENT calendar
// object. Times are written in UTC, the span is marked opaque and the
// source occurrence is recorded in the tag property.
func blockerCalendar(uid string, tpl calendar.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetText(ical.PropSummary, tpl.Subject)
	vevent.Props.SetDateTime(ical.PropDateTimeStart, tpl.Start.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, tpl.End.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	vevent.Props.SetText(ical.PropTransparency, transparencyOpaque)
	vevent.Props.SetText(PropSourceID, tpl.CorrelationTag)

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}

// stripMailto removes the mailto: scheme organizer values usually
// carry, leaving the bare address.
func stripMailto(v string) string {
	const scheme = "mailto:"
	if len(v) >= len(scheme) && strings.EqualFold(v[:len(scheme)], scheme) {
		return v[len(scheme):]
	}
	return v
}
