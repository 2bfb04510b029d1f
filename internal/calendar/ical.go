// Package calendar reads meetings from iCalendar (ICS) feeds.
package calendar

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/teambition/rrule-go"
)

// maxLineBytes bounds a single unfolded ICS line.
const maxLineBytes = 1 << 20

// iCal date and date-time layouts.
const (
	utcLayout      = "20060102T150405Z"
	floatingLayout = "20060102T150405"
	dateLayout     = "20060102"
)

// vevent is one VEVENT component as read from the feed.
type vevent struct {
	uid          string
	start        time.Time
	end          time.Time
	hasEnd       bool
	allDay       bool
	cancelled    bool
	rule         string
	exdates      []time.Time
	recurrenceID time.Time
}

// property is one content line split into name, parameters and value.
type property struct {
	name   string
	params map[string]string
	value  string
}

// Parser parses iCalendar feeds. Floating times are read in the parser's location.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that reads floating times in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse reads a feed and returns the timed meetings overlapping [start, end), sorted by start.
// All-day and cancelled events are skipped, recurring events are expanded, and an
// event without DTEND ends when it starts.
func (p *Parser) Parse(r io.Reader, start, end time.Time) ([]schema.Event, error) {
	components, err := p.readEvents(r)
	if err != nil {
		return nil, err
	}

	// Instances moved or cancelled by a RECURRENCE-ID override, keyed by UID.
	overridden := make(map[string][]time.Time)
	for _, c := range components {
		if !c.recurrenceID.IsZero() {
			overridden[c.uid] = append(overridden[c.uid], c.recurrenceID)
		}
	}

	var events []schema.Event
	for _, c := range components {
		if c.allDay || c.cancelled || c.start.IsZero() {
			continue
		}
		eventEnd := c.start
		if c.hasEnd && !c.end.Before(c.start) {
			eventEnd = c.end
		}

		if c.rule == "" || !c.recurrenceID.IsZero() {
			events = append(events, schema.Event{Start: c.start, End: eventEnd})
			continue
		}

		occurrences, err := expand(c, eventEnd.Sub(c.start), start, end)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", c.uid, err)
		}
		skip := slices.Concat(c.exdates, overridden[c.uid])
		for _, occ := range occurrences {
			if containsTime(skip, occ) {
				continue
			}
			events = append(events, schema.Event{Start: occ, End: occ.Add(eventEnd.Sub(c.start))})
		}
	}

	events = FilterByDateRange(events, start, end)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// readEvents collects every VEVENT of the feed.
func (p *Parser) readEvents(r io.Reader) ([]vevent, error) {
	lines, err := unfold(r)
	if err != nil {
		return nil, err
	}

	var events []vevent
	var current *vevent
	for _, line := range lines {
		prop, ok := splitProperty(line)
		if !ok {
			continue
		}

		switch prop.name {
		case "BEGIN":
			if prop.value == "VEVENT" {
				current = &vevent{}
			}
		case "END":
			if prop.value == "VEVENT" && current != nil {
				events = append(events, *current)
				current = nil
			}
		default:
			if current != nil {
				p.setField(current, prop)
			}
		}
	}
	return events, nil
}

// setField applies one property to the event being read.
func (p *Parser) setField(ev *vevent, prop property) {
	switch prop.name {
	case "UID":
		ev.uid = prop.value
	case "DTSTART":
		ev.start, ev.allDay = p.parseDateTime(prop)
	case "DTEND":
		ev.end, _ = p.parseDateTime(prop)
		ev.hasEnd = !ev.end.IsZero()
	case "STATUS":
		ev.cancelled = strings.EqualFold(prop.value, "CANCELLED")
	case "RRULE":
		ev.rule = prop.value
	case "EXDATE":
		for _, v := range strings.Split(prop.value, ",") {
			t, _ := p.parseDateTime(property{name: prop.name, params: prop.params, value: v})
			if !t.IsZero() {
				ev.exdates = append(ev.exdates, t)
			}
		}
	case "RECURRENCE-ID":
		ev.recurrenceID, _ = p.parseDateTime(prop)
	}
}

// parseDateTime parses a DATE or DATE-TIME value. The second result reports a date-only value.
func (p *Parser) parseDateTime(prop property) (time.Time, bool) {
	value := strings.TrimSpace(prop.value)
	if prop.params["VALUE"] == "DATE" || len(value) == len(dateLayout) {
		t, err := time.ParseInLocation(dateLayout, value, p.loc)
		if err != nil {
			return time.Time{}, true
		}
		return t, true
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(utcLayout, value)
		if err != nil {
			return time.Time{}, false
		}
		return t, false
	}

	loc := p.loc
	if tzid := prop.params["TZID"]; tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(floatingLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, false
}

// expand returns the occurrences of a recurring event that can overlap [start, end).
func expand(ev vevent, duration time.Duration, start, end time.Time) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(ev.rule)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", ev.rule, err)
	}
	rule.DTStart(ev.start)
	return rule.Between(start.Add(-duration), end, true), nil
}

// unfold reads content lines and joins folded continuations.
func unfold(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	return lines, nil
}

// splitProperty splits NAME;PARAM=V:VALUE. Colons inside quoted parameters are ignored.
func splitProperty(line string) (property, bool) {
	inQuotes := false
	colon := -1
	for i, c := range line {
		if c == '"' {
			inQuotes = !inQuotes
		}
		if c == ':' && !inQuotes {
			colon = i
			break
		}
	}
	if colon == -1 {
		return property{}, false
	}

	head := strings.Split(line[:colon], ";")
	prop := property{
		name:   strings.ToUpper(head[0]),
		params: make(map[string]string, len(head)-1),
		value:  line[colon+1:],
	}
	for _, param := range head[1:] {
		k, v, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		prop.params[strings.ToUpper(k)] = strings.Trim(v, `"`)
	}
	return prop, true
}

func containsTime(ts []time.Time, t time.Time) bool {
	return slices.ContainsFunc(ts, t.Equal)
}

// FilterByDateRange returns events that overlap [start, end).
// A zero-length event is kept when its instant falls inside the range.
func FilterByDateRange(events []schema.Event, start, end time.Time) []schema.Event {
	var filtered []schema.Event
	for _, e := range events {
		if !e.Start.Before(end) {
			continue
		}
		if e.End.After(start) || (!e.End.After(e.Start) && !e.Start.Before(start)) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
