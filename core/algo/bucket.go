// Package algo holds the pure computations of the flow analytics engine.
// Nothing in this package performs I/O or keeps state between calls.
package algo

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// DayKey identifies a civil date in the analysis timezone.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// dayKeyOf returns the civil date of t in loc.
func dayKeyOf(t time.Time, loc *time.Location) DayKey {
	y, m, d := t.In(loc).Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// String formats the key as YYYY-MM-DD.
func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// compareDayKeys orders keys chronologically.
func compareDayKeys(a, b DayKey) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.Day, b.Day)
}

// DayBuckets maps each civil day to its events in ascending start order.
// Values are never mutated after BucketByDay returns; accessors hand out copies.
type DayBuckets struct {
	keys []DayKey
	days map[DayKey][]schema.Event
}

// Keys returns the bucketed days in chronological order.
func (b DayBuckets) Keys() []DayKey {
	return slices.Clone(b.keys)
}

// Events returns the sorted events of a day, or nil when the day has none.
func (b DayBuckets) Events(k DayKey) []schema.Event {
	return slices.Clone(b.days[k])
}

// Len returns the number of days holding at least one event.
func (b DayBuckets) Len() int {
	return len(b.keys)
}

// Total returns the number of bucketed events.
func (b DayBuckets) Total() int {
	n := 0
	for _, evs := range b.days {
		n += len(evs)
	}
	return n
}

// NormalizeEvent treats a missing or inverted end time as a zero-duration event.
func NormalizeEvent(e schema.Event) schema.Event {
	if e.End.IsZero() || e.End.Before(e.Start) {
		e.End = e.Start
	}
	return e
}

// compareEvents orders events by start, then end.
func compareEvents(a, b schema.Event) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.End.Compare(b.End)
}

// BucketByDay groups events by the civil date of their start instant in loc.
// An event spanning midnight stays on its start day. No event is dropped.
func BucketByDay(events []schema.Event, loc *time.Location) DayBuckets {
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[DayKey][]schema.Event)
	for _, e := range events {
		e = NormalizeEvent(e)
		k := dayKeyOf(e.Start, loc)
		days[k] = append(days[k], e)
	}

	for k := range days {
		slices.SortStableFunc(days[k], compareEvents)
	}

	keys := slices.SortedFunc(maps.Keys(days), compareDayKeys)
	return DayBuckets{keys: keys, days: days}
}
