package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weekFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VTIMEZONE\r\n" +
	"TZID:America/Chicago\r\n" +
	"BEGIN:STANDARD\r\n" +
	"DTSTART:19701101T020000\r\n" +
	"END:STANDARD\r\n" +
	"END:VTIMEZONE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTART:20240603T150000Z\r\n" +
	"DTEND:20240603T153000Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=5\r\n" +
	"EXDATE:20240605T150000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"RECURRENCE-ID:20240606T150000Z\r\n" +
	"DTSTART:20240606T170000Z\r\n" +
	"DTEND:20240606T173000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:review\r\n" +
	"DTSTART:20240604T140000Z\r\n" +
	"DTEND:20240604T150000Z\r\n" +
	"SUMMARY:Design review with a long\r\n" +
	"  folded line\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:offsite\r\n" +
	"DTSTART;VALUE=DATE:20240605\r\n" +
	"DTEND;VALUE=DATE:20240606\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:cancelled\r\n" +
	"DTSTART:20240605T180000Z\r\n" +
	"DTEND:20240605T190000Z\r\n" +
	"STATUS:CANCELLED\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:noend\r\n" +
	"DTSTART:20240607T100000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lastweek\r\n" +
	"DTSTART:20240528T100000Z\r\n" +
	"DTEND:20240528T110000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func utc(day, hh, mm int) time.Time {
	return time.Date(2024, 6, day, hh, mm, 0, 0, time.UTC)
}

// week of Sunday June 2 2024 in UTC
var weekStart, weekEnd = utc(2, 0, 0), utc(9, 0, 0)

func TestParse_Week(t *testing.T) {
	events, err := NewParser(time.UTC).Parse(strings.NewReader(weekFeed), weekStart, weekEnd)
	require.NoError(t, err)

	want := []schema.Event{
		{Start: utc(3, 15, 0), End: utc(3, 15, 30)},
		{Start: utc(4, 14, 0), End: utc(4, 15, 0)},
		{Start: utc(4, 15, 0), End: utc(4, 15, 30)},
		{Start: utc(6, 17, 0), End: utc(6, 17, 30)}, // moved occurrence
		{Start: utc(7, 10, 0), End: utc(7, 10, 0)},  // no DTEND
		{Start: utc(7, 15, 0), End: utc(7, 15, 30)},
	}
	require.Len(t, events, len(want))
	for i := range want {
		assert.True(t, want[i].Start.Equal(events[i].Start), "start %d: %v", i, events[i].Start)
		assert.True(t, want[i].End.Equal(events[i].End), "end %d: %v", i, events[i].End)
	}
}

func TestParse_Timezones(t *testing.T) {
	cdt := time.FixedZone("CDT", -5*3600)
	feed := "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART;TZID=America/Chicago:20240605T090000\n" +
		"DTEND;TZID=\"America/Chicago\":20240605T100000\n" +
		"END:VEVENT\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:20240606T090000\n" +
		"DTEND:20240606T093000\n" +
		"END:VEVENT\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART;TZID=Not/AZone:20240607T090000\n" +
		"DTEND;TZID=Not/AZone:20240607T091500\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"

	events, err := NewParser(cdt).Parse(strings.NewReader(feed), weekStart, weekEnd)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.True(t, utc(5, 14, 0).Equal(events[0].Start))
	assert.True(t, utc(5, 15, 0).Equal(events[0].End))
	// floating and unknown zones fall back to the parser location
	assert.True(t, utc(6, 14, 0).Equal(events[1].Start))
	assert.True(t, utc(7, 14, 0).Equal(events[2].Start))
}

func TestParse_EdgeCases(t *testing.T) {
	t.Run("empty feed", func(t *testing.T) {
		events, err := NewParser(nil).Parse(strings.NewReader(""), weekStart, weekEnd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("end before start is clamped", func(t *testing.T) {
		feed := "BEGIN:VEVENT\nDTSTART:20240604T100000Z\nDTEND:20240604T090000Z\nEND:VEVENT\n"
		events, err := NewParser(time.UTC).Parse(strings.NewReader(feed), weekStart, weekEnd)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, events[0].End.Equal(events[0].Start))
	})

	t.Run("event spanning the window start is kept", func(t *testing.T) {
		feed := "BEGIN:VEVENT\nDTSTART:20240601T230000Z\nDTEND:20240602T010000Z\nEND:VEVENT\n"
		events, err := NewParser(time.UTC).Parse(strings.NewReader(feed), weekStart, weekEnd)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("weekly recurrence before the window", func(t *testing.T) {
		feed := "BEGIN:VEVENT\nUID:1on1\nDTSTART:20240506T160000Z\nDTEND:20240506T163000Z\n" +
			"RRULE:FREQ=WEEKLY;BYDAY=MO,TH\nEND:VEVENT\n"
		events, err := NewParser(time.UTC).Parse(strings.NewReader(feed), weekStart, weekEnd)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.True(t, utc(3, 16, 0).Equal(events[0].Start))
		assert.True(t, utc(6, 16, 0).Equal(events[1].Start))
	})

	t.Run("invalid rule", func(t *testing.T) {
		feed := "BEGIN:VEVENT\nUID:bad\nDTSTART:20240603T150000Z\nRRULE:FREQ=SOMETIMES\nEND:VEVENT\n"
		_, err := NewParser(time.UTC).Parse(strings.NewReader(feed), weekStart, weekEnd)
		assert.Error(t, err)
	})

	t.Run("garbage lines ignored", func(t *testing.T) {
		feed := "not ical at all\nBEGIN:VEVENT\nDTSTART:nonsense\nEND:VEVENT\n"
		events, err := NewParser(time.UTC).Parse(strings.NewReader(feed), weekStart, weekEnd)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestSplitProperty(t *testing.T) {
	prop, ok := splitProperty(`DTSTART;TZID="Etc/GMT+5:odd";VALUE=DATE-TIME:20240605T090000`)
	require.True(t, ok)
	assert.Equal(t, "DTSTART", prop.name)
	assert.Equal(t, "Etc/GMT+5:odd", prop.params["TZID"])
	assert.Equal(t, "DATE-TIME", prop.params["VALUE"])
	assert.Equal(t, "20240605T090000", prop.value)

	_, ok = splitProperty("no colon here")
	assert.False(t, ok)
}

func TestFilterByDateRange(t *testing.T) {
	events := []schema.Event{
		{Start: utc(1, 10, 0), End: utc(1, 11, 0)},
		{Start: utc(3, 10, 0), End: utc(3, 11, 0)},
		{Start: utc(9, 0, 0), End: utc(9, 1, 0)},
	}
	got := FilterByDateRange(events, weekStart, weekEnd)
	require.Len(t, got, 1)
	assert.True(t, utc(3, 10, 0).Equal(got[0].Start))
}

func TestFilterByDateRange_Boundaries(t *testing.T) {
	events := []schema.Event{
		{Start: weekStart, End: weekStart},                              // zero length at the window start
		{Start: utc(1, 23, 0), End: weekStart},                          // ends exactly at the window start
		{Start: utc(1, 23, 30), End: utc(2, 0, 30)},                     // spans into the window
		{Start: utc(4, 12, 0), End: utc(4, 12, 0)},                      // zero length inside
		{Start: weekEnd, End: weekEnd},                                  // zero length at the window end
		{Start: weekEnd.Add(-time.Minute), End: weekEnd.Add(time.Hour)}, // spans out of the window
	}
	got := FilterByDateRange(events, weekStart, weekEnd)
	require.Len(t, got, 4)
	assert.True(t, weekStart.Equal(got[0].Start))
	assert.True(t, utc(1, 23, 30).Equal(got[1].Start))
	assert.True(t, utc(4, 12, 0).Equal(got[2].Start))
	assert.True(t, weekEnd.Add(-time.Minute).Equal(got[3].Start))
}
