package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// sourceName labels calendar failures.
const sourceName = "calendar"

// fetchTimeout caps a single HTTP download of a feed.
const fetchTimeout = 30 * time.Second

// Source reads meetings from an ICS file or an http(s)/webcal URL.
type Source struct {
	location   string
	parser     *Parser
	httpClient *http.Client
}

var _ contract.CalendarSource = &Source{} // Compile-time check

// NewSource creates a calendar source for location. Floating times are read in loc.
func NewSource(location string, loc *time.Location) *Source {
	return &Source{
		location:   location,
		parser:     NewParser(loc),
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// WithHTTPClient replaces the client used for remote feeds.
func (s *Source) WithHTTPClient(client *http.Client) *Source {
	s.httpClient = client
	return s
}

// FetchEvents returns the timed meetings overlapping [start, end).
// Every failure is reported as an upstream fetch error.
func (s *Source) FetchEvents(ctx context.Context, start, end time.Time) ([]schema.Event, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, contract.NewUpstreamError(sourceName, err)
	}
	defer func() { _ = body.Close() }()

	events, err := s.parser.Parse(body, start, end)
	if err != nil {
		return nil, contract.NewUpstreamError(sourceName, err)
	}
	return events, nil
}

// open returns the raw feed.
func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !contract.IsRemoteURL(s.location) {
		f, err := os.Open(s.location)
		if err != nil {
			return nil, fmt.Errorf("opening calendar: %w", err)
		}
		return f, nil
	}

	url := s.location
	if strings.HasPrefix(strings.ToLower(url), "webcal://") {
		url = "https://" + url[len("webcal://"):]
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
