package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.ics")
	require.NoError(t, os.WriteFile(path, []byte(weekFeed), 0o644))

	events, err := NewSource(path, time.UTC).FetchEvents(context.Background(), weekStart, weekEnd)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestSource_MissingFile(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "nope.ics"), time.UTC).FetchEvents(context.Background(), weekStart, weekEnd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrUpstreamFetch))

	var upstream *contract.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "calendar", upstream.Source)
}

func TestSource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/calendar", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(weekFeed))
	}))
	defer srv.Close()

	events, err := NewSource(srv.URL+"/feed.ics", time.UTC).FetchEvents(context.Background(), weekStart, weekEnd)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestSource_Webcal(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(weekFeed))
	}))
	defer srv.Close()

	location := "webcal://" + strings.TrimPrefix(srv.URL, "https://") + "/feed.ics"
	events, err := NewSource(location, time.UTC).
		WithHTTPClient(srv.Client()).
		FetchEvents(context.Background(), weekStart, weekEnd)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestSource_HTTPErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewSource(srv.URL, time.UTC).FetchEvents(context.Background(), weekStart, weekEnd)
		require.Error(t, err)
		assert.True(t, errors.Is(err, contract.ErrUpstreamFetch))
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(weekFeed))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewSource(srv.URL, time.UTC).FetchEvents(ctx, weekStart, weekEnd)
		require.Error(t, err)
		assert.True(t, errors.Is(err, contract.ErrUpstreamFetch))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
