package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPViewCounter_RecordHit(t *testing.T) {
	var got endpointHit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	counter := NewHTTPViewCounter(srv.Client(), srv.URL, "eventboard")
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	err := counter.RecordHit(context.Background(), "/events/ev-1", "10.0.0.1", at)
	require.NoError(t, err)

	assert.Equal(t, "eventboard", got.App)
	assert.Equal(t, "/events/ev-1", got.URI)
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.Equal(t, "2026-03-01 12:30:00", got.Timestamp)
}

func TestHTTPViewCounter_RecordHit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	counter := NewHTTPViewCounter(srv.Client(), srv.URL, "eventboard")
	err := counter.RecordHit(context.Background(), "/events/ev-1", "10.0.0.1", time.Now())
	require.Error(t, err)
}

func TestHTTPViewCounter_ViewsFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("unique"))
		assert.ElementsMatch(t, []string{"/events/ev-1", "/events/ev-2"}, q["uris"])
		assert.NotEmpty(t, q.Get("start"))
		assert.NotEmpty(t, q.Get("end"))

		_ = json.NewEncoder(w).Encode([]viewStats{
			{App: "eventboard", URI: "/events/ev-1", Hits: 42},
			{App: "eventboard", URI: "/events/ev-2", Hits: 7},
		})
	}))
	defer srv.Close()

	counter := NewHTTPViewCounter(srv.Client(), srv.URL, "eventboard")
	views, err := counter.ViewsFor(context.Background(), []string{"ev-1", "ev-2"}, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"ev-1": 42, "ev-2": 7}, views)
}

func TestHTTPViewCounter_ViewsFor_EmptyInput(t *testing.T) {
	counter := NewHTTPViewCounter(nil, "http://stats.invalid", "eventboard")
	views, err := counter.ViewsFor(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, views)
}
