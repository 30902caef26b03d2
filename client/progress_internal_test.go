package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talesoul-backend/models/courses"
)

// progressServer captures every percentage the tracker actually sends.
func progressServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var sent []string
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/enrollments/1/progress", func(w http.ResponseWriter, r *http.Request) {
		sent = append(sent, r.URL.Query().Get("progress_percentage"))
		json.NewEncoder(w).Encode(courses.Enrollment{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &sent
}

func TestProgressTrackerCoalesces(t *testing.T) {
	srv, sent := progressServer(t)
	c := New(srv.URL, WithSessionPath(filepath.Join(t.TempDir(), "token")))

	tracker := NewProgressTracker(c, 1, 10*time.Second)
	clock := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return clock }

	// First report goes out immediately.
	require.NoError(t, tracker.Report(5))
	require.Equal(t, []string{"5"}, *sent)

	// Reports inside the interval only update the pending value.
	clock = clock.Add(2 * time.Second)
	require.NoError(t, tracker.Report(8))
	clock = clock.Add(2 * time.Second)
	require.NoError(t, tracker.Report(12))
	require.Equal(t, []string{"5"}, *sent)

	// Once the interval elapses the next report goes straight out; the
	// superseded pending value is dropped, not replayed.
	clock = clock.Add(10 * time.Second)
	require.NoError(t, tracker.Report(20))
	require.Equal(t, []string{"5", "20"}, *sent)
}

func TestProgressTrackerFlush(t *testing.T) {
	srv, sent := progressServer(t)
	c := New(srv.URL, WithSessionPath(filepath.Join(t.TempDir(), "token")))

	tracker := NewProgressTracker(c, 1, 10*time.Second)
	clock := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return clock }

	require.NoError(t, tracker.Report(5))
	clock = clock.Add(time.Second)
	require.NoError(t, tracker.Report(9))
	require.Equal(t, []string{"5"}, *sent)

	// Flush delivers the held value so the final position survives pause or
	// teardown.
	require.NoError(t, tracker.Flush())
	require.Equal(t, []string{"5", "9"}, *sent)

	// Nothing pending, nothing sent.
	require.NoError(t, tracker.Flush())
	require.Equal(t, []string{"5", "9"}, *sent)
}
