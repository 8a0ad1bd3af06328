package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"opspulse/lib/testutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func readRecord(t *testing.T, sink string) Record {
	contents, err := os.ReadFile(sink)
	require.NoError(t, err)

	var rec Record
	err = json.Unmarshal(contents, &rec)
	require.NoError(t, err)
	return rec
}

func TestPipelineRun(t *testing.T) {
	_, cleanup := testutil.Setup(t, testutil.Params{Name: "lib/pipeline"})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	payload := map[string]any{
		"Time Series (Daily)": map[string]any{
			"2024-01-03": map[string]any{"close": "142.35"},
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	rules := []Rule{
		ForbidKey("Error Message"),
		RequireKey("Time Series (Daily)"),
	}

	t.Run("round trips the payload exactly", func(t *testing.T) {
		sink := filepath.Join(t.TempDir(), "out", "record.json")
		p := New(Options{})

		rec, err := p.Run(ctx, Request{Locator: server.URL}, rules, sink)
		require.NoError(t, err)
		require.Greater(t, rec.Bytes, int64(0))

		persisted := readRecord(t, sink)
		if diff := cmp.Diff(payload, persisted.Payload); diff != "" {
			t.Fatalf("persisted payload mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, server.URL, persisted.Metadata.Source)
		require.Equal(t, FormatVersion, persisted.Metadata.Version)
	})

	t.Run("timeout writes nothing", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer slow.Close()

		sink := filepath.Join(t.TempDir(), "record.json")
		p := New(Options{})

		_, err := p.Run(ctx, Request{
			Locator: slow.URL,
			Timeout: time.Millisecond * 50,
		}, nil, sink)
		require.Error(t, err)
		require.Equal(t, KindTimeout, KindOf(err))
		require.NoFileExists(t, sink)
	})

	t.Run("validation failure halts before persistence", func(t *testing.T) {
		sink := filepath.Join(t.TempDir(), "record.json")
		p := New(Options{})

		_, err := p.Run(ctx, Request{Locator: server.URL}, []Rule{
			RequireKey("Meta Data"),
		}, sink)
		require.Error(t, err)
		require.Equal(t, KindValidationFailure, KindOf(err))
		require.Contains(t, err.Error(), "Meta Data")
		require.NoFileExists(t, sink)
	})

	t.Run("two runs differ only in timestamp", func(t *testing.T) {
		dir := t.TempDir()
		first := filepath.Join(dir, "first.json")
		second := filepath.Join(dir, "second.json")

		clock := time.Date(2024, 1, 3, 14, 30, 22, 0, time.UTC)
		p := New(Options{Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}})

		_, err := p.Run(ctx, Request{Locator: server.URL}, rules, first)
		require.NoError(t, err)
		_, err = p.Run(ctx, Request{Locator: server.URL}, rules, second)
		require.NoError(t, err)

		recA := readRecord(t, first)
		recB := readRecord(t, second)
		require.NotEqual(t, recA.Metadata.FetchedAt, recB.Metadata.FetchedAt)

		recA.Metadata.FetchedAt = recB.Metadata.FetchedAt
		if diff := cmp.Diff(recA, recB); diff != "" {
			t.Fatalf("records differ beyond timestamp (-first +second):\n%s", diff)
		}
	})

	t.Run("transform reshapes before persistence", func(t *testing.T) {
		users := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id": 1, "name": "Leanne", "address": {"city": "Gwenborough"}}]`))
		}))
		defer users.Close()

		sink := filepath.Join(t.TempDir(), "users.json")
		p := New(Options{Transform: SelectFields("id", "city=address.city")})

		rec, err := p.Run(ctx, Request{Locator: users.URL}, nil, sink)
		require.NoError(t, err)

		projected, ok := rec.Payload.([]any)
		require.True(t, ok)
		require.Equal(t, map[string]any{
			"id":   float64(1),
			"city": "Gwenborough",
		}, projected[0])

		persisted := readRecord(t, sink)
		if diff := cmp.Diff(rec.Payload, persisted.Payload); diff != "" {
			t.Fatalf("persisted payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("transform failure writes nothing", func(t *testing.T) {
		sink := filepath.Join(t.TempDir(), "record.json")
		p := New(Options{Transform: SelectFields("nonexistent")})

		_, err := p.Run(ctx, Request{Locator: server.URL}, rules, sink)
		require.Error(t, err)
		require.Equal(t, StageTransform, StageOf(err))
		require.Equal(t, KindTransformFailure, KindOf(err))
		require.NoFileExists(t, sink)
	})
}
