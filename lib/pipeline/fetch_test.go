package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"opspulse/lib/testutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchHttp(t *testing.T) {
	_, cleanup := testutil.Setup(t, testutil.Params{Name: "lib/pipeline/fetch"})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	fetcher := NewFetcher()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"greeting": "hello", "count": 3}`))
		}))
		defer server.Close()

		payload, err := fetcher.Fetch(ctx, Request{Locator: server.URL})
		require.NoError(t, err)

		obj, ok := payload.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "hello", obj["greeting"])
		require.Equal(t, float64(3), obj["count"])
	})

	t.Run("http status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, Request{Locator: server.URL})
		require.Error(t, err)
		require.Equal(t, KindHttpStatus, KindOf(err))
		require.Equal(t, StageFetch, StageOf(err))

		var perr *Error
		require.ErrorAs(t, err, &perr)
		require.Equal(t, http.StatusNotFound, perr.Status)
	})

	t.Run("malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"truncated": `))
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, Request{Locator: server.URL})
		require.Error(t, err)
		require.Equal(t, KindMalformedResponse, KindOf(err))
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, Request{
			Locator: server.URL,
			Timeout: time.Millisecond * 50,
		})
		require.Error(t, err)
		require.Equal(t, KindTimeout, KindOf(err))
	})

	t.Run("connection failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := fetcher.Fetch(ctx, Request{Locator: url})
		require.Error(t, err)
		require.Equal(t, KindConnectionFailure, KindOf(err))
	})

	t.Run("credential as query param", func(t *testing.T) {
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("apikey")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, Request{
			Locator:         server.URL,
			Credential:      "secret",
			CredentialParam: "apikey",
		})
		require.NoError(t, err)
		require.Equal(t, "secret", gotKey)
	})
}

func TestFetchFile(t *testing.T) {
	_, cleanup := testutil.Setup(t, testutil.Params{Name: "lib/pipeline/fetch"})
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	fetcher := NewFetcher()
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		path := filepath.Join(dir, "data.json")
		err := os.WriteFile(path, []byte(`[1, 2, 3]`), 0644)
		require.NoError(t, err)

		payload, err := fetcher.Fetch(ctx, Request{Locator: path})
		require.NoError(t, err)
		require.Equal(t, []any{float64(1), float64(2), float64(3)}, payload)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, Request{Locator: filepath.Join(dir, "missing.json")})
		require.Error(t, err)
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("permission denied", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("file permissions are not enforced for root")
		}
		path := filepath.Join(dir, "private.json")
		err := os.WriteFile(path, []byte(`{}`), 0000)
		require.NoError(t, err)

		_, err = fetcher.Fetch(ctx, Request{Locator: path})
		require.Error(t, err)
		require.Equal(t, KindPermissionDenied, KindOf(err))
	})

	t.Run("malformed contents", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		err := os.WriteFile(path, []byte(`{"a": `), 0644)
		require.NoError(t, err)

		_, err = fetcher.Fetch(ctx, Request{Locator: path})
		require.Error(t, err)
		require.Equal(t, KindMalformedResponse, KindOf(err))
	})
}
