package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"github.com/ralt/repodiff/internal/dump"
)

const document = `{"packages": [{"name": "bash", "version": "5.2", "arch": "x86_64"}]}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcherFetch(t *testing.T) {
	var gotPath string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(document))
	})

	f := NewHTTPFetcher(srv.URL + "/api/")
	data, err := f.Fetch(context.Background(), "p10")
	require.NoError(t, err)

	assert.Equal(t, document, string(data))
	assert.Equal(t, "/api/export/branch_binary_packages/p10", gotPath)
}

func TestHTTPFetcherNonOKStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "branch not found", http.StatusNotFound)
	})

	f := NewHTTPFetcher(srv.URL)
	_, err := f.Fetch(context.Background(), "p9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, http.StatusNotFound, zErr.Metadata()["status"])
}

func TestHTTPFetcherDoesNotRetry(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewHTTPFetcher(srv.URL).Fetch(context.Background(), "sisyphus")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	f := NewHTTPFetcher(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := f.Fetch(context.Background(), "p10")
	require.Error(t, err)
}

func TestHTTPFetcherTimeoutLeavesClientUntouched(t *testing.T) {
	shared := &http.Client{}

	f := NewHTTPFetcher("http://localhost", WithClient(shared), WithTimeout(time.Second))
	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, f.client)
	assert.Equal(t, time.Second, f.client.Timeout)

	g := NewHTTPFetcher("http://localhost", WithTimeout(time.Second), WithClient(shared))
	assert.Zero(t, shared.Timeout, "option order must not matter")
	assert.Equal(t, time.Second, g.client.Timeout)
}

func TestOfflineReadsLatestDump(t *testing.T) {
	var mu sync.Mutex
	body := `{"packages":[{"name":"old","version":"1","arch":"x86_64"}]}`
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = w.Write([]byte(body))
	})
	dir := t.TempDir()

	_, err := NewHTTPFetcher(srv.URL, WithDumpDir(dir, false)).Fetch(context.Background(), "p10")
	require.NoError(t, err)

	mu.Lock()
	body = `{"packages":[{"name":"new","version":"2","arch":"x86_64"}]}`
	mu.Unlock()
	_, err = NewHTTPFetcher(srv.URL, WithDumpDir(dir, true)).Fetch(context.Background(), "p10")
	require.NoError(t, err)

	data, err := NewDumpFetcher(dir).Fetch(context.Background(), "p10")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"new"`)
}

func TestHTTPFetcherSavesDump(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(document))
	})
	dir := t.TempDir()

	f := NewHTTPFetcher(srv.URL, WithDumpDir(dir, true))
	_, err := f.Fetch(context.Background(), "p10")
	require.NoError(t, err)

	path := filepath.Join(dir, "p10_packages.json.gz")
	_, err = os.Stat(path)
	require.NoError(t, err)

	saved, err := dump.Read(path)
	require.NoError(t, err)
	assert.Equal(t, document, string(saved))
}

func TestDumpFetcher(t *testing.T) {
	dir := t.TempDir()
	_, err := dump.Write(dir, "p9", []byte(document), false)
	require.NoError(t, err)

	f := NewDumpFetcher(dir)
	data, err := f.Fetch(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, document, string(data))

	_, err = f.Fetch(context.Background(), "sisyphus")
	assert.True(t, errors.Is(err, dump.ErrNotFound))
}

func TestDumpFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDumpFetcher(t.TempDir()).Fetch(ctx, "p9")
	assert.ErrorIs(t, err, context.Canceled)
}
