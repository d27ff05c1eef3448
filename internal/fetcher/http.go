package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
	"go.trai.ch/zerr"

	"github.com/ralt/repodiff/internal/dump"
)

// DefaultAPIURL is the base URL of the ALT Linux repository database API
const DefaultAPIURL = "https://rdb.altlinux.org/api"

// exportPath is appended to the base URL, followed by the branch name
const exportPath = "/export/branch_binary_packages/"

// HTTPFetcher fetches export documents from the repository database API.
// Failures are returned as-is; there is no retry.
type HTTPFetcher struct {
	baseURL       string
	client        *http.Client
	timeout       time.Duration
	dumpDir       string
	compressDumps bool
}

// HTTPOption customizes an HTTPFetcher
type HTTPOption func(*HTTPFetcher)

// WithClient replaces the default pooled HTTP client
func WithClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = client }
}

// WithTimeout bounds each request, including reading the body. The client
// passed to WithClient is not modified.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPFetcher) { f.timeout = timeout }
}

// WithDumpDir saves every fetched document into dir, gzip-compressed when
// compress is set.
func WithDumpDir(dir string, compress bool) HTTPOption {
	return func(f *HTTPFetcher) {
		f.dumpDir = dir
		f.compressDumps = compress
	}
}

// NewHTTPFetcher creates a fetcher for the API rooted at baseURL
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout > 0 {
		client := *f.client
		client.Timeout = f.timeout
		f.client = &client
	}
	return f
}

// URL returns the export endpoint of a repository
func (f *HTTPFetcher) URL(repositoryID string) string {
	return f.baseURL + exportPath + url.PathEscape(repositoryID)
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, repositoryID string) ([]byte, error) {
	endpoint := f.URL(repositoryID)
	logrus.Infof("Fetching packages from %s", repositoryID)
	logrus.Debugf("GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build request"), "url", endpoint)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "request failed"), "url", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := zerr.Wrap(ErrUnexpectedStatus, fmt.Sprintf("failed to fetch packages from %s branch (%s)", repositoryID, resp.Status))
		err = zerr.With(err, "url", endpoint)
		return nil, zerr.With(err, "status", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read response body"), "url", endpoint)
	}
	logrus.Debugf("Received %s for %s", humanize.Bytes(uint64(len(data))), repositoryID)

	if f.dumpDir != "" {
		if _, err := dump.Write(f.dumpDir, repositoryID, data, f.compressDumps); err != nil {
			return nil, zerr.With(err, "dump_dir", f.dumpDir)
		}
	}

	return data, nil
}
