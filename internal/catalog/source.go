package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #region source
// Source produces fresh catalog snapshots.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Snapshot, error)
}

// #endregion source

// #region file-source
// FileSource reloads a YAML catalog from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadYAML(f.Path)
}

// #endregion file-source

// #region http-source
// HTTPSource downloads the upstream JSON export.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns a source using a client with the given timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (h *HTTPSource) Name() string { return h.URL }

func (h *HTTPSource) Fetch(ctx context.Context) (*Snapshot, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d, response %.200s", resp.StatusCode, string(body))
	}

	return ParseExport(body, time.Now())
}

// #endregion http-source
