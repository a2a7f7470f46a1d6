package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	applog "lanecal/internal/log"
)

// FetchResult is the outcome of fetching one feed.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

type fetchMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fetcher downloads ICS feeds with conditional requests (ETag /
// Last-Modified) backed by a flat on-disk cache, falling back to the
// cached body when the network is unavailable.
type Fetcher struct {
	client *http.Client
	dir    string
}

// NewFetcher returns a Fetcher caching under dir.
func NewFetcher(dir string) *Fetcher {
	if dir == "" {
		dir = "./cache/feeds"
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		dir:    dir,
	}
}

// FetchAll fetches every source. Sources that fail without a cached
// fallback are reported in errs and omitted from the results.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) (results []FetchResult, errs []error) {
	for _, src := range sources {
		res, err := f.Fetch(ctx, src)
		if err != nil {
			applog.Error("source: fetch failed", err, "id", src.ID, "host", hostOf(src.URL))
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// Fetch fetches one source, honoring cache validators.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return FetchResult{}, err
	}

	key := cacheKey(src.URL)
	meta, _ := f.readMeta(key)
	cached, _ := os.ReadFile(f.bodyPath(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			applog.Warn("source: network error, serving cached body", "id", src.ID, "host", hostOf(src.URL))
			return FetchResult{Source: src, Body: cached, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return FetchResult{}, rerr
		}
		if err := f.writeCache(key, fetchMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    time.Now().UTC(),
		}, body); err != nil {
			applog.Warn("source: cache write failed", "id", src.ID, "err", err)
		}
		applog.Debug("source: fetched", "id", src.ID, "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("304 Not Modified with no cached body")
		}
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil

	default:
		if len(cached) > 0 {
			applog.Warn("source: non-OK status, serving cached body",
				"id", src.ID, "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cached, FromCache: true}, nil
		}
		return FetchResult{}, errors.New(resp.Status)
	}
}

func cacheKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return hex.EncodeToString(sum[:6])
}

func (f *Fetcher) bodyPath(key string) string {
	return filepath.Join(f.dir, key+".ics")
}

func (f *Fetcher) metaPath(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *Fetcher) readMeta(key string) (fetchMeta, error) {
	var meta fetchMeta
	data, err := os.ReadFile(f.metaPath(key))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fetchMeta{}, err
	}
	return meta, nil
}

func (f *Fetcher) writeCache(key string, meta fetchMeta, body []byte) error {
	// Body first so the meta never points at a missing body.
	if err := os.WriteFile(f.bodyPath(key), body, 0o600); err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(f.metaPath(key), data, 0o600)
}

// hostOf reduces a feed URL to its host for logging; private feed URLs
// often embed tokens in the path or query.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(unparsable)"
	}
	return u.Host
}
