// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches PDF artifacts over HTTP with retry,
// validation, and bounded-concurrency batch support.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litscout/pkg/types"
)

const (
	// copyChunkSize is the streaming buffer size for writing downloads.
	copyChunkSize = 8 * 1024

	pdfMagic = "%PDF"
)

// retryBaseDelay is the unit for exponential backoff between download
// attempts. Overridable in tests.
var retryBaseDelay = time.Second

// Fetcher downloads PDF artifacts. The limiter, when set, paces request
// starts across all goroutines sharing the Fetcher.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	MaxWorkers int
	Limiter    *rate.Limiter
}

// NewFetcher builds a Fetcher from config. A non-positive
// RequestsPerSecond disables pacing.
func NewFetcher(client *http.Client, cfg types.DownloadConfig, userAgent string) *Fetcher {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		Client:     client,
		UserAgent:  userAgent,
		MaxRetries: cfg.MaxRetries,
		MaxWorkers: workers,
		Limiter:    limiter,
	}
}

// Result describes one completed or failed download.
type Result struct {
	URL       string
	DestPath  string
	SizeBytes int64
	Skipped   bool
	Err       error
}

// Fetch downloads url to destPath. If destPath already exists the
// download is skipped and reported as success with no network traffic.
// The response must look like a PDF: either a pdf content type or a
// %PDF leading byte sequence. Failed attempts are retried up to
// MaxRetries times with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) (Result, error) {
	res := Result{URL: url, DestPath: destPath}

	if info, err := os.Stat(destPath); err == nil {
		res.Skipped = true
		res.SizeBytes = info.Size()
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		res.Err = fmt.Errorf("creating directory: %w", err)
		return res, res.Err
	}

	var lastErr error
	for attempt := 0; attempt <= f.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				res.Err = ctx.Err()
				return res, res.Err
			}
		}

		size, err := f.fetchOnce(ctx, url, destPath)
		if err == nil {
			res.SizeBytes = size
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	res.Err = fmt.Errorf("downloading %s: %w", url, lastErr)
	return res, res.Err
}

// fetchOnce performs a single download attempt, writing to a temp file
// and renaming on success.
func (f *Fetcher) fetchOnce(ctx context.Context, url, destPath string) (int64, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, isPDF, err := sniffPDF(resp)
	if err != nil {
		return 0, err
	}
	if !isPDF {
		return 0, fmt.Errorf("response from %s is not a PDF (content type %q)", url, resp.Header.Get("Content-Type"))
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	buf := make([]byte, copyChunkSize)
	written, copyErr := io.CopyBuffer(tmpFile, body, buf)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return written, nil
}

// sniffPDF decides whether the response carries a PDF, first by content
// type, then by leading magic bytes. The returned reader replays any
// bytes consumed while sniffing.
func sniffPDF(resp *http.Response) (io.Reader, bool, error) {
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(ct, "pdf") {
		return resp.Body, true, nil
	}

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, false, fmt.Errorf("reading response: %w", err)
	}
	head = head[:n]
	body := io.MultiReader(strings.NewReader(string(head)), resp.Body)
	return body, string(head) == pdfMagic, nil
}

// FetchBatch downloads all URLs concurrently through a bounded worker
// pool, pacing request starts with the shared limiter. Results come
// back in input order; per-item failures are recorded, not fatal.
func (f *Fetcher) FetchBatch(ctx context.Context, urls, destPaths []string) ([]Result, error) {
	if len(urls) != len(destPaths) {
		return nil, fmt.Errorf("got %d urls but %d destination paths", len(urls), len(destPaths))
	}

	results := make([]Result, len(urls))
	sem := make(chan struct{}, f.MaxWorkers)
	var wg sync.WaitGroup

	for i := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], _ = f.Fetch(ctx, urls[i], destPaths[i])
		}(i)
	}
	wg.Wait()

	return results, nil
}
