package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Downloader fetches remote archives for analysis. It makes a single
// attempt per URL.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
}

// NewDownloader creates a new downloader
func NewDownloader(userAgent string) *Downloader {
	if userAgent == "" {
		userAgent = "wheelsize/dev"
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // Long timeout for multi-gigabyte wheels
		},
		userAgent: userAgent,
	}
}

// IsRemote reports whether source should be downloaded rather than opened
func (d *Downloader) IsRemote(source string) bool {
	return isRemote(source)
}

// Fetch downloads rawURL into destDir and returns the local path
func (d *Downloader) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" {
		filename = "download.whl"
	}

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	dest := filepath.Join(destDir, filename)

	if err := d.downloadFile(ctx, rawURL, dest); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("download failed: %w", err)
	}
	return dest, nil
}

// downloadFile downloads a file from URL to destination
func (d *Downloader) downloadFile(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: dest is inside the download directory
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}
