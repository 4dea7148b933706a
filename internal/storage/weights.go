// Package storage acquires model weight files. Weights are fetched once at
// startup and cached on disk, mirroring the download-and-cache behavior of
// the pretrained-model hubs the weights come from.
package storage

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

	"github.com/sirupsen/logrus"

	"go-object-recognizer/internal/logger"
)

// WeightsSource downloads a single weights artifact to a local file.
type WeightsSource interface {
	Fetch(ctx context.Context, srcURL string, dest string) error
}

// HTTPWeightsSource implements WeightsSource over plain HTTP(S).
type HTTPWeightsSource struct {
	client *http.Client
}

// NewHTTPWeightsSource creates an HTTP weights source with a transport tuned
// for large one-shot downloads.
func NewHTTPWeightsSource() *HTTPWeightsSource {
	transport := &http.Transport{
		MaxIdleConns:          2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPWeightsSource{
		client: &http.Client{
			Transport: transport,
			// No overall client timeout: weight files are large and the
			// download is bounded by the caller's context instead.
		},
	}
}

// Fetch downloads srcURL into dest. Transient failures (transport errors and
// 5xx responses) are retried up to 3 attempts; 4xx responses are not.
func (s *HTTPWeightsSource) Fetch(ctx context.Context, srcURL string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", "go-object-recognizer/1.0")

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			logger.WithFields(logrus.Fields{
				"url":     srcURL,
				"attempt": attempt + 1,
			}).Warn("Retrying weights download")
		}

		resp, err = s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			break
		}

		resp.Body.Close()
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("client error: status code %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
		resp = nil
	}

	if resp == nil {
		return fmt.Errorf("download failed after 3 attempts: %w", lastErr)
	}
	defer resp.Body.Close()

	return writeAtomic(dest, resp.Body)
}

// EnsureLocal returns a local path for the artifact at srcURL, downloading it
// into cacheDir on first use. Cache hits are keyed by the URL's base filename.
func EnsureLocal(ctx context.Context, source WeightsSource, srcURL string, cacheDir string) (string, error) {
	parsed, err := url.Parse(srcURL)
	if err != nil {
		return "", fmt.Errorf("invalid weights URL: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("weights URL %q has no usable filename", srcURL)
	}

	dest := filepath.Join(cacheDir, name)
	if _, err := os.Stat(dest); err == nil {
		logger.WithField("path", dest).Debug("Weights cache hit")
		return dest, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"url":  srcURL,
		"dest": dest,
	}).Info("Downloading model weights")

	if err := source.Fetch(ctx, srcURL, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// writeAtomic streams r into dest through a temp file so a failed download
// never leaves a partial artifact behind.
func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".weights-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("download interrupted: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to place weights file: %w", err)
	}
	return nil
}
