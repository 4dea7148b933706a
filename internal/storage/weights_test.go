package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestHTTPWeightsSource_RetryLogic(t *testing.T) {
	tests := []struct {
		name           string
		responses      []int // Status codes to return in sequence
		expectRequests int
		expectError    bool
		errorContains  string
	}{
		{
			name:           "Success on first attempt",
			responses:      []int{200},
			expectRequests: 1,
			expectError:    false,
		},
		{
			name:           "Success on second attempt after 5xx",
			responses:      []int{500, 200},
			expectRequests: 2,
			expectError:    false,
		},
		{
			name:           "4xx client error - no retry",
			responses:      []int{404},
			expectRequests: 1,
			expectError:    true,
			errorContains:  "client error: status code 404",
		},
		{
			name:           "All 5xx errors - retry all attempts",
			responses:      []int{500, 502, 503},
			expectRequests: 3,
			expectError:    true,
			errorContains:  "server error: status code 503",
		},
		{
			name:           "4xx after 5xx - stop on first 4xx",
			responses:      []int{500, 403},
			expectRequests: 2,
			expectError:    true,
			errorContains:  "client error: status code 403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&requests, 1)
				idx := int(n) - 1
				if idx >= len(tt.responses) {
					idx = len(tt.responses) - 1
				}
				code := tt.responses[idx]
				w.WriteHeader(code)
				if code == 200 {
					fmt.Fprint(w, "weights-bytes")
				}
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "model.pb")
			err := NewHTTPWeightsSource().Fetch(context.Background(), server.URL+"/model.pb", dest)

			if got := int(atomic.LoadInt32(&requests)); got != tt.expectRequests {
				t.Errorf("Expected %d requests, got %d", tt.expectRequests, got)
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing %q, got %v", tt.errorContains, err)
				}
				if _, statErr := os.Stat(dest); statErr == nil {
					t.Error("Partial file left behind on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			data, readErr := os.ReadFile(dest)
			if readErr != nil {
				t.Fatalf("Failed to read downloaded file: %v", readErr)
			}
			if string(data) != "weights-bytes" {
				t.Errorf("Unexpected file content: %q", data)
			}
		})
	}
}

func TestEnsureLocal_DownloadsOnceThenCaches(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, "cached-weights")
	}))
	defer server.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	source := NewHTTPWeightsSource()
	srcURL := server.URL + "/frozen_inference_graph.pb"

	first, err := EnsureLocal(context.Background(), source, srcURL, cacheDir)
	if err != nil {
		t.Fatalf("First EnsureLocal failed: %v", err)
	}
	if filepath.Base(first) != "frozen_inference_graph.pb" {
		t.Errorf("Unexpected cache filename: %s", first)
	}

	second, err := EnsureLocal(context.Background(), source, srcURL, cacheDir)
	if err != nil {
		t.Fatalf("Second EnsureLocal failed: %v", err)
	}
	if second != first {
		t.Errorf("Cache returned different paths: %s vs %s", first, second)
	}

	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("Expected exactly 1 download, got %d", got)
	}
}

func TestEnsureLocal_RejectsURLWithoutFilename(t *testing.T) {
	_, err := EnsureLocal(context.Background(), NewHTTPWeightsSource(), "https://example.com/", t.TempDir())
	if err == nil {
		t.Fatal("Expected error for URL without filename")
	}
}

func TestSplitBlobPath(t *testing.T) {
	tests := []struct {
		path        string
		container   string
		blob        string
		expectError bool
	}{
		{"/models/frcnn.onnx", "models", "frcnn.onnx", false},
		{"/models/nested/frcnn.onnx", "models", "nested/frcnn.onnx", false},
		{"/models", "", "", true},
		{"/models/", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		container, blob, err := splitBlobPath(tt.path)
		if tt.expectError {
			if err == nil {
				t.Errorf("path %q: expected error", tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("path %q: unexpected error %v", tt.path, err)
			continue
		}
		if container != tt.container || blob != tt.blob {
			t.Errorf("path %q: got (%q, %q), want (%q, %q)", tt.path, container, blob, tt.container, tt.blob)
		}
	}
}
