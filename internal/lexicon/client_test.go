package lexicon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"mroparse/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetBundleWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.LexiconAPIToken = "test"
	cfg.LexiconAPIBaseURL = "https://example.test/api/v1"
	cfg.LexiconRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/lexicon/bundle" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test" {
				t.Fatalf("authorization header %q", got)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(strings.NewReader(`{"error":"unavailable"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{
				"success": true,
				"data": map[string]any{
					"generatedAt":   "2025-06-01T00:00:00Z",
					"manufacturers": []string{"HUBBELL", "AMUT"},
					"normalization": map[string]string{"PANDT": "PANDUIT"},
				},
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	bundle, err := client.GetBundle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(bundle.Manufacturers) != 2 || bundle.GeneratedAt != "2025-06-01T00:00:00Z" {
		t.Fatalf("bundle = %+v", bundle)
	}
	if attempt != 2 {
		t.Fatalf("attempts = %d", attempt)
	}
}

func TestGetBundleSincePassesWatermark(t *testing.T) {
	cfg, _ := config.Load()
	cfg.LexiconAPIToken = "test"
	cfg.LexiconAPIBaseURL = "https://example.test/api/v1"
	cfg.LexiconRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.URL.Query().Get("since"); got != "2025-05-01T00:00:00Z" {
				t.Fatalf("since param %q", got)
			}
			payload := map[string]any{"success": true, "data": map[string]any{"manufacturers": []string{}}}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if _, err := client.GetBundleSince(context.Background(), "2025-05-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
}

func TestMergeBundle(t *testing.T) {
	training := emptyTrainingData()
	training.KnownManufacturers = []string{"HUBBELL"}

	merged := mergeBundle(training, &RemoteBundle{
		Manufacturers: []string{"HUBBELL", "AMUT", ""},
		Normalization: map[string]string{"SEW EURODR": "SEW EURODRIVE"},
		Aliases:       map[string][]string{"pn_output": {"Mfr Catalog No"}},
		Distributors:  []string{"BORDER STATES"},
	})

	if merged != 4 {
		t.Fatalf("merged = %d", merged)
	}
	if len(training.KnownManufacturers) != 2 {
		t.Fatalf("known = %v", training.KnownManufacturers)
	}
	if training.MfgNormalization["SEW EURODR"] != "SEW EURODRIVE" {
		t.Fatalf("normalization = %v", training.MfgNormalization)
	}
	if len(training.ColumnAliases["pn_output"]) != 1 || len(training.Distributors) != 1 {
		t.Fatalf("aliases/distributors not merged: %+v", training)
	}
}
