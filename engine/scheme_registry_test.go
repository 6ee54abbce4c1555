// Copyright 2026 Pensio
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultAccrualRate(t *testing.T) {
	if got := DefaultAccrualRate(); !got.Equal(mustDecimal("0.02")) {
		t.Errorf("DefaultAccrualRate() = %s, want 0.02", got)
	}
}

func TestSchemeRegistryClientGetAccrualRate(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if r.URL.Path != "/schemes/S1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"scheme_id": "S1", "accrual_rate": 0.0185}`))
	}))
	defer srv.Close()

	client := NewSchemeRegistryClient(srv.URL, time.Second, nil)
	ctx := context.Background()

	if got := client.GetAccrualRate(ctx, "S1"); !got.Equal(mustDecimal("0.0185")) {
		t.Errorf("rate = %s, want 0.0185", got)
	}

	// Second lookup is served from the cache
	client.GetAccrualRate(ctx, "S1")
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("registry called %d times, want 1", got)
	}

	// Unknown scheme falls back to the default
	if got := client.GetAccrualRate(ctx, "S9"); !got.Equal(DefaultAccrualRate()) {
		t.Errorf("unknown scheme rate = %s, want default", got)
	}
}

func TestSchemeRegistryClientFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"invalid body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"non-positive rate", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"scheme_id": "S1", "accrual_rate": 0}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewSchemeRegistryClient(srv.URL, time.Second, nil)
			if got := client.GetAccrualRate(context.Background(), "S1"); !got.Equal(DefaultAccrualRate()) {
				t.Errorf("rate = %s, want default 0.02", got)
			}
		})
	}

	t.Run("unreachable registry", func(t *testing.T) {
		client := NewSchemeRegistryClient("http://127.0.0.1:1", 100*time.Millisecond, nil)
		if got := client.GetAccrualRate(context.Background(), "S1"); !got.Equal(DefaultAccrualRate()) {
			t.Errorf("rate = %s, want default 0.02", got)
		}
	})
}

func writeRateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rate file: %v", err)
	}
	return path
}

func TestLoadStaticRateTable(t *testing.T) {
	path := writeRateFile(t, `
schemes:
  - scheme_id: S1
    accrual_rate: 0.0185
  - scheme_id: S2
    accrual_rate: 0.0225
`)

	table, err := LoadStaticRateTable(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	ctx := context.Background()
	if got := table.GetAccrualRate(ctx, "S1"); !got.Equal(mustDecimal("0.0185")) {
		t.Errorf("S1 rate = %s, want 0.0185", got)
	}
	if got := table.GetAccrualRate(ctx, "S9"); !got.Equal(DefaultAccrualRate()) {
		t.Errorf("unknown scheme rate = %s, want default", got)
	}
}

func TestLoadStaticRateTableRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing scheme id", "schemes:\n  - accrual_rate: 0.02\n"},
		{"zero rate", "schemes:\n  - scheme_id: S1\n    accrual_rate: 0\n"},
		{"negative rate", "schemes:\n  - scheme_id: S1\n    accrual_rate: -0.01\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadStaticRateTable(writeRateFile(t, tt.content), nil); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := LoadStaticRateTable(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestStaticRateTableDelegatesToNext(t *testing.T) {
	path := writeRateFile(t, "schemes:\n  - scheme_id: S1\n    accrual_rate: 0.0185\n")
	table, err := LoadStaticRateTable(path, stubRates{"S2": mustDecimal("0.03")})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	ctx := context.Background()
	if got := table.GetAccrualRate(ctx, "S1"); !got.Equal(mustDecimal("0.0185")) {
		t.Errorf("table rate = %s, want 0.0185", got)
	}
	if got := table.GetAccrualRate(ctx, "S2"); !got.Equal(mustDecimal("0.03")) {
		t.Errorf("delegated rate = %s, want 0.03", got)
	}
}
