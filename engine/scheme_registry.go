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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"pensio/platform/shared/logger"
)

// DefaultSchemeRegistryTimeout bounds a single registry lookup. Lookups that
// exceed it fall back to the default accrual rate.
const DefaultSchemeRegistryTimeout = 2 * time.Second

// DefaultAccrualRate is the accrual rate used when no provider is configured
// or a lookup fails.
func DefaultAccrualRate() decimal.Decimal {
	return decimal.New(2, -2) // 0.02
}

// AccrualRateProvider resolves the accrual rate of a pension scheme.
// Implementations never fail: lookup problems resolve to the default rate.
type AccrualRateProvider interface {
	GetAccrualRate(ctx context.Context, schemeID string) decimal.Decimal
}

// SchemeRegistryClient fetches accrual rates from an external scheme
// registry over HTTP. Rates are cached per scheme for the process lifetime.
type SchemeRegistryClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	mu         sync.RWMutex
	cache      map[string]decimal.Decimal
}

// schemeResponse is the registry's GET /schemes/{scheme_id} body.
type schemeResponse struct {
	SchemeID    string          `json:"scheme_id"`
	AccrualRate decimal.Decimal `json:"accrual_rate"`
}

// NewSchemeRegistryClient creates a registry client for the given base URL.
func NewSchemeRegistryClient(baseURL string, timeout time.Duration, log *logger.Logger) *SchemeRegistryClient {
	if timeout <= 0 {
		timeout = DefaultSchemeRegistryTimeout
	}
	return &SchemeRegistryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		cache:      make(map[string]decimal.Decimal),
	}
}

// IsConfigured checks if a registry base URL is available
func (c *SchemeRegistryClient) IsConfigured() bool {
	return c.baseURL != ""
}

// IsHealthy reports whether the client is usable
func (c *SchemeRegistryClient) IsHealthy() bool {
	return c.httpClient != nil
}

// GetAccrualRate resolves the accrual rate for a scheme. Any transport,
// status or decoding failure falls back to the default rate of 0.02.
func (c *SchemeRegistryClient) GetAccrualRate(ctx context.Context, schemeID string) decimal.Decimal {
	c.mu.RLock()
	if rate, ok := c.cache[schemeID]; ok {
		c.mu.RUnlock()
		return rate
	}
	c.mu.RUnlock()

	rate, err := c.fetchAccrualRate(ctx, schemeID)
	if err != nil {
		if c.log != nil {
			c.log.Warn("", "", "Scheme registry lookup failed, using default accrual rate", map[string]interface{}{
				"scheme_id": schemeID,
				"error":     err.Error(),
			})
		}
		return DefaultAccrualRate()
	}

	c.mu.Lock()
	c.cache[schemeID] = rate
	c.mu.Unlock()
	return rate
}

func (c *SchemeRegistryClient) fetchAccrualRate(ctx context.Context, schemeID string) (decimal.Decimal, error) {
	reqURL := c.baseURL + "/schemes/" + url.PathEscape(schemeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("building registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("calling scheme registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("scheme registry returned status %d", resp.StatusCode)
	}

	var scheme schemeResponse
	if err := json.NewDecoder(resp.Body).Decode(&scheme); err != nil {
		return decimal.Zero, fmt.Errorf("decoding registry response: %w", err)
	}
	if !scheme.AccrualRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("scheme registry returned non-positive accrual rate %s", scheme.AccrualRate)
	}
	return scheme.AccrualRate, nil
}

// StaticRateTable serves accrual rates from a YAML file loaded at startup,
// delegating unknown schemes to an optional next provider.
type StaticRateTable struct {
	rates map[string]decimal.Decimal
	next  AccrualRateProvider
}

// rateFile is the on-disk YAML shape:
//
//	schemes:
//	  - scheme_id: S1
//	    accrual_rate: 0.0185
type rateFile struct {
	Schemes []struct {
		SchemeID    string  `yaml:"scheme_id"`
		AccrualRate float64 `yaml:"accrual_rate"`
	} `yaml:"schemes"`
}

// LoadStaticRateTable reads a YAML accrual rate table from path. Entries
// with a non-positive rate are rejected.
func LoadStaticRateTable(path string, next AccrualRateProvider) (*StaticRateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading accrual rate table: %w", err)
	}

	var file rateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing accrual rate table: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(file.Schemes))
	for _, s := range file.Schemes {
		if s.SchemeID == "" {
			return nil, fmt.Errorf("accrual rate table entry without scheme_id")
		}
		if s.AccrualRate <= 0 {
			return nil, fmt.Errorf("non-positive accrual rate for scheme %q", s.SchemeID)
		}
		rates[s.SchemeID] = decimal.NewFromFloat(s.AccrualRate)
	}

	return &StaticRateTable{rates: rates, next: next}, nil
}

// GetAccrualRate returns the table rate for the scheme, consults the next
// provider for unknown schemes, and falls back to the default rate.
func (t *StaticRateTable) GetAccrualRate(ctx context.Context, schemeID string) decimal.Decimal {
	if rate, ok := t.rates[schemeID]; ok {
		return rate
	}
	if t.next != nil {
		return t.next.GetAccrualRate(ctx, schemeID)
	}
	return DefaultAccrualRate()
}
