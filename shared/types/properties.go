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

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MutationProperties is the free-form property bag of a mutation.
//
// Accessors never fail: absence and malformed values are signalled through
// sentinel results (empty string, zero time, decimal zero, nil) which the
// mutation handlers interpret during validation.
type MutationProperties map[string]interface{}

// String returns the value under key coerced to a string, or "" when absent.
func (p MutationProperties) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NullableString returns nil when the key is absent or the coerced value is
// empty, otherwise a pointer to the string.
func (p MutationProperties) NullableString(key string) *string {
	s := p.String(key)
	if s == "" {
		return nil
	}
	return &s
}

// Date parses an ISO calendar date under key. Absent or unparseable values
// yield the zero time (0001-01-01), the sentinel for an invalid date.
func (p MutationProperties) Date(key string) time.Time {
	s := p.String(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NullableDate returns nil when the key is absent or the value does not
// parse as an ISO calendar date.
func (p MutationProperties) NullableDate(key string) *time.Time {
	t := p.Date(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Decimal returns the value under key as a decimal. It accepts JSON numbers,
// Go integers and floats, and numeric strings; anything else yields zero.
func (p MutationProperties) Decimal(key string) decimal.Decimal {
	v, ok := p[key]
	if !ok || v == nil {
		return decimal.Zero
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case decimal.Decimal:
		return n
	default:
		return decimal.Zero
	}
}
