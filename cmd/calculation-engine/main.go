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

// Package main is the entry point for the Pensio Calculation Engine service.
//
// The Calculation Engine is a stateless pension evaluation service that:
// - Evaluates ordered mutation lists against an empty pension situation
// - Applies dossier, policy, indexation and retirement mutations in order
// - Emits stable-coded calculation messages (CRITICAL halts, WARNING continues)
// - Returns begin and end situation snapshots with per-mutation message indexes
//
// Usage:
//
//	./calculation-engine
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	SCHEME_REGISTRY_URL - scheme registry base URL (optional)
//	SCHEME_REGISTRY_TIMEOUT - scheme registry request timeout (optional)
//	ACCRUAL_RATES_FILE - YAML accrual rate table path (optional)
//	CORS_ALLOWED_ORIGINS - comma-separated CORS origins (default: *)
package main

import (
	"pensio/platform/engine"
)

func main() {
	engine.Run()
}
