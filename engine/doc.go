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

/*
Package engine implements the Pensio mutation evaluation engine.

A calculation request carries a tenant identifier and a strictly ordered
list of mutations. The engine evaluates the mutations against an initially
empty pension situation: each mutation is dispatched to a handler that
validates its preconditions, emits calculation messages, and mutates the
situation in place. A CRITICAL message halts evaluation and marks the
calculation FAILURE; WARNING messages are recorded and evaluation continues.

The package also owns the HTTP surface of the service (Run wires the
gorilla/mux router), the response assembly, prometheus metrics, and the
scheme registry client used to resolve per-scheme accrual rates.

Supported mutations:
  - create_dossier
  - add_policy
  - apply_indexation
  - calculate_retirement_benefit

All monetary arithmetic is performed in fixed-point decimals
(github.com/shopspring/decimal); binary floating point never enters the
benefit computation.
*/
package engine
