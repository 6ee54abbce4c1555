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
	"time"

	"pensio/platform/shared/types"
)

// Mutation definition names accepted by the dispatcher.
const (
	MutationCreateDossier       = "create_dossier"
	MutationAddPolicy           = "add_policy"
	MutationApplyIndexation     = "apply_indexation"
	MutationCalculateRetirement = "calculate_retirement_benefit"
)

// handlerContext carries the evaluator's clock and collaborators into a
// handler invocation.
type handlerContext struct {
	ctx   context.Context
	now   func() time.Time
	rates AccrualRateProvider
}

// mutationHandler evaluates one mutation against the situation. A handler
// either applies its whole change or returns a CRITICAL message without
// touching state; partial mutations do not exist.
type mutationHandler func(hc handlerContext, mut types.Mutation, sit *Situation) []types.CalculationMessage

// mutationHandlers maps mutation_definition_name to its handler. Dispatch is
// a plain map lookup; unknown names surface as UNKNOWN_MUTATION in the
// evaluation loop.
var mutationHandlers = map[string]mutationHandler{
	MutationCreateDossier:       handleCreateDossier,
	MutationAddPolicy:           handleAddPolicy,
	MutationApplyIndexation:     handleApplyIndexation,
	MutationCalculateRetirement: handleCalculateRetirementBenefit,
}

// todayUTC truncates the clock to a calendar date in UTC, comparable with
// dates parsed from mutation properties.
func todayUTC(now func() time.Time) time.Time {
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
