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

	"pensio/platform/shared/logger"
	"pensio/platform/shared/types"
)

// Evaluator runs the mutation evaluation loop. It is stateless across
// requests; every Evaluate call owns a fresh situation, so concurrent
// invocation by the transport layer is safe.
type Evaluator struct {
	rates   AccrualRateProvider
	log     *logger.Logger
	metrics *MetricsCollector
	now     func() time.Time
}

// NewEvaluator creates an evaluator. rates and metrics may be nil; the
// retirement calculation then uses the default accrual rate and metric
// recording is skipped.
func NewEvaluator(rates AccrualRateProvider, log *logger.Logger, metrics *MetricsCollector) *Evaluator {
	return &Evaluator{
		rates:   rates,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// EvaluationResult is the engine-side outcome of one request, before
// response assembly.
type EvaluationResult struct {
	Outcome   types.CalculationOutcome
	Messages  []types.CalculationMessage
	Situation *Situation

	// Attempted holds every mutation the loop dispatched, including a
	// failing one. MessageIndexes is index-aligned with Attempted; a nil
	// entry means the mutation produced no messages.
	Attempted      []types.Mutation
	MessageIndexes [][]int

	// Pointers to the last mutation that completed without a CRITICAL
	// message. When no mutation succeeded they fall back to the first
	// attempted mutation with index 0.
	InitialActualAt     string
	LastOKMutationID    string
	LastOKMutationIndex int
	LastOKActualAt      string
}

// Evaluate applies the mutations in list order to an empty situation.
//
// Mutation i observes exactly the state produced by the mutations before it;
// evaluation stops at the first CRITICAL message. Cancellation is honored at
// mutation boundaries and yields outcome FAILURE with whatever was computed
// so far.
func (e *Evaluator) Evaluate(ctx context.Context, tenantID string, mutations []types.Mutation) *EvaluationResult {
	result := &EvaluationResult{
		Outcome:   types.OutcomeSuccess,
		Situation: NewSituation(),
	}
	if len(mutations) > 0 {
		result.InitialActualAt = mutations[0].ActualAt
		result.LastOKMutationID = mutations[0].MutationID
		result.LastOKMutationIndex = 0
		result.LastOKActualAt = mutations[0].ActualAt
	}

	hc := handlerContext{ctx: ctx, now: e.now, rates: e.rates}

	for i, mut := range mutations {
		if ctx.Err() != nil {
			result.Outcome = types.OutcomeFailure
			if e.log != nil {
				e.log.Warn(tenantID, mut.MutationID, "Evaluation cancelled", map[string]interface{}{
					"mutation_index": i,
					"reason":         ctx.Err().Error(),
				})
			}
			break
		}

		messageStart := len(result.Messages)
		mutationStart := e.now()

		handler, known := mutationHandlers[mut.MutationDefinitionName]
		var emitted []types.CalculationMessage
		if !known {
			emitted = []types.CalculationMessage{
				criticalMessage(CodeUnknownMutation,
					"unknown mutation definition %q", mut.MutationDefinitionName),
			}
		} else {
			emitted = handler(hc, mut, result.Situation)
		}

		result.Messages = append(result.Messages, emitted...)
		result.Attempted = append(result.Attempted, mut)

		var indexes []int
		for j := messageStart; j < len(result.Messages); j++ {
			indexes = append(indexes, j)
		}
		result.MessageIndexes = append(result.MessageIndexes, indexes)

		critical := hasCritical(emitted)
		e.recordMutation(mut.MutationDefinitionName, emitted, critical, e.now().Sub(mutationStart))
		if e.log != nil {
			e.log.Debug(tenantID, mut.MutationID, "Mutation evaluated", map[string]interface{}{
				"mutation_definition_name": mut.MutationDefinitionName,
				"mutation_index":           i,
				"messages":                 len(emitted),
				"critical":                 critical,
			})
		}

		if critical {
			result.Outcome = types.OutcomeFailure
			break
		}

		result.LastOKMutationID = mut.MutationID
		result.LastOKMutationIndex = i
		result.LastOKActualAt = mut.ActualAt
	}

	return result
}

func (e *Evaluator) recordMutation(definitionName string, emitted []types.CalculationMessage, critical bool, duration time.Duration) {
	outcome := "success"
	if critical {
		outcome = "critical"
	}
	promMutationsTotal.WithLabelValues(definitionName, outcome).Inc()
	for _, m := range emitted {
		promMessagesTotal.WithLabelValues(string(m.Severity)).Inc()
	}

	if e.metrics != nil {
		e.metrics.RecordMutation(definitionName, critical, duration)
		for _, m := range emitted {
			e.metrics.RecordMessage(m.Code, m.Severity)
		}
	}
}
