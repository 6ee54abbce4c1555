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
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"pensio/platform/shared/logger"
	"pensio/platform/shared/types"
)

// Tenant identifiers are lowercase snake_case, at most 25 characters.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:_[a-z0-9]+)*$`)

const maxTenantIDLength = 25

// CalculationAPIHandler is the HTTP boundary of the evaluation engine. It
// owns exactly two failure modes: malformed input (400) and unexpected
// evaluation panics (500). Business validation surfaces inside the 200
// response as calculation_outcome FAILURE.
type CalculationAPIHandler struct {
	evaluator *Evaluator
	metrics   *MetricsCollector
	log       *logger.Logger
}

// NewCalculationAPIHandler creates the handler for POST /calculation-requests.
func NewCalculationAPIHandler(evaluator *Evaluator, metrics *MetricsCollector, log *logger.Logger) *CalculationAPIHandler {
	return &CalculationAPIHandler{
		evaluator: evaluator,
		metrics:   metrics,
		log:       log,
	}
}

// HandleCalculationRequest processes one calculation request end to end.
func (h *CalculationAPIHandler) HandleCalculationRequest(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req types.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeProblem(w, http.StatusBadRequest, "Invalid request body",
			"request body is not valid JSON", nil)
		return
	}

	if violations := validateCalculationRequest(&req); len(violations) > 0 {
		h.log.Warn(req.TenantID, "", "Rejected invalid calculation request", map[string]interface{}{
			"invalid_fields": len(violations),
		})
		h.writeProblem(w, http.StatusBadRequest, "Invalid request",
			"one or more request fields are invalid", violations)
		return
	}

	response, err := h.evaluate(r, &req, startedAt)
	if err != nil {
		h.log.ErrorWithCode(req.TenantID, "", "Calculation evaluation failed unexpectedly",
			http.StatusInternalServerError, err, nil)
		promCalculationsTotal.WithLabelValues("error").Inc()
		h.writeProblem(w, http.StatusInternalServerError, "Internal server error",
			"the calculation could not be completed", nil)
		return
	}

	outcome := response.CalculationMetadata.CalculationOutcome
	durationMS := response.CalculationMetadata.CalculationDurationMS
	promCalculationsTotal.WithLabelValues(string(outcome)).Inc()
	promCalculationDuration.Observe(float64(durationMS))
	if h.metrics != nil {
		h.metrics.RecordCalculation(outcome, time.Duration(durationMS)*time.Millisecond)
	}
	h.log.InfoWithDuration(req.TenantID, response.CalculationMetadata.CalculationID,
		"Calculation completed", float64(durationMS), map[string]interface{}{
			"outcome":   string(outcome),
			"mutations": len(response.CalculationResult.Mutations),
			"messages":  len(response.CalculationResult.Messages),
		})

	h.writeJSON(w, http.StatusOK, response)
}

// evaluate runs the engine behind a recover barrier so an internal invariant
// violation becomes a 500 instead of tearing down the connection.
func (h *CalculationAPIHandler) evaluate(r *http.Request, req *types.CalculationRequest, startedAt time.Time) (response *types.CalculationResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			response = nil
			err = fmt.Errorf("evaluation panic: %v", rec)
		}
	}()

	result := h.evaluator.Evaluate(r.Context(), req.TenantID, req.CalculationInstructions.Mutations)
	return BuildResponse(req.TenantID, startedAt, time.Now(), result), nil
}

// validateCalculationRequest performs schema-level validation and returns
// one violation per offending field.
func validateCalculationRequest(req *types.CalculationRequest) []types.FieldViolation {
	var violations []types.FieldViolation

	switch {
	case req.TenantID == "":
		violations = append(violations, types.FieldViolation{
			Field: "tenant_id", Reason: "is required",
		})
	case len(req.TenantID) > maxTenantIDLength:
		violations = append(violations, types.FieldViolation{
			Field: "tenant_id", Reason: fmt.Sprintf("must be at most %d characters", maxTenantIDLength),
		})
	case !tenantIDPattern.MatchString(req.TenantID):
		violations = append(violations, types.FieldViolation{
			Field: "tenant_id", Reason: "must match [a-z0-9]+(_[a-z0-9]+)*",
		})
	}

	mutations := req.CalculationInstructions.Mutations
	if len(mutations) == 0 {
		violations = append(violations, types.FieldViolation{
			Field: "calculation_instructions.mutations", Reason: "must contain at least one mutation",
		})
		return violations
	}

	for i, m := range mutations {
		prefix := fmt.Sprintf("calculation_instructions.mutations[%d]", i)
		if m.MutationID == "" {
			violations = append(violations, types.FieldViolation{
				Field: prefix + ".mutation_id", Reason: "is required",
			})
		}
		if m.MutationDefinitionName == "" {
			violations = append(violations, types.FieldViolation{
				Field: prefix + ".mutation_definition_name", Reason: "is required",
			})
		}
		if m.MutationType == "" {
			violations = append(violations, types.FieldViolation{
				Field: prefix + ".mutation_type", Reason: "is required",
			})
		}
		if m.ActualAt == "" {
			violations = append(violations, types.FieldViolation{
				Field: prefix + ".actual_at", Reason: "is required",
			})
		} else if _, err := time.Parse(types.DateFormat, m.ActualAt); err != nil {
			violations = append(violations, types.FieldViolation{
				Field: prefix + ".actual_at", Reason: "must be an ISO calendar date (YYYY-MM-DD)",
			})
		}
	}

	return violations
}

func (h *CalculationAPIHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("", "", "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *CalculationAPIHandler) writeProblem(w http.ResponseWriter, status int, title, detail string, fields []types.FieldViolation) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	doc := types.ProblemDocument{
		Type:          "about:blank",
		Title:         title,
		Status:        status,
		Detail:        detail,
		InvalidFields: fields,
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		h.log.Error("", "", "Failed to encode problem document", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
