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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pensio/platform/shared/logger"
	"pensio/platform/shared/types"
)

func testAPIHandler() *CalculationAPIHandler {
	return NewCalculationAPIHandler(testEvaluator(), nil, logger.New("calculation-engine-test"))
}

func postCalculation(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/calculation-requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testAPIHandler().HandleCalculationRequest(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) *types.CalculationResponse {
	t.Helper()
	var resp types.CalculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v\n%s", err, rec.Body.String())
	}
	return &resp
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) *types.ProblemDocument {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var doc types.ProblemDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode problem document: %v\n%s", err, rec.Body.String())
	}
	return &doc
}

const validRequestBody = `{
	"tenant_id": "acme_pensions",
	"calculation_instructions": {
		"mutations": [
			{
				"mutation_id": "m-1",
				"mutation_definition_name": "create_dossier",
				"mutation_type": "DOSSIER",
				"actual_at": "2020-01-01",
				"mutation_properties": {
					"dossier_id": "D1",
					"person_id": "P1",
					"name": "Jan Jansen",
					"birth_date": "1960-03-15"
				}
			}
		]
	}
}`

func TestHandleCalculationRequestSuccess(t *testing.T) {
	rec := postCalculation(t, validRequestBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decodeResponse(t, rec)
	if resp.CalculationMetadata.TenantID != "acme_pensions" {
		t.Errorf("tenant_id = %q, want acme_pensions", resp.CalculationMetadata.TenantID)
	}
	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeSuccess {
		t.Errorf("outcome = %s, want SUCCESS", resp.CalculationMetadata.CalculationOutcome)
	}
	if resp.CalculationResult.EndSituation.Situation.Dossier == nil {
		t.Error("end situation must contain the dossier")
	}
}

func TestHandleCalculationRequestBusinessFailureIs200(t *testing.T) {
	// Retirement against an empty situation: a business failure, not a
	// transport error
	rec := postCalculation(t, `{
		"tenant_id": "acme_pensions",
		"calculation_instructions": {
			"mutations": [
				{
					"mutation_id": "m-1",
					"mutation_definition_name": "calculate_retirement_benefit",
					"mutation_type": "DOSSIER",
					"actual_at": "2025-06-01",
					"mutation_properties": {"retirement_date": "2025-06-01"}
				}
			]
		}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeFailure {
		t.Errorf("outcome = %s, want FAILURE", resp.CalculationMetadata.CalculationOutcome)
	}
	if len(resp.CalculationResult.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(resp.CalculationResult.Messages))
	}
	if got := resp.CalculationResult.Messages[0].Code; got != CodeDossierNotFound {
		t.Errorf("message code = %s, want %s", got, CodeDossierNotFound)
	}
	if resp.CalculationResult.EndSituation.Situation.Dossier != nil {
		t.Error("end situation must stay empty when nothing succeeded")
	}
}

func TestHandleCalculationRequestMalformedBody(t *testing.T) {
	rec := postCalculation(t, `{"tenant_id": "acme_pensions", "calculation_instructions"`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	doc := decodeProblem(t, rec)
	if doc.Status != http.StatusBadRequest {
		t.Errorf("problem status = %d, want 400", doc.Status)
	}
}

func TestHandleCalculationRequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			"missing tenant",
			`{"calculation_instructions": {"mutations": [{"mutation_id": "m-1", "mutation_definition_name": "create_dossier", "mutation_type": "DOSSIER", "actual_at": "2020-01-01", "mutation_properties": {}}]}}`,
			"tenant_id",
		},
		{
			"uppercase tenant",
			`{"tenant_id": "Acme", "calculation_instructions": {"mutations": [{"mutation_id": "m-1", "mutation_definition_name": "create_dossier", "mutation_type": "DOSSIER", "actual_at": "2020-01-01", "mutation_properties": {}}]}}`,
			"tenant_id",
		},
		{
			"tenant too long",
			`{"tenant_id": "abcdefghijklmnopqrstuvwxyz", "calculation_instructions": {"mutations": [{"mutation_id": "m-1", "mutation_definition_name": "create_dossier", "mutation_type": "DOSSIER", "actual_at": "2020-01-01", "mutation_properties": {}}]}}`,
			"tenant_id",
		},
		{
			"empty mutation list",
			`{"tenant_id": "acme_pensions", "calculation_instructions": {"mutations": []}}`,
			"calculation_instructions.mutations",
		},
		{
			"missing mutation id",
			`{"tenant_id": "acme_pensions", "calculation_instructions": {"mutations": [{"mutation_definition_name": "create_dossier", "mutation_type": "DOSSIER", "actual_at": "2020-01-01", "mutation_properties": {}}]}}`,
			"calculation_instructions.mutations[0].mutation_id",
		},
		{
			"bad actual_at",
			`{"tenant_id": "acme_pensions", "calculation_instructions": {"mutations": [{"mutation_id": "m-1", "mutation_definition_name": "create_dossier", "mutation_type": "DOSSIER", "actual_at": "01-01-2020", "mutation_properties": {}}]}}`,
			"calculation_instructions.mutations[0].actual_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postCalculation(t, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400\n%s", rec.Code, rec.Body.String())
			}
			doc := decodeProblem(t, rec)
			found := false
			for _, v := range doc.InvalidFields {
				if v.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no violation for field %q in %v", tt.wantField, doc.InvalidFields)
			}
		})
	}
}

func TestHandleCalculationRequestEchoesUnknownFields(t *testing.T) {
	body := strings.Replace(validRequestBody,
		`"mutation_id": "m-1",`,
		`"mutation_id": "m-1", "migration_batch": 7,`, 1)

	rec := postCalculation(t, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if len(resp.CalculationResult.Mutations) != 1 {
		t.Fatalf("expected 1 processed mutation, got %d", len(resp.CalculationResult.Mutations))
	}
	echoed := string(resp.CalculationResult.Mutations[0].Mutation)
	if !strings.Contains(echoed, `"migration_batch"`) {
		t.Errorf("unknown field dropped from mutation echo:\n%s", echoed)
	}
}

func TestValidTenantIDs(t *testing.T) {
	valid := []string{"acme", "acme_pensions", "t1", "a_b_c", "pensioen123"}
	invalid := []string{"", "Acme", "acme-pensions", "_acme", "acme_", "acme__pensions", "acme pensions"}

	for _, id := range valid {
		if !tenantIDPattern.MatchString(id) {
			t.Errorf("tenant %q rejected, want accepted", id)
		}
	}
	for _, id := range invalid {
		if tenantIDPattern.MatchString(id) {
			t.Errorf("tenant %q accepted, want rejected", id)
		}
	}
}
