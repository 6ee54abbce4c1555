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
	"testing"

	"pensio/platform/shared/types"
)

func indexationMutation(t *testing.T, propsJSON string) types.Mutation {
	t.Helper()
	return mustMutation(t, `{
		"mutation_id": "m-3",
		"mutation_definition_name": "apply_indexation",
		"mutation_type": "POLICY",
		"actual_at": "2025-01-01",
		"mutation_properties": `+propsJSON+`
	}`)
}

func TestHandleApplyIndexation(t *testing.T) {
	hc := testHandlerContext()

	t.Run("rescales all policies without filters", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")
		addTestPolicy(sit, "S2", "2000-01-01", "40000", "0.8")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10}`), sit)

		if len(messages) != 0 {
			t.Fatalf("expected no messages, got %v", messages)
		}
		if got := sit.Dossier.Policies[0].Salary; !got.Equal(mustDecimal("55000")) {
			t.Errorf("policy 0 salary = %s, want 55000", got)
		}
		if got := sit.Dossier.Policies[1].Salary; !got.Equal(mustDecimal("44000")) {
			t.Errorf("policy 1 salary = %s, want 44000", got)
		}
		// Part-time factors are not touched by indexation
		if got := sit.Dossier.Policies[1].PartTimeFactor; !got.Equal(mustDecimal("0.8")) {
			t.Errorf("policy 1 part-time factor = %s, want 0.8", got)
		}
	})

	t.Run("zero percentage leaves salaries unchanged", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0}`), sit)

		if len(messages) != 0 {
			t.Fatalf("expected no messages, got %v", messages)
		}
		if got := sit.Dossier.Policies[0].Salary; !got.Equal(mustDecimal("50000")) {
			t.Errorf("salary = %s, want 50000", got)
		}
	})

	t.Run("scheme filter selects matching policies only", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")
		addTestPolicy(sit, "S2", "2000-01-01", "40000", "1.0")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10, "scheme_id": "S2"}`), sit)

		if len(messages) != 0 {
			t.Fatalf("expected no messages, got %v", messages)
		}
		if got := sit.Dossier.Policies[0].Salary; !got.Equal(mustDecimal("50000")) {
			t.Errorf("unselected policy salary = %s, want 50000", got)
		}
		if got := sit.Dossier.Policies[1].Salary; !got.Equal(mustDecimal("44000")) {
			t.Errorf("selected policy salary = %s, want 44000", got)
		}
	})

	t.Run("effective_before is a strict bound", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")
		addTestPolicy(sit, "S2", "2000-01-01", "40000", "1.0")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10, "effective_before": "2000-01-01"}`), sit)

		if len(messages) != 0 {
			t.Fatalf("expected no messages, got %v", messages)
		}
		if got := sit.Dossier.Policies[0].Salary; !got.Equal(mustDecimal("55000")) {
			t.Errorf("earlier policy salary = %s, want 55000", got)
		}
		// Start date equal to effective_before is excluded
		if got := sit.Dossier.Policies[1].Salary; !got.Equal(mustDecimal("40000")) {
			t.Errorf("boundary policy salary = %s, want 40000", got)
		}
	})

	t.Run("filters matching nothing is a warning without changes", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10, "scheme_id": "S9"}`), sit)

		if len(messages) != 1 || messages[0].Code != CodeNoMatchingPolicies {
			t.Fatalf("expected single %s message, got %v", CodeNoMatchingPolicies, messages)
		}
		if messages[0].Severity != types.SeverityWarning {
			t.Errorf("severity = %s, want WARNING", messages[0].Severity)
		}
		if got := sit.Dossier.Policies[0].Salary; !got.Equal(mustDecimal("50000")) {
			t.Errorf("salary = %s, want 50000 unchanged", got)
		}
	})

	t.Run("negative result clamps to zero with one warning", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		addTestPolicy(sit, "S1", "1990-06-01", "50000", "1.0")
		addTestPolicy(sit, "S2", "2000-01-01", "40000", "1.0")

		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": -5.0}`), sit)

		if len(messages) != 1 || messages[0].Code != CodeNegativeSalaryClamped {
			t.Fatalf("expected single %s message, got %v", CodeNegativeSalaryClamped, messages)
		}
		for i, p := range sit.Dossier.Policies {
			if !p.Salary.IsZero() {
				t.Errorf("policy %d salary = %s, want 0", i, p.Salary)
			}
		}
	})

	t.Run("without dossier", func(t *testing.T) {
		sit := NewSituation()
		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10}`), sit)

		if len(messages) != 1 || messages[0].Code != CodeDossierNotFound {
			t.Fatalf("expected single %s message, got %v", CodeDossierNotFound, messages)
		}
	})

	t.Run("without policies", func(t *testing.T) {
		sit := situationWithDossier("1960-03-15")
		messages := handleApplyIndexation(hc, indexationMutation(t, `{"percentage": 0.10}`), sit)

		if len(messages) != 1 || messages[0].Code != CodeNoPolicies {
			t.Fatalf("expected single %s message, got %v", CodeNoPolicies, messages)
		}
	})
}
