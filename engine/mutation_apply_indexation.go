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
	"github.com/shopspring/decimal"

	"pensio/platform/shared/types"
)

// handleApplyIndexation rescales the salaries of the selected policies by
// (1 + percentage). Selection filters are optional: scheme_id matches
// exactly, effective_before keeps policies whose employment start date is
// strictly earlier. Salaries never go below zero; a single warning covers
// all clamped policies.
func handleApplyIndexation(hc handlerContext, mut types.Mutation, sit *Situation) []types.CalculationMessage {
	props := mut.MutationProperties

	if sit.Dossier == nil {
		return []types.CalculationMessage{
			criticalMessage(CodeDossierNotFound, "no dossier exists in the situation"),
		}
	}
	d := sit.Dossier

	if len(d.Policies) == 0 {
		return []types.CalculationMessage{
			criticalMessage(CodeNoPolicies, "dossier %q has no policies", d.DossierID),
		}
	}

	schemeID := props.NullableString("scheme_id")
	effectiveBefore := props.NullableDate("effective_before")
	filtered := schemeID != nil || effectiveBefore != nil

	var selected []int
	for i := range d.Policies {
		if schemeID != nil && d.Policies[i].SchemeID != *schemeID {
			continue
		}
		if effectiveBefore != nil && !d.Policies[i].EmploymentStartDate.Before(*effectiveBefore) {
			continue
		}
		selected = append(selected, i)
	}

	if filtered && len(selected) == 0 {
		return []types.CalculationMessage{
			warningMessage(CodeNoMatchingPolicies, "no policies match the indexation filters"),
		}
	}

	factor := decimal.NewFromInt(1).Add(props.Decimal("percentage"))
	clamped := false
	for _, i := range selected {
		newSalary := d.Policies[i].Salary.Mul(factor)
		if newSalary.IsNegative() {
			newSalary = decimal.Zero
			clamped = true
		}
		d.Policies[i].Salary = newSalary
	}

	if clamped {
		return []types.CalculationMessage{
			warningMessage(CodeNegativeSalaryClamped,
				"indexation produced a negative salary; clamped to 0"),
		}
	}
	return nil
}
