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
	"fmt"

	"github.com/shopspring/decimal"

	"pensio/platform/shared/types"
)

// handleAddPolicy appends a policy to the dossier. A duplicate
// (scheme_id, employment_start_date) pair is a warning, not a rejection:
// the policy is inserted anyway.
func handleAddPolicy(hc handlerContext, mut types.Mutation, sit *Situation) []types.CalculationMessage {
	props := mut.MutationProperties

	if sit.Dossier == nil {
		return []types.CalculationMessage{
			criticalMessage(CodeDossierNotFound, "no dossier exists in the situation"),
		}
	}
	d := sit.Dossier

	salary := props.Decimal("salary")
	if salary.IsNegative() {
		return []types.CalculationMessage{
			criticalMessage(CodeInvalidSalary, "salary %s must not be negative", salary),
		}
	}

	partTimeFactor := props.Decimal("part_time_factor")
	if partTimeFactor.IsNegative() || partTimeFactor.GreaterThan(decimal.NewFromInt(1)) {
		return []types.CalculationMessage{
			criticalMessage(CodeInvalidPartTimeFactor,
				"part-time factor %s must be between 0 and 1", partTimeFactor),
		}
	}

	schemeID := props.String("scheme_id")
	startDate := props.Date("employment_start_date")

	var messages []types.CalculationMessage
	for _, p := range d.Policies {
		if p.SchemeID == schemeID && p.EmploymentStartDate.Equal(startDate) {
			messages = append(messages, warningMessage(CodeDuplicatePolicy,
				"policy with scheme %q and employment start date %s already exists",
				schemeID, startDate.Format(types.DateFormat)))
			break
		}
	}

	// Policy ids are 1-based per insertion order within the dossier.
	policyID := fmt.Sprintf("%s-%d", d.DossierID, len(d.Policies)+1)
	d.Policies = append(d.Policies, Policy{
		PolicyID:            policyID,
		SchemeID:            schemeID,
		EmploymentStartDate: startDate,
		Salary:              salary,
		PartTimeFactor:      partTimeFactor,
	})
	return messages
}
