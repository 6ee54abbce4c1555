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
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pensio/platform/shared/types"
)

// BuildResponse assembles the wire response for one evaluation: metadata,
// the flat message list, the attempted mutations with their message index
// lists, and the begin/end situation snapshots.
func BuildResponse(tenantID string, startedAt, completedAt time.Time, result *EvaluationResult) *types.CalculationResponse {
	messages := result.Messages
	if messages == nil {
		messages = []types.CalculationMessage{}
	}

	mutations := make([]types.ProcessedMutation, len(result.Attempted))
	for i, mut := range result.Attempted {
		mutations[i] = types.ProcessedMutation{
			Mutation:                  mut.Raw(),
			CalculationMessageIndexes: result.MessageIndexes[i],
		}
	}

	return &types.CalculationResponse{
		CalculationMetadata: types.CalculationMetadata{
			CalculationID:          uuid.NewString(),
			TenantID:               tenantID,
			CalculationStartedAt:   startedAt.UTC().Format(time.RFC3339Nano),
			CalculationCompletedAt: completedAt.UTC().Format(time.RFC3339Nano),
			CalculationDurationMS:  completedAt.Sub(startedAt).Milliseconds(),
			CalculationOutcome:     result.Outcome,
		},
		CalculationResult: types.CalculationResult{
			Messages:  messages,
			Mutations: mutations,
			InitialSituation: types.InitialSituation{
				ActualAt:  result.InitialActualAt,
				Situation: types.SituationSnapshot{Dossier: nil},
			},
			EndSituation: types.EndSituation{
				MutationID:    result.LastOKMutationID,
				MutationIndex: result.LastOKMutationIndex,
				ActualAt:      result.LastOKActualAt,
				Situation:     snapshotSituation(result.Situation),
			},
		},
	}
}

// snapshotSituation renders the situation in its canonical external shape.
// Handlers are atomic, so the in-memory situation already reflects the state
// up to and including the last successful mutation.
func snapshotSituation(sit *Situation) types.SituationSnapshot {
	if sit == nil || sit.Dossier == nil {
		return types.SituationSnapshot{}
	}
	d := sit.Dossier

	var retirementDate *string
	if d.RetirementDate != nil {
		s := d.RetirementDate.Format(types.DateFormat)
		retirementDate = &s
	}

	persons := make([]types.PersonSnapshot, len(d.Persons))
	for i, p := range d.Persons {
		persons[i] = types.PersonSnapshot{
			PersonID:  p.PersonID,
			Role:      p.Role,
			Name:      p.Name,
			BirthDate: p.BirthDate.Format(types.DateFormat),
		}
	}

	policies := make([]types.PolicySnapshot, len(d.Policies))
	for i, p := range d.Policies {
		policies[i] = types.PolicySnapshot{
			PolicyID:            p.PolicyID,
			SchemeID:            p.SchemeID,
			EmploymentStartDate: p.EmploymentStartDate.Format(types.DateFormat),
			Salary:              p.Salary,
			PartTimeFactor:      p.PartTimeFactor,
			AttainablePension:   roundedPension(p),
			Projections:         p.Projections,
		}
	}

	return types.SituationSnapshot{
		Dossier: &types.DossierSnapshot{
			DossierID:      d.DossierID,
			Status:         d.Status.String(),
			RetirementDate: retirementDate,
			Persons:        persons,
			Policies:       policies,
		},
	}
}

// roundedPension rounds the attainable pension to cents for the external
// snapshot; the in-memory value keeps full precision.
func roundedPension(p Policy) *decimal.Decimal {
	if p.AttainablePension == nil {
		return nil
	}
	rounded := p.AttainablePension.Round(2)
	return &rounded
}
