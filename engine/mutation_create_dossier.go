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
	"strings"

	"pensio/platform/shared/types"
)

// handleCreateDossier installs the dossier into an empty situation with a
// single PARTICIPANT person. Preconditions are checked in order; the first
// failure wins and leaves the situation untouched.
func handleCreateDossier(hc handlerContext, mut types.Mutation, sit *Situation) []types.CalculationMessage {
	props := mut.MutationProperties

	if sit.Dossier != nil {
		return []types.CalculationMessage{
			criticalMessage(CodeDossierAlreadyExists,
				"situation already contains dossier %q", sit.Dossier.DossierID),
		}
	}

	name := props.String("name")
	if strings.TrimSpace(name) == "" {
		return []types.CalculationMessage{
			criticalMessage(CodeInvalidName, "person name must not be empty"),
		}
	}

	birthDate := props.Date("birth_date")
	if birthDate.IsZero() || birthDate.After(todayUTC(hc.now)) {
		return []types.CalculationMessage{
			criticalMessage(CodeInvalidBirthDate,
				"birth date %q is missing, unparseable or in the future", props.String("birth_date")),
		}
	}

	sit.Dossier = &Dossier{
		DossierID: props.String("dossier_id"),
		Status:    DossierStatusActive,
		Persons: []Person{
			{
				PersonID:  props.String("person_id"),
				Role:      RoleParticipant,
				Name:      name,
				BirthDate: birthDate,
			},
		},
		Policies: []Policy{},
	}
	return nil
}
