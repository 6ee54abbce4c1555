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

	"pensio/platform/shared/types"
)

// Stable message codes. Callers and the test suite rely on these identifiers,
// so they never change across releases.
const (
	CodeDossierAlreadyExists       = "DOSSIER_ALREADY_EXISTS"
	CodeInvalidName                = "INVALID_NAME"
	CodeInvalidBirthDate           = "INVALID_BIRTH_DATE"
	CodeDossierNotFound            = "DOSSIER_NOT_FOUND"
	CodeInvalidSalary              = "INVALID_SALARY"
	CodeInvalidPartTimeFactor      = "INVALID_PART_TIME_FACTOR"
	CodeDuplicatePolicy            = "DUPLICATE_POLICY"
	CodeNoPolicies                 = "NO_POLICIES"
	CodeNoMatchingPolicies         = "NO_MATCHING_POLICIES"
	CodeNegativeSalaryClamped      = "NEGATIVE_SALARY_CLAMPED"
	CodeNoParticipant              = "NO_PARTICIPANT"
	CodeRetirementBeforeEmployment = "RETIREMENT_BEFORE_EMPLOYMENT"
	CodeNotEligible                = "NOT_ELIGIBLE"
	CodeUnknownMutation            = "UNKNOWN_MUTATION"
)

func criticalMessage(code, format string, args ...interface{}) types.CalculationMessage {
	return types.CalculationMessage{
		Code:     code,
		Severity: types.SeverityCritical,
		Message:  fmt.Sprintf(format, args...),
	}
}

func warningMessage(code, format string, args ...interface{}) types.CalculationMessage {
	return types.CalculationMessage{
		Code:     code,
		Severity: types.SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	}
}

func hasCritical(messages []types.CalculationMessage) bool {
	for _, m := range messages {
		if m.Severity == types.SeverityCritical {
			return true
		}
	}
	return false
}
