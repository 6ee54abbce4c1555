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

package types

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DateFormat is the ISO calendar date layout used on the wire.
const DateFormat = "2006-01-02"

func init() {
	// Monetary values serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Severity classifies a calculation message. CRITICAL halts evaluation,
// WARNING is recorded and evaluation continues.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// String returns the string representation of the Severity
func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if the Severity is a valid known value
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning:
		return true
	default:
		return false
	}
}

// CalculationMessage is a structured record emitted while evaluating a mutation.
type CalculationMessage struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// CalculationOutcome is the overall result of a calculation request.
type CalculationOutcome string

const (
	OutcomeSuccess CalculationOutcome = "SUCCESS"
	OutcomeFailure CalculationOutcome = "FAILURE"
)

// CalculationRequest is the body of POST /calculation-requests.
type CalculationRequest struct {
	TenantID                string                  `json:"tenant_id"`
	CalculationInstructions CalculationInstructions `json:"calculation_instructions"`
}

// CalculationInstructions carries the ordered mutation list of a request.
type CalculationInstructions struct {
	Mutations []Mutation `json:"mutations"`
}

// Mutation is a single ordered instruction against the situation.
//
// The raw request bytes are retained on unmarshal so the response can echo
// the mutation payload verbatim, preserving field order and unknown fields.
type Mutation struct {
	MutationID             string             `json:"mutation_id"`
	MutationDefinitionName string             `json:"mutation_definition_name"`
	MutationType           string             `json:"mutation_type"`
	ActualAt               string             `json:"actual_at"`
	DossierID              *string            `json:"dossier_id,omitempty"`
	MutationProperties     MutationProperties `json:"mutation_properties"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the mutation and keeps the original payload bytes.
// Property values decode through json.Number so decimal inputs survive
// without binary floating point loss.
func (m *Mutation) UnmarshalJSON(data []byte) error {
	type mutationAlias struct {
		MutationID             string             `json:"mutation_id"`
		MutationDefinitionName string             `json:"mutation_definition_name"`
		MutationType           string             `json:"mutation_type"`
		ActualAt               string             `json:"actual_at"`
		DossierID              *string            `json:"dossier_id,omitempty"`
		MutationProperties     MutationProperties `json:"mutation_properties"`
	}

	var alias mutationAlias
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&alias); err != nil {
		return err
	}

	m.MutationID = alias.MutationID
	m.MutationDefinitionName = alias.MutationDefinitionName
	m.MutationType = alias.MutationType
	m.ActualAt = alias.ActualAt
	m.DossierID = alias.DossierID
	m.MutationProperties = alias.MutationProperties
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the original payload when the mutation was decoded
// from a request, falling back to field marshaling for constructed values.
func (m Mutation) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	type mutationAlias struct {
		MutationID             string             `json:"mutation_id"`
		MutationDefinitionName string             `json:"mutation_definition_name"`
		MutationType           string             `json:"mutation_type"`
		ActualAt               string             `json:"actual_at"`
		DossierID              *string            `json:"dossier_id,omitempty"`
		MutationProperties     MutationProperties `json:"mutation_properties"`
	}
	return json.Marshal(mutationAlias{
		MutationID:             m.MutationID,
		MutationDefinitionName: m.MutationDefinitionName,
		MutationType:           m.MutationType,
		ActualAt:               m.ActualAt,
		DossierID:              m.DossierID,
		MutationProperties:     m.MutationProperties,
	})
}

// Raw returns the verbatim request payload of the mutation, or nil when the
// mutation was not decoded from JSON.
func (m Mutation) Raw() json.RawMessage {
	return m.raw
}

// CalculationResponse is the body returned for every parseable request,
// regardless of the business outcome.
type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

// CalculationMetadata identifies and times a single evaluation.
type CalculationMetadata struct {
	CalculationID          string             `json:"calculation_id"`
	TenantID               string             `json:"tenant_id"`
	CalculationStartedAt   string             `json:"calculation_started_at"`
	CalculationCompletedAt string             `json:"calculation_completed_at"`
	CalculationDurationMS  int64              `json:"calculation_duration_ms"`
	CalculationOutcome     CalculationOutcome `json:"calculation_outcome"`
}

// CalculationResult carries the messages, the attempted mutations and the
// begin/end situation snapshots.
type CalculationResult struct {
	Messages         []CalculationMessage `json:"messages"`
	Mutations        []ProcessedMutation  `json:"mutations"`
	InitialSituation InitialSituation     `json:"initial_situation"`
	EndSituation     EndSituation         `json:"end_situation"`
}

// ProcessedMutation pairs an attempted mutation (echoed verbatim) with the
// indexes of the messages it contributed; null when it produced none.
type ProcessedMutation struct {
	Mutation                  json.RawMessage `json:"mutation"`
	CalculationMessageIndexes []int           `json:"calculation_message_indexes"`
}

// InitialSituation is the (always empty) situation before the first mutation.
type InitialSituation struct {
	ActualAt  string            `json:"actual_at"`
	Situation SituationSnapshot `json:"situation"`
}

// EndSituation is the situation after the last successful mutation.
type EndSituation struct {
	MutationID    string            `json:"mutation_id"`
	MutationIndex int               `json:"mutation_index"`
	ActualAt      string            `json:"actual_at"`
	Situation     SituationSnapshot `json:"situation"`
}

// SituationSnapshot is the canonical external shape of a situation.
type SituationSnapshot struct {
	Dossier *DossierSnapshot `json:"dossier"`
}

// DossierSnapshot is the canonical external shape of a dossier.
type DossierSnapshot struct {
	DossierID      string           `json:"dossier_id"`
	Status         string           `json:"status"`
	RetirementDate *string          `json:"retirement_date"`
	Persons        []PersonSnapshot `json:"persons"`
	Policies       []PolicySnapshot `json:"policies"`
}

// PersonSnapshot is the canonical external shape of a person.
type PersonSnapshot struct {
	PersonID  string `json:"person_id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

// PolicySnapshot is the canonical external shape of a policy.
type PolicySnapshot struct {
	PolicyID            string           `json:"policy_id"`
	SchemeID            string           `json:"scheme_id"`
	EmploymentStartDate string           `json:"employment_start_date"`
	Salary              decimal.Decimal  `json:"salary"`
	PartTimeFactor      decimal.Decimal  `json:"part_time_factor"`
	AttainablePension   *decimal.Decimal `json:"attainable_pension"`
	Projections         interface{}      `json:"projections"`
}

// ProblemDocument is an RFC 7807 style error body for transport-level failures.
type ProblemDocument struct {
	Type          string           `json:"type"`
	Title         string           `json:"title"`
	Status        int              `json:"status"`
	Detail        string           `json:"detail,omitempty"`
	InvalidFields []FieldViolation `json:"invalid_fields,omitempty"`
}

// FieldViolation names a single offending request field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
