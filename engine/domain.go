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

	"github.com/shopspring/decimal"
)

// DossierStatus is the lifecycle state of a dossier
type DossierStatus string

const (
	// DossierStatusActive is the state of a dossier before retirement
	DossierStatusActive DossierStatus = "ACTIVE"
	// DossierStatusRetired is set by a successful retirement benefit calculation
	DossierStatusRetired DossierStatus = "RETIRED"
)

// String returns the string representation of the DossierStatus
func (s DossierStatus) String() string {
	return string(s)
}

// IsValid returns true if the DossierStatus is a valid known value
func (s DossierStatus) IsValid() bool {
	switch s {
	case DossierStatusActive, DossierStatusRetired:
		return true
	default:
		return false
	}
}

// RoleParticipant is the person role the retirement calculation keys on.
const RoleParticipant = "PARTICIPANT"

// Situation is the in-memory state transformed by a calculation request.
// It holds at most one dossier and lives for exactly one evaluation.
type Situation struct {
	Dossier *Dossier
}

// NewSituation returns an empty situation.
func NewSituation() *Situation {
	return &Situation{}
}

// Dossier is a single pension case: one participant plus the policies
// accrued over their employment history.
type Dossier struct {
	DossierID      string
	Status         DossierStatus
	RetirementDate *time.Time // set iff Status == DossierStatusRetired
	Persons        []Person
	Policies       []Policy
}

// Participant returns the person with role PARTICIPANT, or nil.
func (d *Dossier) Participant() *Person {
	for i := range d.Persons {
		if d.Persons[i].Role == RoleParticipant {
			return &d.Persons[i]
		}
	}
	return nil
}

// Person is a member of a dossier.
type Person struct {
	PersonID  string
	Role      string
	Name      string
	BirthDate time.Time
}

// Policy is a single employment record within a dossier.
type Policy struct {
	PolicyID            string
	SchemeID            string
	EmploymentStartDate time.Time
	Salary              decimal.Decimal
	PartTimeFactor      decimal.Decimal
	AttainablePension   *decimal.Decimal // written by the retirement calculation
	Projections         interface{}      // reserved, never written by the core handlers
}
