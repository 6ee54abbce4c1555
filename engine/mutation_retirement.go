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

	"pensio/platform/shared/types"
)

const (
	// eligibilityAge is the retirement age threshold in whole years.
	eligibilityAge = 65
	// eligibilityServiceYears is the alternative service-years threshold.
	eligibilityServiceYears = 40
)

// daysPerYear is the calendar-accurate average year length including leap
// years. Service years divide whole days by this; the participant age uses
// calendar arithmetic instead. The two formulas are distinct on purpose.
var daysPerYear = decimal.NewFromFloat(365.25)

// handleCalculateRetirementBenefit computes the attainable pension per
// policy and retires the dossier.
//
// Service years accrue per policy as whole days / 365.25, clamped at 0.
// The annual pension is the service-weighted average effective salary times
// the service years times the scheme accrual rate, distributed over the
// policies proportionally to their service years.
func handleCalculateRetirementBenefit(hc handlerContext, mut types.Mutation, sit *Situation) []types.CalculationMessage {
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

	participant := d.Participant()
	if participant == nil {
		return []types.CalculationMessage{
			criticalMessage(CodeNoParticipant,
				"dossier %q has no person with role %s", d.DossierID, RoleParticipant),
		}
	}

	retirementDate := props.Date("retirement_date")

	var messages []types.CalculationMessage
	serviceYears := make([]decimal.Decimal, len(d.Policies))
	totalYears := decimal.Zero
	for i, p := range d.Policies {
		days := wholeDaysBetween(p.EmploymentStartDate, retirementDate)
		if days < 0 {
			messages = append(messages, warningMessage(CodeRetirementBeforeEmployment,
				"retirement date precedes employment start date for policy %s", p.PolicyID))
			serviceYears[i] = decimal.Zero
		} else {
			serviceYears[i] = decimal.NewFromInt(days).Div(daysPerYear)
		}
		totalYears = totalYears.Add(serviceYears[i])
	}

	age := ageAt(participant.BirthDate, retirementDate)
	if age < eligibilityAge && totalYears.LessThan(decimal.NewFromInt(eligibilityServiceYears)) {
		messages = append(messages, criticalMessage(CodeNotEligible,
			"participant is not eligible for retirement: age %d, service years %s",
			age, totalYears.Round(2)))
		return messages
	}

	if totalYears.IsZero() {
		for i := range d.Policies {
			zero := decimal.Zero
			d.Policies[i].AttainablePension = &zero
		}
	} else {
		weightedSalarySum := decimal.Zero
		for i, p := range d.Policies {
			effectiveSalary := p.Salary.Mul(p.PartTimeFactor)
			weightedSalarySum = weightedSalarySum.Add(effectiveSalary.Mul(serviceYears[i]))
		}
		avgSalary := weightedSalarySum.Div(totalYears)

		// Each policy's share uses its own scheme's accrual rate; with the
		// default 0.02 everywhere this reduces to the single-rate formula
		// annual_pension * years_i / total_years.
		for i, p := range d.Policies {
			rate := accrualRateFor(hc, p.SchemeID)
			share := avgSalary.Mul(serviceYears[i]).Mul(rate)
			d.Policies[i].AttainablePension = &share
		}
	}

	d.Status = DossierStatusRetired
	rd := retirementDate
	d.RetirementDate = &rd
	return messages
}

func accrualRateFor(hc handlerContext, schemeID string) decimal.Decimal {
	if hc.rates == nil {
		return DefaultAccrualRate()
	}
	return hc.rates.GetAccrualRate(hc.ctx, schemeID)
}

// wholeDaysBetween returns the whole-day difference to - from. Both values
// are calendar dates at midnight UTC, so the division is exact.
func wholeDaysBetween(from, to time.Time) int64 {
	return int64(to.Sub(from) / (24 * time.Hour))
}

// ageAt computes the participant age at a reference date: calendar-year
// difference, minus one when the date falls before the birthday in that year.
func ageAt(birthDate, at time.Time) int {
	age := at.Year() - birthDate.Year()
	if at.Month() < birthDate.Month() ||
		(at.Month() == birthDate.Month() && at.Day() < birthDate.Day()) {
		age--
	}
	return age
}
