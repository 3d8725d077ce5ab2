package engine

import (
	"fmt"

	"github.com/vac-rating-engine/internal/domain"
)

// roundHalfUp rounds numerator/denominator to the nearest integer with
// halves rounding up. Inputs are non-negative; the arithmetic stays in
// integers so results are exact and replayable.
func roundHalfUp(numerator, denominator int) int {
	return (2*numerator + denominator) / (2 * denominator)
}

// compose sums each group's effective MI and QoL addend, applies the
// optional partial-entitlement fraction, rounds, and clamps to [0, 100].
// A clamp is a material, reportable fact: it sets the flag and records a
// warning instead of being silently dropped.
func (e *Engine) compose(req *domain.AssessmentRequest, miResults []domain.MIResult, groups []domain.GroupResult) (*domain.AssessmentResult, error) {
	fraction := domain.WholeEntitlement()
	if req.Entitlement != nil {
		fraction = *req.Entitlement
		if !fraction.Valid() {
			return nil, &domain.InvalidBindingError{Reason: fmt.Sprintf("entitlement fraction %s is not a rational value in [0, 1]", fraction.String())}
		}
	}

	sum := 0
	for _, group := range groups {
		sum += group.EffectiveMI + group.QoL.Addend
	}

	computed := roundHalfUp(sum*fraction.Numerator, fraction.Denominator)

	result := &domain.AssessmentResult{
		RulesVersion: e.repo.Version(),
		MIResults:    miResults,
		Groups:       groups,
		Sum:          sum,
		Entitlement:  fraction,
		Computed:     computed,
		Final:        computed,
	}

	if computed > 100 {
		result.Final = 100
		result.Clamped = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: computed percentage %d exceeds the payable cap, clamped to 100", domain.WarnCapClamped, computed))
	}
	if computed < 0 {
		result.Final = 0
		result.Clamped = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: computed percentage %d is below zero, clamped to 0", domain.WarnCapClamped, computed))
	}

	return result, nil
}
