package engine

import (
	"fmt"

	"github.com/vac-rating-engine/internal/domain"
)

// resolvedCondition pairs a validated binding with its MI result and its
// position in the request, which fixes all downstream ordering.
type resolvedCondition struct {
	binding domain.ConditionBinding
	result  domain.MIResult
	order   int
}

// resolveMI validates every condition binding against the repository and
// assembles the MIResult set. Entitled conditions may head or join a
// bracket group; non-entitled conditions may only appear as PCT
// contributors, so each must be claimed by exactly one declaration.
func (e *Engine) resolveMI(req *domain.AssessmentRequest) ([]domain.MIResult, map[string]*resolvedCondition, error) {
	contributions := make(map[string]int)
	for _, directive := range req.Groups {
		if directive.PCT != nil {
			contributions[directive.PCT.ContributorID]++
		}
	}

	results := make([]domain.MIResult, 0, len(req.Conditions))
	index := make(map[string]*resolvedCondition, len(req.Conditions))

	for i, binding := range req.Conditions {
		cond := binding.Condition
		if cond.ID == "" {
			return nil, nil, &domain.InvalidBindingError{Reason: fmt.Sprintf("condition at position %d has no id", i)}
		}
		if _, exists := index[cond.ID]; exists {
			return nil, nil, domain.NewInvalidBindingError(cond.ID, "duplicate condition id")
		}
		if !cond.Entitlement.Valid() {
			return nil, nil, domain.NewInvalidBindingError(cond.ID, fmt.Sprintf("unknown entitlement status %q", string(cond.Entitlement)))
		}

		cell, err := e.repo.Cell(cond.Ref.Chapter, cond.Ref.Table, binding.Rating)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving condition %s: %w", cond.ID, err)
		}
		table, err := e.repo.Table(cond.Ref.Chapter, cond.Ref.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving condition %s: %w", cond.ID, err)
		}
		chapter, err := e.repo.Chapter(cond.Ref.Chapter)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving condition %s: %w", cond.ID, err)
		}

		if cond.Entitlement == domain.NON_ENTITLED {
			switch contributions[cond.ID] {
			case 0:
				return nil, nil, domain.NewInvalidBindingError(cond.ID, "non-entitled condition has no PCT contribution role")
			case 1:
				// sole contribution, the only permitted role
			default:
				return nil, nil, domain.NewInvalidBindingError(cond.ID, "condition contributes to more than one group")
			}
		}

		result := domain.MIResult{
			ConditionID:   cond.ID,
			ConditionName: cond.Name,
			Ref:           cond.Ref,
			ChapterTitle:  chapter.Title,
			TableTitle:    table.Title,
			Rating:        cell.Rating,
			Descriptor:    cell.Descriptor,
			Rationale:     binding.Rationale,
			Entitlement:   cond.Entitlement,
		}
		results = append(results, result)
		index[cond.ID] = &resolvedCondition{binding: binding, result: result, order: i}
	}

	return results, index, nil
}
