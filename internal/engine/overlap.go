package engine

import (
	"fmt"

	"github.com/vac-rating-engine/internal/domain"
)

// groupKey identifies a candidate bracket group. All Chapter 21 entitled
// conditions share one key regardless of table; everything else groups by
// identical (chapter, table, segment).
type groupKey struct {
	chapter int
	table   int
	segment string
	psych   bool
}

func keyFor(ref domain.TableRef) groupKey {
	if ref.Chapter == domain.PsychiatricChapter {
		return groupKey{chapter: domain.PsychiatricChapter, psych: true}
	}
	return groupKey{chapter: ref.Chapter, table: ref.Table, segment: ref.Segment}
}

// candidateGroup is a bracket group under construction, ordered by the
// first member's position in the request.
type candidateGroup struct {
	key       groupKey
	group     domain.BracketGroup
	members   []*resolvedCondition
	directive *domain.GroupDirective
}

// resolveOverlap partitions entitled conditions into bracket groups,
// attaches the caller's per-group directives and resolves each group to a
// single effective MI: adjudicated bracket value, PCT-adjusted value, or
// the lone member's rating. Bracket and PCT never combine; conflicts are
// surfaced as AmbiguousOverlapError, never guessed away.
func (e *Engine) resolveOverlap(req *domain.AssessmentRequest, index map[string]*resolvedCondition) ([]domain.GroupResult, error) {
	groups, byKey, err := e.partition(req, index)
	if err != nil {
		return nil, err
	}

	if err := e.attachDirectives(req, index, byKey); err != nil {
		return nil, err
	}

	results := make([]domain.GroupResult, 0, len(groups))
	for _, cg := range groups {
		if cg.directive == nil {
			return nil, domain.NewGroupBindingError(cg.group.ID, "no directive supplies a QoL level for this group")
		}
		if !cg.directive.QoLLevel.Valid() {
			return nil, domain.NewGroupBindingError(cg.group.ID, fmt.Sprintf("QoL level %d is not one of the three defined levels", int(cg.directive.QoLLevel)))
		}

		resolution, effective, err := e.resolveGroup(cg, index, byKey)
		if err != nil {
			return nil, err
		}

		results = append(results, domain.GroupResult{
			Group:       cg.group,
			Resolution:  *resolution,
			EffectiveMI: effective,
			QoL:         domain.QoLResult{Level: cg.directive.QoLLevel},
		})
	}

	return results, nil
}

// partition builds the candidate groups in request order.
func (e *Engine) partition(req *domain.AssessmentRequest, index map[string]*resolvedCondition) ([]*candidateGroup, map[groupKey]*candidateGroup, error) {
	var groups []*candidateGroup
	byKey := make(map[groupKey]*candidateGroup)

	for _, binding := range req.Conditions {
		rc := index[binding.Condition.ID]
		if rc.result.Entitlement != domain.ENTITLED {
			continue
		}

		key := keyFor(rc.result.Ref)
		cg, ok := byKey[key]
		if !ok {
			group := domain.BracketGroup{
				ID:           fmt.Sprintf("G%d", len(groups)+1),
				Chapter:      key.chapter,
				ChapterTitle: rc.result.ChapterTitle,
				Psychiatric:  key.psych,
			}
			if !key.psych {
				group.Table = key.table
				group.TableTitle = rc.result.TableTitle
				group.Segment = key.segment
			}
			cg = &candidateGroup{key: key, group: group}
			byKey[key] = cg
			groups = append(groups, cg)
		}
		cg.members = append(cg.members, rc)
		cg.group.MemberIDs = append(cg.group.MemberIDs, rc.result.ConditionID)
	}

	if len(groups) == 0 {
		return nil, nil, &domain.InvalidBindingError{Reason: "no entitled conditions to assess"}
	}
	return groups, byKey, nil
}

// attachDirectives maps each caller directive onto the group containing
// its anchor condition. Every group takes exactly one directive.
func (e *Engine) attachDirectives(req *domain.AssessmentRequest, index map[string]*resolvedCondition, byKey map[groupKey]*candidateGroup) error {
	for _, directive := range req.Groups {
		rc, ok := index[directive.AnchorConditionID]
		if !ok {
			return domain.NewInvalidBindingError(directive.AnchorConditionID, "directive anchor is not a condition of this assessment")
		}
		if rc.result.Entitlement != domain.ENTITLED {
			return domain.NewInvalidBindingError(directive.AnchorConditionID, "directive anchor must be an entitled condition")
		}

		cg := byKey[keyFor(rc.result.Ref)]
		if cg.directive != nil {
			return domain.NewGroupBindingError(cg.group.ID, "more than one directive addresses this group")
		}
		d := directive
		cg.directive = &d
	}
	return nil
}

// resolveGroup produces the tagged overlap resolution for one group.
func (e *Engine) resolveGroup(cg *candidateGroup, index map[string]*resolvedCondition, byKey map[groupKey]*candidateGroup) (*domain.OverlapResolution, int, error) {
	directive := cg.directive
	bracketed := len(cg.members) > 1

	if bracketed && directive.PCT != nil {
		return nil, 0, domain.NewAmbiguousOverlapError(directive.PCT.ContributorID, cg.group.ID)
	}
	if !bracketed && directive.BracketMI != nil {
		return nil, 0, domain.NewGroupBindingError(cg.group.ID, "adjudicated bracket MI supplied for a single-member group")
	}

	if directive.PCT != nil {
		adjustment, err := e.resolvePCT(cg, directive.PCT, index, byKey)
		if err != nil {
			return nil, 0, err
		}
		return &domain.OverlapResolution{Kind: domain.OVERLAP_PCT, PCT: adjustment}, adjustment.AdjustedMI, nil
	}

	if bracketed {
		resolution, err := e.resolveBracket(cg, directive)
		if err != nil {
			return nil, 0, err
		}
		return &domain.OverlapResolution{Kind: domain.OVERLAP_BRACKET, Bracket: resolution}, resolution.BracketMI, nil
	}

	return &domain.OverlapResolution{Kind: domain.OVERLAP_NONE}, cg.members[0].result.Rating, nil
}

// resolveBracket validates the adjudicated post-bracket MI for a
// multi-member group. Bracketing is adjudicative, not additive: the value
// is supplied by the caller and must be a defined cell in one of the
// member tables.
func (e *Engine) resolveBracket(cg *candidateGroup, directive *domain.GroupDirective) (*domain.BracketResolution, error) {
	if directive.BracketMI == nil {
		return nil, domain.NewGroupBindingError(cg.group.ID, "multi-member group requires an adjudicated bracket MI")
	}
	bracketMI := *directive.BracketMI

	for _, member := range cg.members {
		if _, err := e.repo.Cell(member.result.Ref.Chapter, member.result.Ref.Table, bracketMI); err == nil {
			return &domain.BracketResolution{BracketMI: bracketMI}, nil
		}
	}
	return nil, &domain.InvalidRatingError{
		Chapter: cg.group.Chapter,
		Table:   cg.group.Table,
		Rating:  bracketMI,
		Detail:  fmt.Sprintf("bracket MI %d is not a defined cell in any member table of group %s", bracketMI, cg.group.ID),
	}
}

// resolvePCT validates a PCT declaration against the overlap rules and
// looks up the adjusted MI in the combination table.
func (e *Engine) resolvePCT(cg *candidateGroup, pct *domain.PCTDeclaration, index map[string]*resolvedCondition, byKey map[groupKey]*candidateGroup) (*domain.PCTAdjustment, error) {
	if !pct.Fraction.Valid() {
		return nil, domain.NewGroupBindingError(cg.group.ID, fmt.Sprintf("PCT fraction %q is not one of 1/4, 1/2, 3/4", string(pct.Fraction)))
	}

	contributor, ok := index[pct.ContributorID]
	if !ok {
		return nil, domain.NewInvalidBindingError(pct.ContributorID, "PCT contributor is not a condition of this assessment")
	}

	if contributor.result.Entitlement == domain.ENTITLED {
		contributorKey := keyFor(contributor.result.Ref)
		if contributorKey == cg.key {
			// Same-group member claimed as contributor: bracket candidate
			// and PCT candidate over the same condition.
			return nil, domain.NewAmbiguousOverlapError(pct.ContributorID, cg.group.ID)
		}
		if own := byKey[contributorKey]; own != nil && len(own.members) > 1 {
			// The contributor's MI is already consumed by a bracket
			// resolution in its own group.
			return nil, domain.NewAmbiguousOverlapError(pct.ContributorID, own.group.ID)
		}
		if !cg.key.psych && contributor.result.Ref.Chapter == cg.group.Chapter {
			return nil, domain.NewInvalidBindingError(pct.ContributorID, "entitled contributor must be cross-chapter for a non-psychiatric group")
		}
	}

	if cg.key.psych && contributor.result.Ref.Chapter == domain.PsychiatricChapter {
		return nil, domain.NewInvalidBindingError(pct.ContributorID, "psychiatric groups accept PCT only from conditions outside Chapter 21")
	}

	baseMI := cg.members[0].result.Rating
	adjusted, err := e.repo.Combine(baseMI, pct.Fraction)
	if err != nil {
		return nil, fmt.Errorf("combining group %s base MI: %w", cg.group.ID, err)
	}

	return &domain.PCTAdjustment{
		ContributorID: pct.ContributorID,
		Fraction:      pct.Fraction,
		BaseMI:        baseMI,
		AdjustedMI:    adjusted,
	}, nil
}
