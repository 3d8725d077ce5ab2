package engine

import (
	"fmt"
	"strings"

	"github.com/vac-rating-engine/internal/domain"
)

// FormatTrace renders the ordered, citation-exact audit trace for human
// review. It is a pure function of the assessment result: tables are
// cited by chapter and official title, descriptor text is reproduced
// verbatim, each group states its overlap resolution, and the final
// arithmetic line shows every term. Identical results yield identical
// traces.
func FormatTrace(rulesetTitle string, result *domain.AssessmentResult) []string {
	trace := make([]string, 0, 2+2*len(result.MIResults)+2*len(result.Groups))

	trace = append(trace, fmt.Sprintf("Ruleset: %s, version %s", rulesetTitle, result.RulesVersion))

	for _, mi := range result.MIResults {
		trace = append(trace, formatMIDecision(mi))
		if mi.Rationale != "" {
			trace = append(trace, fmt.Sprintf("Condition %s rationale: %s", mi.ConditionID, mi.Rationale))
		}
	}

	for _, group := range result.Groups {
		trace = append(trace, formatResolution(group))
		trace = append(trace, formatQoL(group))
	}

	trace = append(trace, formatArithmetic(result))
	for _, warning := range result.Warnings {
		trace = append(trace, warning)
	}
	trace = append(trace, fmt.Sprintf("Final disability assessment: %d%%", result.Final))

	return trace
}

func formatMIDecision(mi domain.MIResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Condition %s (%s), %s: Chapter %d, %s, Table %d.%d, %s",
		mi.ConditionID, mi.ConditionName, mi.Entitlement.String(),
		mi.Ref.Chapter, mi.ChapterTitle, mi.Ref.Chapter, mi.Ref.Table, mi.TableTitle)
	if mi.Ref.Segment != "" {
		fmt.Fprintf(&b, ", segment %s", mi.Ref.Segment)
	}
	fmt.Fprintf(&b, "; rating %d: %q", mi.Rating, mi.Descriptor)
	return b.String()
}

func formatResolution(group domain.GroupResult) string {
	members := strings.Join(group.Group.MemberIDs, ", ")

	switch group.Resolution.Kind {
	case domain.OVERLAP_BRACKET:
		citation := fmt.Sprintf("Chapter %d, %s", group.Group.Chapter, group.Group.ChapterTitle)
		if !group.Group.Psychiatric {
			citation = fmt.Sprintf("%s, Table %d.%d, %s", citation, group.Group.Chapter, group.Group.Table, group.Group.TableTitle)
		}
		return fmt.Sprintf("Group %s (%s): bracketed within %s; adjudicated MI %d",
			group.Group.ID, members, citation, group.Resolution.Bracket.BracketMI)
	case domain.OVERLAP_PCT:
		pct := group.Resolution.PCT
		return fmt.Sprintf("Group %s (%s): PCT adjustment from contributor %s at %s; combination of base MI %d yields adjusted MI %d",
			group.Group.ID, members, pct.ContributorID, pct.Fraction.String(), pct.BaseMI, pct.AdjustedMI)
	default:
		return fmt.Sprintf("Group %s (%s): single condition, effective MI %d",
			group.Group.ID, members, group.EffectiveMI)
	}
}

func formatQoL(group domain.GroupResult) string {
	return fmt.Sprintf("Group %s quality of life: level %d, band %d-%d, addend +%d; criteria: %s",
		group.Group.ID, int(group.QoL.Level), group.QoL.BandMin, group.QoL.BandMax,
		group.QoL.Addend, strings.Join(group.QoL.MatchedCriteria, "; "))
}

func formatArithmetic(result *domain.AssessmentResult) string {
	terms := make([]string, 0, len(result.Groups))
	for _, group := range result.Groups {
		terms = append(terms, fmt.Sprintf("(%d + %d)", group.EffectiveMI, group.QoL.Addend))
	}

	line := fmt.Sprintf("Assessment arithmetic: %s = %d", strings.Join(terms, " + "), result.Sum)
	if !result.Entitlement.IsWhole() {
		line = fmt.Sprintf("%s; entitlement fraction %s; round(%d x %s) = %d",
			line, result.Entitlement.String(), result.Sum, result.Entitlement.String(), result.Computed)
	}
	return line
}
