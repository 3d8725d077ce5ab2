package engine

import (
	"errors"
	"fmt"

	"github.com/vac-rating-engine/internal/domain"
)

// resolveQoL converts each group's effective MI and supplied QoL level
// into an addend via the fixed conversion table. The PCT-adjusted MI
// drives the band lookup; the QoL addend itself is never scaled by a PCT
// fraction. An effective MI outside every band is a rule-table or binding
// defect and rejects the assessment.
func (e *Engine) resolveQoL(groups []domain.GroupResult) error {
	for i := range groups {
		group := &groups[i]

		match, err := e.repo.QoLAddend(group.EffectiveMI, group.QoL.Level)
		if err != nil {
			var bandErr *domain.OutOfBandError
			if errors.As(err, &bandErr) {
				return domain.NewOutOfBandError(group.Group.ID, group.EffectiveMI)
			}
			return fmt.Errorf("converting QoL for group %s: %w", group.Group.ID, err)
		}

		group.QoL = domain.QoLResult{
			Level:           match.Level,
			BandMin:         match.Band.Min,
			BandMax:         match.Band.Max,
			MatchedCriteria: match.Criteria,
			Addend:          match.Addend,
		}
	}
	return nil
}
