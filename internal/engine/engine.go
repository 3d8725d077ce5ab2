package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

// Engine computes disability assessments over evidence-bound claims.
// Each computation is a pure synchronous function of its input and the
// immutable rule table repository: no I/O, no clocks, no randomness, so
// identical requests always produce byte-identical results and traces.
type Engine struct {
	logger *logrus.Logger
	repo   domain.TableRepository
}

// New creates a rating engine over a loaded rule table repository
func New(repo domain.TableRepository, logger *logrus.Logger) *Engine {
	return &Engine{
		logger: logger,
		repo:   repo,
	}
}

// Assess runs one assessment through the full pipeline: MI resolution,
// overlap resolution, QoL conversion, composition and trace formatting.
// Any step rejects the whole assessment with a typed error; partial
// results are never returned.
func (e *Engine) Assess(req *domain.AssessmentRequest) (*domain.AssessmentResult, error) {
	if req == nil || len(req.Conditions) == 0 {
		return nil, &domain.InvalidBindingError{Reason: "assessment request names no conditions"}
	}

	e.logger.WithFields(logrus.Fields{
		"conditions": len(req.Conditions),
		"directives": len(req.Groups),
	}).Debug("Starting assessment computation")

	miResults, index, err := e.resolveMI(req)
	if err != nil {
		return nil, err
	}

	groups, err := e.resolveOverlap(req, index)
	if err != nil {
		return nil, err
	}

	if err := e.resolveQoL(groups); err != nil {
		return nil, err
	}

	result, err := e.compose(req, miResults, groups)
	if err != nil {
		return nil, err
	}

	result.Trace = FormatTrace(e.repo.Title(), result)

	e.logger.WithFields(logrus.Fields{
		"conditions": len(result.MIResults),
		"groups":     len(result.Groups),
		"final":      result.Final,
		"clamped":    result.Clamped,
	}).Info("Assessment computation completed")

	return result, nil
}
