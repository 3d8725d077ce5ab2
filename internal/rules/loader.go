package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

//go:embed tod2019.json
var embeddedRuleSet []byte

// Parse decodes a rule source document. It does not validate; validation
// happens when the repository is built so that all defects are reported
// against the indexed structure.
func Parse(data []byte) (*domain.RuleSet, error) {
	var rs domain.RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("invalid rule source document: %w", err)
	}
	return &rs, nil
}

// Load builds a repository from a rule source file. A malformed or
// incomplete source fails outright; there is no partial loading.
func Load(path string, logger *logrus.Logger) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule source %s: %w", path, err)
	}

	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule source %s: %w", path, err)
	}

	logger.WithField("path", path).Info("Loaded rule source file")
	return NewRepository(rs, logger)
}

// LoadDefault builds a repository from the embedded 2019 ruleset.
func LoadDefault(logger *logrus.Logger) (*Repository, error) {
	rs, err := Parse(embeddedRuleSet)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded ruleset: %w", err)
	}
	return NewRepository(rs, logger)
}
