package domain

// TableRepository is the read-only rule table index shared by every
// assessment computation. Implementations are immutable after load and
// safe for unsynchronized concurrent reads.
type TableRepository interface {
	Version() string
	Title() string
	Chapters() []Chapter
	Chapter(chapter int) (*Chapter, error)
	Table(chapter, table int) (*RuleTable, error)
	Cell(chapter, table, rating int) (*RatingCell, error)
	Combine(base int, fraction PCTFraction) (int, error)
	QoLAddend(effectiveMI int, level QoLLevel) (*QoLMatch, error)
}

// RatingEngine computes one assessment from evidence-bound input. The
// computation is pure: identical requests yield byte-identical results.
type RatingEngine interface {
	Assess(req *AssessmentRequest) (*AssessmentResult, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	Validate() error
	Reload() error
}
