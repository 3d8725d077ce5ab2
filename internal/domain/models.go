package domain

import (
	"fmt"
)

// Core Enums and Types

// EntitlementStatus represents the pension entitlement status of a condition
type EntitlementStatus string

const (
	ENTITLED     EntitlementStatus = "ENTITLED"
	NON_ENTITLED EntitlementStatus = "NON_ENTITLED"
)

// Valid reports whether the entitlement status is a known value
func (s EntitlementStatus) Valid() bool {
	return s == ENTITLED || s == NON_ENTITLED
}

// String returns the string representation
func (s EntitlementStatus) String() string {
	return string(s)
}

// QoLLevel represents one of the three ordered quality-of-life levels
type QoLLevel int

const (
	QOL_LEVEL_ONE   QoLLevel = 1
	QOL_LEVEL_TWO   QoLLevel = 2
	QOL_LEVEL_THREE QoLLevel = 3
)

// Valid reports whether the level is one of the three defined levels
func (l QoLLevel) Valid() bool {
	return l >= QOL_LEVEL_ONE && l <= QOL_LEVEL_THREE
}

// PCTFraction represents a proportional cross-table contribution fraction.
// Only quarter, half and three-quarters are defined by the combination table.
type PCTFraction string

const (
	QUARTER        PCTFraction = "1/4"
	HALF           PCTFraction = "1/2"
	THREE_QUARTERS PCTFraction = "3/4"
)

// Valid reports whether the fraction is one of the three permitted values
func (f PCTFraction) Valid() bool {
	return f == QUARTER || f == HALF || f == THREE_QUARTERS
}

// String returns the string representation
func (f PCTFraction) String() string {
	return string(f)
}

// OverlapKind tags the overlap resolution applied to a bracket group.
// A group carries exactly one kind; bracket and PCT never combine.
type OverlapKind string

const (
	OVERLAP_NONE    OverlapKind = "NONE"
	OVERLAP_BRACKET OverlapKind = "BRACKET"
	OVERLAP_PCT     OverlapKind = "PCT"
)

// PsychiatricChapter is the chapter whose entitled conditions always
// bracket together regardless of table assignment.
const PsychiatricChapter = 21

// Request Models

// TableRef identifies a rating table cell's home: chapter, table and the
// adjudicative segment within the table (free-form, may be empty).
type TableRef struct {
	Chapter int    `json:"chapter"`
	Table   int    `json:"table"`
	Segment string `json:"segment,omitempty"`
}

// Condition represents a claimed condition as bound by the external
// evidence binder. The evidence snapshot is opaque to the engine.
type Condition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Ref         TableRef          `json:"table_ref"`
	Entitlement EntitlementStatus `json:"entitlement"`
	Evidence    string            `json:"evidence,omitempty"`
}

// ConditionBinding pairs a condition with the rating cell chosen for it
// by the external binder, plus a pass-through rationale.
type ConditionBinding struct {
	Condition Condition `json:"condition"`
	Rating    int       `json:"rating"`
	Rationale string    `json:"rationale,omitempty"`
}

// PCTDeclaration names a contributing condition and the stated fraction
// for a proportional cross-table contribution adjustment.
type PCTDeclaration struct {
	ContributorID string      `json:"contributor_id"`
	Fraction      PCTFraction `json:"fraction"`
}

// GroupDirective carries the per-group inputs the engine cannot derive:
// the QoL level, the adjudicated bracket MI for multi-member groups, and
// an optional PCT declaration. The group is addressed through any entitled
// member condition.
type GroupDirective struct {
	AnchorConditionID string          `json:"anchor_condition_id"`
	QoLLevel          QoLLevel        `json:"qol_level"`
	BracketMI         *int            `json:"bracket_mi,omitempty"`
	PCT               *PCTDeclaration `json:"pct,omitempty"`
}

// Fraction is a rational partial-entitlement fraction, at most 1.
type Fraction struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Valid reports whether the fraction is a well-formed value in [0, 1]
func (f Fraction) Valid() bool {
	return f.Denominator > 0 && f.Numerator >= 0 && f.Numerator <= f.Denominator
}

// IsWhole reports whether the fraction equals 1
func (f Fraction) IsWhole() bool {
	return f.Numerator == f.Denominator
}

// String renders the fraction as "n/d"
func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// WholeEntitlement is the fraction applied when the caller supplies none.
func WholeEntitlement() Fraction {
	return Fraction{Numerator: 1, Denominator: 1}
}

// AssessmentRequest is the complete, evidence-bound input for one
// assessment computation. Conditions are ordered; output ordering
// follows input ordering.
type AssessmentRequest struct {
	Conditions  []ConditionBinding `json:"conditions"`
	Groups      []GroupDirective   `json:"groups"`
	Entitlement *Fraction          `json:"entitlement,omitempty"`
}

// Result Models

// MIResult is a validated per-condition medical impairment finding.
// Descriptor text is carried verbatim from the rating cell.
type MIResult struct {
	ConditionID   string            `json:"condition_id"`
	ConditionName string            `json:"condition_name"`
	Ref           TableRef          `json:"table_ref"`
	ChapterTitle  string            `json:"chapter_title"`
	TableTitle    string            `json:"table_title"`
	Rating        int               `json:"rating"`
	Descriptor    string            `json:"descriptor"`
	Rationale     string            `json:"rationale,omitempty"`
	Entitlement   EntitlementStatus `json:"entitlement"`
}

// BracketGroup is a set of entitled conditions that resolve into a single
// MI/QoL pair. Psychiatric groups span tables; others share a
// (chapter, table, segment) key.
type BracketGroup struct {
	ID           string   `json:"id"`
	Chapter      int      `json:"chapter"`
	ChapterTitle string   `json:"chapter_title"`
	Table        int      `json:"table,omitempty"`
	TableTitle   string   `json:"table_title,omitempty"`
	Segment      string   `json:"segment,omitempty"`
	MemberIDs    []string `json:"member_ids"`
	Psychiatric  bool     `json:"psychiatric"`
}

// BracketResolution records an adjudicated post-bracket MI for a
// multi-member group. The value is supplied, never computed.
type BracketResolution struct {
	BracketMI int `json:"bracket_mi"`
}

// PCTAdjustment records a combination-table adjustment of a group's MI by
// a contributing condition at a stated fraction.
type PCTAdjustment struct {
	ContributorID string      `json:"contributor_id"`
	Fraction      PCTFraction `json:"fraction"`
	BaseMI        int         `json:"base_mi"`
	AdjustedMI    int         `json:"adjusted_mi"`
}

// OverlapResolution is the tagged variant for a group's overlap outcome:
// exactly one of Bracket or PCT is set, matching Kind, or neither.
type OverlapResolution struct {
	Kind    OverlapKind        `json:"kind"`
	Bracket *BracketResolution `json:"bracket,omitempty"`
	PCT     *PCTAdjustment     `json:"pct,omitempty"`
}

// QoLResult is the quality-of-life outcome for one group.
type QoLResult struct {
	Level           QoLLevel `json:"level"`
	BandMin         int      `json:"band_min"`
	BandMax         int      `json:"band_max"`
	MatchedCriteria []string `json:"matched_criteria"`
	Addend          int      `json:"addend"`
}

// GroupResult merges a group's overlap resolution, effective MI and QoL.
type GroupResult struct {
	Group       BracketGroup      `json:"group"`
	Resolution  OverlapResolution `json:"resolution"`
	EffectiveMI int               `json:"effective_mi"`
	QoL         QoLResult         `json:"qol"`
}

// AssessmentResult is the final output of one assessment computation plus
// every intermediate decision needed for the audit trace.
type AssessmentResult struct {
	RulesVersion string        `json:"rules_version"`
	MIResults    []MIResult    `json:"mi_results"`
	Groups       []GroupResult `json:"groups"`
	Sum          int           `json:"sum"`
	Entitlement  Fraction      `json:"entitlement"`
	Computed     int           `json:"computed"`
	Final        int           `json:"final"`
	Clamped      bool          `json:"clamped"`
	Warnings     []string      `json:"warnings,omitempty"`
	Trace        []string      `json:"trace"`
}
