package domain

import (
	"fmt"
)

// Error codes for the assessment failure taxonomy
const (
	ErrUnknownTable     = "UNKNOWN_TABLE"
	ErrInvalidRating    = "INVALID_RATING"
	ErrInvalidBinding   = "INVALID_BINDING"
	ErrAmbiguousOverlap = "AMBIGUOUS_OVERLAP"
	ErrOutOfBand        = "OUT_OF_BAND"
)

// WarnCapClamped marks the non-fatal payable-cap audit record. Clamping
// never aborts an assessment; it is recorded, not dropped.
const WarnCapClamped = "CAP_CLAMPED"

// UnknownTableError indicates a lookup for a chapter/table pair the rule
// source does not define. Fatal for the assessment.
type UnknownTableError struct {
	Chapter int `json:"chapter"`
	Table   int `json:"table"`
}

// Error implements the error interface
func (e *UnknownTableError) Error() string {
	if e.Table == 0 {
		return fmt.Sprintf("%s: no chapter %d in rule source", ErrUnknownTable, e.Chapter)
	}
	return fmt.Sprintf("%s: no table %d.%d in rule source", ErrUnknownTable, e.Chapter, e.Table)
}

// InvalidRatingError indicates a rating value that is not a defined cell
// of the referenced table (including combination-table rows). The engine
// never interpolates between cells.
type InvalidRatingError struct {
	Chapter int    `json:"chapter"`
	Table   int    `json:"table"`
	Rating  int    `json:"rating"`
	Detail  string `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *InvalidRatingError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRating, e.Detail)
	}
	return fmt.Sprintf("%s: rating %d is not a defined cell of table %d.%d", ErrInvalidRating, e.Rating, e.Chapter, e.Table)
}

// InvalidBindingError indicates an entitlement/role mismatch or a
// structurally inconsistent binding from the upstream evidence binder.
type InvalidBindingError struct {
	ConditionID string `json:"condition_id,omitempty"`
	GroupID     string `json:"group_id,omitempty"`
	Reason      string `json:"reason"`
}

// Error implements the error interface
func (e *InvalidBindingError) Error() string {
	switch {
	case e.ConditionID != "":
		return fmt.Sprintf("%s: condition %s: %s", ErrInvalidBinding, e.ConditionID, e.Reason)
	case e.GroupID != "":
		return fmt.Sprintf("%s: group %s: %s", ErrInvalidBinding, e.GroupID, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", ErrInvalidBinding, e.Reason)
	}
}

// AmbiguousOverlapError indicates a condition claimed for both same-table
// bracketing and PCT contribution. The conflict is surfaced, never
// resolved by guessing.
type AmbiguousOverlapError struct {
	ConditionID string `json:"condition_id"`
	GroupID     string `json:"group_id"`
}

// Error implements the error interface
func (e *AmbiguousOverlapError) Error() string {
	return fmt.Sprintf("%s: condition %s is claimed for both bracketing and PCT contribution in group %s", ErrAmbiguousOverlap, e.ConditionID, e.GroupID)
}

// OutOfBandError indicates an effective MI outside every defined QoL
// band. This signals a rule-table or binding defect upstream.
type OutOfBandError struct {
	GroupID     string `json:"group_id"`
	EffectiveMI int    `json:"effective_mi"`
}

// Error implements the error interface
func (e *OutOfBandError) Error() string {
	return fmt.Sprintf("%s: effective MI %d for group %s falls outside all defined QoL bands", ErrOutOfBand, e.EffectiveMI, e.GroupID)
}

// NewUnknownTableError creates an UnknownTableError
func NewUnknownTableError(chapter, table int) *UnknownTableError {
	return &UnknownTableError{Chapter: chapter, Table: table}
}

// NewInvalidRatingError creates an InvalidRatingError for a table cell lookup
func NewInvalidRatingError(chapter, table, rating int) *InvalidRatingError {
	return &InvalidRatingError{Chapter: chapter, Table: table, Rating: rating}
}

// NewInvalidBindingError creates a condition-scoped InvalidBindingError
func NewInvalidBindingError(conditionID, reason string) *InvalidBindingError {
	return &InvalidBindingError{ConditionID: conditionID, Reason: reason}
}

// NewGroupBindingError creates a group-scoped InvalidBindingError
func NewGroupBindingError(groupID, reason string) *InvalidBindingError {
	return &InvalidBindingError{GroupID: groupID, Reason: reason}
}

// NewAmbiguousOverlapError creates an AmbiguousOverlapError
func NewAmbiguousOverlapError(conditionID, groupID string) *AmbiguousOverlapError {
	return &AmbiguousOverlapError{ConditionID: conditionID, GroupID: groupID}
}

// NewOutOfBandError creates an OutOfBandError
func NewOutOfBandError(groupID string, effectiveMI int) *OutOfBandError {
	return &OutOfBandError{GroupID: groupID, EffectiveMI: effectiveMI}
}
