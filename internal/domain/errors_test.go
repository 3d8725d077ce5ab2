package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUnknownTableError(t *testing.T) {
	err := NewUnknownTableError(17, 4)

	if !strings.Contains(err.Error(), ErrUnknownTable) {
		t.Errorf("Expected error code %s in message, got %s", ErrUnknownTable, err.Error())
	}
	if !strings.Contains(err.Error(), "17.4") {
		t.Errorf("Expected table citation in message, got %s", err.Error())
	}
}

func TestUnknownTableError_ChapterOnly(t *testing.T) {
	err := NewUnknownTableError(17, 0)

	if !strings.Contains(err.Error(), "no chapter 17") {
		t.Errorf("Expected chapter-level message, got %s", err.Error())
	}
	if strings.Contains(err.Error(), "17.0") {
		t.Errorf("Expected no table citation for a chapter miss, got %s", err.Error())
	}
}

func TestInvalidRatingError(t *testing.T) {
	err := NewInvalidRatingError(17, 1, 18)

	if !strings.Contains(err.Error(), ErrInvalidRating) {
		t.Errorf("Expected error code %s in message, got %s", ErrInvalidRating, err.Error())
	}
	if !strings.Contains(err.Error(), "18") {
		t.Errorf("Expected rejected rating in message, got %s", err.Error())
	}

	withDetail := &InvalidRatingError{Detail: "no combination row for base 21"}
	if !strings.Contains(withDetail.Error(), "no combination row") {
		t.Errorf("Expected detail in message, got %s", withDetail.Error())
	}
}

func TestInvalidBindingErrorScoping(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidBindingError
		expected string
	}{
		{"Condition scoped", NewInvalidBindingError("C-1", "duplicate condition id"), "condition C-1"},
		{"Group scoped", NewGroupBindingError("G1", "no QoL level supplied"), "group G1"},
		{"Unscoped", &InvalidBindingError{Reason: "empty request"}, "empty request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.expected) {
				t.Errorf("Expected %q in message, got %s", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestAmbiguousOverlapError(t *testing.T) {
	err := NewAmbiguousOverlapError("C-2", "G1")

	if !strings.Contains(err.Error(), ErrAmbiguousOverlap) {
		t.Errorf("Expected error code %s in message, got %s", ErrAmbiguousOverlap, err.Error())
	}
	if !strings.Contains(err.Error(), "C-2") || !strings.Contains(err.Error(), "G1") {
		t.Errorf("Expected implicated condition and group in message, got %s", err.Error())
	}
}

func TestOutOfBandError(t *testing.T) {
	err := NewOutOfBandError("G1", 140)

	if !strings.Contains(err.Error(), ErrOutOfBand) {
		t.Errorf("Expected error code %s in message, got %s", ErrOutOfBand, err.Error())
	}
	if !strings.Contains(err.Error(), "140") {
		t.Errorf("Expected effective MI in message, got %s", err.Error())
	}
}

func TestErrorsUnwrapWithAs(t *testing.T) {
	wrapped := fmt.Errorf("resolving bindings: %w", NewInvalidRatingError(21, 1, 35))

	var ratingErr *InvalidRatingError
	if !errors.As(wrapped, &ratingErr) {
		t.Fatal("Expected errors.As to recover *InvalidRatingError through wrapping")
	}
	if ratingErr.Rating != 35 {
		t.Errorf("Expected rating 35, got %d", ratingErr.Rating)
	}
}
