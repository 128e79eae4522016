package buildconfig

import (
	"fmt"
	"strings"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// ParseError reports the first syntax error in a configuration source.
type ParseError struct {
	// Offset is the 0-based byte offset into the source.
	Offset int
	// Line and Column are 1-based; Column counts bytes.
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Unwrap lets errors.Is match lhcerrors.ErrParse.
func (e *ParseError) Unwrap() error {
	return lhcerrors.ErrParse
}

// CycleError reports a property that transitively depends on itself.
// Path starts and ends with the same property, e.g. a, b, a.
type CycleError struct {
	Path []Property
}

func (e *CycleError) Error() string {
	return "cycle detected among properties: " + joinProperties(e.Path, " -> ")
}

// Unwrap lets errors.Is match lhcerrors.ErrCycle.
func (e *CycleError) Unwrap() error {
	return lhcerrors.ErrCycle
}

// ConditionalAssignmentError reports satisfied assignments to the same
// property where none overrides all the others.
type ConditionalAssignmentError struct {
	Element Element
	// ConflictsWith lists the properties governing the competing assignments, sorted.
	// It is empty when the competitors are unconditional.
	ConflictsWith []Property
}

func (e *ConditionalAssignmentError) Error() string {
	head := string(e.Element.Property) + conditionsString(e.Element.Conditions)
	if len(e.ConflictsWith) == 0 {
		return fmt.Sprintf("property assignment %s conflicts with another unconditional assignment (line %d)",
			head, e.Element.Line)
	}
	return fmt.Sprintf("property assignment %s could conflict with assignments conditioned on %s (line %d)",
		head, joinProperties(e.ConflictsWith, ", "), e.Element.Line)
}

// Unwrap lets errors.Is match lhcerrors.ErrConditionalAssignment.
func (e *ConditionalAssignmentError) Unwrap() error {
	return lhcerrors.ErrConditionalAssignment
}

// NoInheritedValueError reports $(inherited) used without a parent scope.
type NoInheritedValueError struct {
	Element Element
}

func (e *NoInheritedValueError) Error() string {
	return fmt.Sprintf("no inherited value for %s at line %d", e.Element.Property, e.Element.Line)
}

// Unwrap lets errors.Is match lhcerrors.ErrNoInheritedValue.
func (e *NoInheritedValueError) Unwrap() error {
	return lhcerrors.ErrNoInheritedValue
}

// NoDefaultValueError reports a demanded property that has no value.
type NoDefaultValueError struct {
	Property Property
}

func (e *NoDefaultValueError) Error() string {
	return fmt.Sprintf("no default value provided for %s", e.Property)
}

// Unwrap lets errors.Is match lhcerrors.ErrNoDefaultValue.
func (e *NoDefaultValueError) Unwrap() error {
	return lhcerrors.ErrNoDefaultValue
}

func joinProperties(props []Property, sep string) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = string(p)
	}
	return strings.Join(parts, sep)
}
