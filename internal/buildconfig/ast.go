// Package buildconfig implements the lhc configuration language.
//
// A configuration file is a list of property assignments. Assignments may
// interpolate other properties with $(name) and may carry conditions that
// restrict when they apply:
//
//	// comments start with two slashes
//	tag_prefix = v
//	tag_prefix[train=ios] = ios/v
//	flags[!release] = $(inherited) -DDEBUG
//	greeting = "hi " $(name)
//
// Parsing produces an immutable Configuration. Evaluating it against an
// initial set of Defines resolves every property the file mentions, in the
// order properties are demanded by references and conditions rather than in
// source order.
package buildconfig

import (
	"slices"
	"strings"
)

// Property names a configuration variable. Identity is the raw identifier,
// and properties order lexicographically.
type Property string

// Inherited is the sentinel reference that substitutes the parent scope's
// value for the property being assigned.
const Inherited Property = "inherited"

// String returns the raw identifier.
func (p Property) String() string {
	return string(p)
}

// IsValidProperty reports whether s is a legal property identifier:
// a letter or underscore followed by letters, digits, or underscores.
func IsValidProperty(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// MatchValue is the right-hand side of an equality condition.
type MatchValue string

// Item is one piece of an interpolated value: either a literal fragment or a
// reference to another property.
type Item struct {
	Literal string
	Ref     Property
}

// IsReference reports whether the item is a $(name) reference.
func (i Item) IsReference() bool {
	return i.Ref != ""
}

// Value is the right-hand side of an assignment.
type Value struct {
	Items []Item
}

// References lists the properties referenced by the value, in order.
func (v Value) References() []Property {
	var refs []Property
	for _, item := range v.Items {
		if item.IsReference() {
			refs = append(refs, item.Ref)
		}
	}
	return refs
}

// String renders the value back in source form.
func (v Value) String() string {
	var b strings.Builder
	for _, item := range v.Items {
		if item.IsReference() {
			b.WriteString("$(")
			b.WriteString(string(item.Ref))
			b.WriteString(")")
			continue
		}
		b.WriteString(item.Literal)
	}
	return b.String()
}

// Element is a single assignment statement.
type Element struct {
	Property Property
	// Conditions is deduplicated and sorted; treat it as a set.
	Conditions []Condition
	Value      Value
	// Line is the 1-based source line, kept for diagnostics.
	Line int
}

// String renders the element in source form, e.g. "p[a][!b] = x".
func (e Element) String() string {
	var b strings.Builder
	b.WriteString(string(e.Property))
	b.WriteString(conditionsString(e.Conditions))
	b.WriteString(" = ")
	b.WriteString(e.Value.String())
	return b.String()
}

// Governing returns the sorted, unique properties named by the element's conditions.
func (e Element) Governing() []Property {
	props := make([]Property, 0, len(e.Conditions))
	for _, c := range e.Conditions {
		props = append(props, c.Property)
	}
	slices.Sort(props)
	return slices.Compact(props)
}

// overrides reports whether e's condition set strictly contains other's.
func (e Element) overrides(other Element) bool {
	if len(e.Conditions) <= len(other.Conditions) {
		return false
	}
	for _, c := range other.Conditions {
		if !slices.Contains(e.Conditions, c) {
			return false
		}
	}
	return true
}

// Configuration is a parsed configuration file. It is immutable and safe to
// evaluate concurrently.
type Configuration struct {
	elements   []Element
	byProperty map[Property][]int
	vocabulary []Property
}

// NewConfiguration builds a Configuration from elements in source order.
func NewConfiguration(elements []Element) *Configuration {
	c := &Configuration{
		elements:   slices.Clone(elements),
		byProperty: make(map[Property][]int),
	}

	seen := make(map[Property]bool)
	note := func(p Property) {
		if p == Inherited || seen[p] {
			return
		}
		seen[p] = true
		c.vocabulary = append(c.vocabulary, p)
	}

	for i, el := range c.elements {
		c.byProperty[el.Property] = append(c.byProperty[el.Property], i)
		note(el.Property)
		for _, cond := range el.Conditions {
			note(cond.Property)
		}
		for _, ref := range el.Value.References() {
			note(ref)
		}
	}
	slices.Sort(c.vocabulary)

	return c
}

// Elements returns the assignments in source order.
func (c *Configuration) Elements() []Element {
	return slices.Clone(c.elements)
}

// ElementsFor returns the assignments targeting p, in source order.
func (c *Configuration) ElementsFor(p Property) []Element {
	idx := c.byProperty[p]
	out := make([]Element, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.elements[i])
	}
	return out
}

// Properties returns every distinct property mentioned by the configuration,
// as an assignment target, in a condition, or in a reference, sorted.
// The inherited sentinel is not included.
func (c *Configuration) Properties() []Property {
	return slices.Clone(c.vocabulary)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlnum(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
