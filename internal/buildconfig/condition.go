package buildconfig

import (
	"cmp"
	"slices"
	"strings"
)

// ConditionKind distinguishes the three condition forms.
type ConditionKind int

const (
	// KindTruthy is written [p] and holds when p is defined and not falsey.
	KindTruthy ConditionKind = iota
	// KindFalsey is written [!p] and holds when p is undefined or falsey.
	KindFalsey
	// KindEquals is written [p=v] and holds when p is defined and equal to v.
	KindEquals
)

// falseyValues are the raw strings treated as false by truthiness tests.
//
//nolint:gochecknoglobals // fixed lookup table
var falseyValues = map[string]bool{
	"NO":    true,
	"false": true,
	"0":     true,
}

// IsFalsey reports whether a setting counts as false. Undefined settings are falsey.
func IsFalsey(s Setting) bool {
	v, ok := s.Get()
	return !ok || falseyValues[v]
}

// Condition restricts when an assignment applies.
type Condition struct {
	Kind     ConditionKind
	Property Property
	// Value is only meaningful for KindEquals.
	Value MatchValue
}

// Truthy returns the condition [p].
func Truthy(p Property) Condition {
	return Condition{Kind: KindTruthy, Property: p}
}

// Falsey returns the condition [!p].
func Falsey(p Property) Condition {
	return Condition{Kind: KindFalsey, Property: p}
}

// Equals returns the condition [p=v].
func Equals(p Property, v MatchValue) Condition {
	return Condition{Kind: KindEquals, Property: p, Value: v}
}

// String renders the condition in source form.
func (c Condition) String() string {
	switch c.Kind {
	case KindFalsey:
		return "[!" + string(c.Property) + "]"
	case KindEquals:
		return "[" + string(c.Property) + "=" + string(c.Value) + "]"
	default:
		return "[" + string(c.Property) + "]"
	}
}

// Satisfied reports whether the condition holds for the given setting of its property.
func (c Condition) Satisfied(s Setting) bool {
	switch c.Kind {
	case KindFalsey:
		return IsFalsey(s)
	case KindEquals:
		v, ok := s.Get()
		return ok && v == string(c.Value)
	default:
		return !IsFalsey(s)
	}
}

// Excludes reports whether c and o can never hold at the same time.
// Conditions on different properties never exclude each other.
func (c Condition) Excludes(o Condition) bool {
	if c.Property != o.Property {
		return false
	}
	if c.Kind > o.Kind {
		c, o = o, c
	}
	switch {
	case c.Kind == KindTruthy && o.Kind == KindFalsey:
		return true
	case c.Kind == KindTruthy && o.Kind == KindEquals:
		return falseyValues[string(o.Value)]
	case c.Kind == KindFalsey && o.Kind == KindEquals:
		return !falseyValues[string(o.Value)]
	case c.Kind == KindEquals && o.Kind == KindEquals:
		return c.Value != o.Value
	default:
		return false
	}
}

func compareConditions(a, b Condition) int {
	return cmp.Or(
		cmp.Compare(a.Property, b.Property),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Value, b.Value),
	)
}

// canonicalConditions sorts and deduplicates a condition list.
func canonicalConditions(conds []Condition) []Condition {
	out := slices.Clone(conds)
	slices.SortFunc(out, compareConditions)
	return slices.Compact(out)
}

// firstContradiction returns the first pair of mutually exclusive conditions, if any.
func firstContradiction(conds []Condition) (Condition, Condition, bool) {
	for i := range conds {
		for j := i + 1; j < len(conds); j++ {
			if conds[i].Excludes(conds[j]) {
				return conds[i], conds[j], true
			}
		}
	}
	return Condition{}, Condition{}, false
}

func conditionsString(conds []Condition) string {
	var b strings.Builder
	for _, c := range conds {
		b.WriteString(c.String())
	}
	return b.String()
}
