package buildconfig

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ParentScope supplies the value $(inherited) expands to for a property.
// Returning an undefined setting substitutes the empty string.
type ParentScope func(p Property) Setting

// ParentDefines adapts an already evaluated Defines into a ParentScope.
func ParentDefines(d Defines) ParentScope {
	return func(p Property) Setting {
		return d[p]
	}
}

// EvalOption configures a single evaluation.
type EvalOption func(*evaluator)

// WithParent enables $(inherited) against the given scope.
func WithParent(parent ParentScope) EvalOption {
	return func(e *evaluator) {
		e.parent = parent
	}
}

// WithLogger routes resolution tracing to logger at debug level.
func WithLogger(logger zerolog.Logger) EvalOption {
	return func(e *evaluator) {
		e.logger = logger
	}
}

// WithRequired fails evaluation with a NoDefaultValueError when any of the
// listed properties ends up absent or undefined.
func WithRequired(props ...Property) EvalOption {
	return func(e *evaluator) {
		e.required = append(e.required, props...)
	}
}

type evaluator struct {
	cfg      *Configuration
	defines  Defines
	parent   ParentScope
	logger   zerolog.Logger
	required []Property

	// stack holds the properties currently being resolved, outermost first.
	stack      []Property
	inProgress map[Property]bool
}

// Eval resolves every property the configuration mentions, starting from a
// copy of initial. Entries already present in initial, defined or not, are
// never overridden by assignments. The returned Defines contains initial
// plus every mentioned property, each either defined or undefined.
//
// Evaluation is deterministic: properties are resolved in sorted order, and
// each one is resolved at most once.
func (c *Configuration) Eval(initial Defines, opts ...EvalOption) (Defines, error) {
	e := &evaluator{
		cfg:        c,
		defines:    initial.Clone(),
		logger:     zerolog.Nop(),
		inProgress: make(map[Property]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, p := range c.vocabulary {
		if _, err := e.resolve(p); err != nil {
			return nil, err
		}
	}

	for _, p := range e.required {
		if _, err := e.defines.Require(p); err != nil {
			return nil, err
		}
	}

	return e.defines, nil
}

// Resolve evaluates the configuration and returns the setting of p alone.
// Only the properties p transitively depends on are resolved.
func (c *Configuration) Resolve(p Property, initial Defines, opts ...EvalOption) (Setting, error) {
	e := &evaluator{
		cfg:        c,
		defines:    initial.Clone(),
		logger:     zerolog.Nop(),
		inProgress: make(map[Property]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e.resolve(p)
}

func (e *evaluator) resolve(p Property) (Setting, error) {
	if s, ok := e.defines[p]; ok {
		return s, nil
	}

	if e.inProgress[p] {
		i := slices.Index(e.stack, p)
		path := append(slices.Clone(e.stack[i:]), p)
		return Setting{}, &CycleError{Path: path}
	}

	e.inProgress[p] = true
	e.stack = append(e.stack, p)
	s, err := e.compute(p)
	e.stack = e.stack[:len(e.stack)-1]
	delete(e.inProgress, p)
	if err != nil {
		return Setting{}, err
	}

	e.defines[p] = s
	return s, nil
}

func (e *evaluator) compute(p Property) (Setting, error) {
	var satisfied []Element
	for _, el := range e.cfg.ElementsFor(p) {
		ok, err := e.satisfied(el)
		if err != nil {
			return Setting{}, err
		}
		if ok {
			satisfied = append(satisfied, el)
		}
	}

	if len(satisfied) == 0 {
		e.logger.Debug().Str("property", string(p)).Msg("no assignment applies, property undefined")
		return Undefined(), nil
	}

	winner, err := selectAssignment(satisfied)
	if err != nil {
		return Setting{}, err
	}

	s, err := e.interpolate(winner)
	if err != nil {
		return Setting{}, err
	}
	e.logger.Debug().
		Str("property", string(p)).
		Int("line", winner.Line).
		Str("value", s.String()).
		Msg("property resolved")
	return s, nil
}

// satisfied evaluates conditions left to right and stops at the first that fails.
func (e *evaluator) satisfied(el Element) (bool, error) {
	for _, c := range el.Conditions {
		s, err := e.resolve(c.Property)
		if err != nil {
			return false, err
		}
		if !c.Satisfied(s) {
			return false, nil
		}
	}
	return true, nil
}

// selectAssignment picks the satisfied assignment whose conditions strictly
// contain those of every other satisfied assignment.
func selectAssignment(satisfied []Element) (Element, error) {
	if len(satisfied) == 1 {
		return satisfied[0], nil
	}

	for i, cand := range satisfied {
		wins := true
		for j, other := range satisfied {
			if i != j && !cand.overrides(other) {
				wins = false
				break
			}
		}
		if wins {
			return cand, nil
		}
	}

	// Report against the most specific competitors only.
	var maximal []Element
	for i, cand := range satisfied {
		dominated := false
		for j, other := range satisfied {
			if i != j && other.overrides(cand) {
				dominated = true
				break
			}
		}
		if !dominated {
			maximal = append(maximal, cand)
		}
	}

	var governing []Property
	for _, el := range maximal[1:] {
		governing = append(governing, el.Governing()...)
	}
	slices.Sort(governing)

	return Element{}, &ConditionalAssignmentError{
		Element:       maximal[0],
		ConflictsWith: slices.Compact(governing),
	}
}

func (e *evaluator) interpolate(el Element) (Setting, error) {
	var b strings.Builder
	for _, item := range el.Value.Items {
		if !item.IsReference() {
			b.WriteString(item.Literal)
			continue
		}

		if item.Ref == Inherited {
			if e.parent == nil {
				return Setting{}, &NoInheritedValueError{Element: el}
			}
			b.WriteString(e.parent(el.Property).String())
			continue
		}

		s, err := e.resolve(item.Ref)
		if err != nil {
			return Setting{}, err
		}
		b.WriteString(s.String())
	}
	return Defined(b.String()), nil
}
