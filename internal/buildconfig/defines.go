package buildconfig

import (
	"maps"
	"slices"
	"strings"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// Setting is the resolved state of a property: defined with a string value,
// or explicitly undefined. The zero value is undefined.
type Setting struct {
	value   string
	defined bool
}

// Defined returns a setting holding v. The empty string is a valid defined value.
func Defined(v string) Setting {
	return Setting{value: v, defined: true}
}

// Undefined returns a setting that was resolved but has no value.
func Undefined() Setting {
	return Setting{}
}

// Get returns the value and whether it is defined.
func (s Setting) Get() (string, bool) {
	return s.value, s.defined
}

// IsDefined reports whether the setting has a value.
func (s Setting) IsDefined() bool {
	return s.defined
}

// String returns the value, or the empty string when undefined.
func (s Setting) String() string {
	return s.value
}

// Defines maps properties to their resolved settings.
//
// A property has three observable states: absent (never resolved), present
// but undefined, and present with a value. Includes tests presence only.
type Defines map[Property]Setting

// Set stores a defined value for p.
func (d Defines) Set(p Property, v string) {
	d[p] = Defined(v)
}

// Unset records p as resolved but undefined.
func (d Defines) Unset(p Property) {
	d[p] = Undefined()
}

// Lookup returns the setting for p and whether p is present.
func (d Defines) Lookup(p Property) (Setting, bool) {
	s, ok := d[p]
	return s, ok
}

// Includes reports whether p is present, defined or not.
func (d Defines) Includes(p Property) bool {
	_, ok := d[p]
	return ok
}

// Value returns the defined value of p, or "" with false when p is absent or undefined.
func (d Defines) Value(p Property) (string, bool) {
	return d[p].Get()
}

// Require returns the value of p or a NoDefaultValueError when p is absent or undefined.
func (d Defines) Require(p Property) (string, error) {
	v, ok := d[p].Get()
	if !ok {
		return "", &NoDefaultValueError{Property: p}
	}
	return v, nil
}

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (d Defines) Clone() Defines {
	out := make(Defines, len(d))
	maps.Copy(out, d)
	return out
}

// Properties returns the present properties, sorted.
func (d Defines) Properties() []Property {
	return slices.Sorted(maps.Keys(d))
}

// Strings returns the defined values keyed by property name.
func (d Defines) Strings() map[string]string {
	out := make(map[string]string, len(d))
	for p, s := range d {
		if v, ok := s.Get(); ok {
			out[string(p)] = v
		}
	}
	return out
}

// DefinesFromStrings builds Defines with every entry defined.
func DefinesFromStrings(m map[string]string) (Defines, error) {
	d := make(Defines, len(m))
	for k, v := range m {
		if !IsValidProperty(k) {
			return nil, lhcerrors.Wrapf(lhcerrors.ErrInvalidDefine, "%q is not a valid property name", k)
		}
		d.Set(Property(k), v)
	}
	return d, nil
}

// ParseDefine parses a KEY=VALUE define argument. A bare KEY is defined
// as "YES"; only the first '=' separates key and value.
func ParseDefine(arg string) (Property, string, error) {
	key, value, found := strings.Cut(arg, "=")
	if !found {
		value = "YES"
	}
	if !IsValidProperty(key) {
		return "", "", lhcerrors.Wrapf(lhcerrors.ErrInvalidDefine, "%q is not a valid property name", key)
	}
	return Property(key), value, nil
}

// Define parses each argument with ParseDefine and sets it on d, in order,
// so later arguments win.
func (d Defines) Define(args ...string) error {
	for _, arg := range args {
		p, v, err := ParseDefine(arg)
		if err != nil {
			return err
		}
		d.Set(p, v)
	}
	return nil
}
