package buildconfig

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_IndependentAssignments checks that with no cross references the
// result equals each property's single assignment, whatever the line order.
func TestProperty_IndependentAssignments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")

		lines := make([]string, n)
		expected := make(map[Property]string, n)
		for i := 0; i < n; i++ {
			p := Property(fmt.Sprintf("p%d", i))
			v := rapid.StringMatching(`[a-zA-Z0-9._-]{0,12}`).Draw(t, "value")
			lines[i] = fmt.Sprintf("%s = %s", p, v)
			expected[p] = v
		}
		shuffled := rapid.Permutation(lines).Draw(t, "order")

		cfg, err := Parse(strings.Join(shuffled, "\n"))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		defines, err := cfg.Eval(nil)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}

		if len(defines) != n {
			t.Fatalf("expected %d properties, got %d", n, len(defines))
		}
		for p, want := range expected {
			got, ok := defines.Value(p)
			if !ok || got != want {
				t.Fatalf("%s: expected %q, got %q (defined=%v)", p, want, got, ok)
			}
		}
	})
}

// TestProperty_ReferenceChainsIgnoreOrder builds acyclic reference graphs and
// checks that shuffling statements never changes the resolved values.
func TestProperty_ReferenceChainsIgnoreOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "n")

		lines := make([]string, n)
		for i := 0; i < n; i++ {
			var b strings.Builder
			fmt.Fprintf(&b, "p%d = v%d", i, i)
			// only reference higher indexes so the graph stays acyclic
			for j := i + 1; j < n; j++ {
				if rapid.Bool().Draw(t, "ref") {
					fmt.Fprintf(&b, "_$(p%d)", j)
				}
			}
			lines[i] = b.String()
		}

		reference, err := MustParse(strings.Join(lines, "\n")).Eval(nil)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}

		shuffled := rapid.Permutation(lines).Draw(t, "order")
		got, err := MustParse(strings.Join(shuffled, "\n")).Eval(nil)
		if err != nil {
			t.Fatalf("eval shuffled: %v", err)
		}

		for p, want := range reference {
			if got[p] != want {
				t.Fatalf("%s: expected %q, got %q", p, want.String(), got[p].String())
			}
		}
	})
}

// TestProperty_FlagSelectsBranch checks [flag] and [!flag] always pick exactly one branch.
func TestProperty_FlagSelectsBranch(t *testing.T) {
	values := []string{"", "NO", "false", "0", "true", "YES", "1", "anything-else"}

	rapid.Check(t, func(t *rapid.T) {
		defined := rapid.Bool().Draw(t, "defined")
		value := rapid.SampledFrom(values).Draw(t, "value")
		reversed := rapid.Bool().Draw(t, "reversed")

		src := "p[!flag] = x\np[flag] = y"
		if reversed {
			src = "p[flag] = y\np[!flag] = x"
		}

		initial := Defines{}
		if defined {
			initial.Set("flag", value)
		}

		defines, err := MustParse(src).Eval(initial)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}

		want := "y"
		if !defined || value == "NO" || value == "false" || value == "0" {
			want = "x"
		}
		if got := defines["p"].String(); got != want {
			t.Fatalf("flag=%q defined=%v: expected %q, got %q", value, defined, want, got)
		}
	})
}
