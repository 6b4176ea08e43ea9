package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// ErrConflict is returned by Validate when the manifest cannot be satisfied.
var ErrConflict = errors.New("conflicting version constraints")

// Conflict is a pair of requirements for the same package that no single
// version satisfies.
type Conflict struct {
	Package string
	First   Requirement
	Second  Requirement
	Reason  string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s (line %d) vs %s (line %d): %s",
		c.Package, c.First, c.First.Line, c.Second, c.Second.Line, c.Reason)
}

// ConflictError wraps ErrConflict with the offending pairs.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("%s: %s", ErrConflict, strings.Join(parts, "; "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Conflicts reports every unsatisfiable pair of constraints. Package names
// are compared after NormalizeName. Two different `==` pins conflict, and an
// `==` pin below a `>=` bound conflicts. Multiple `>=` bounds never conflict.
func (m *Manifest) Conflicts() []Conflict {
	byName := make(map[string][]Requirement)
	var order []string
	for _, r := range m.Requirements() {
		key := r.NormalizedName()
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		byName[key] = append(byName[key], r)
	}

	var out []Conflict
	for _, name := range order {
		reqs := byName[name]
		for i := 0; i < len(reqs); i++ {
			for j := i + 1; j < len(reqs); j++ {
				if reason, bad := conflicts(reqs[i], reqs[j]); bad {
					out = append(out, Conflict{Package: name, First: reqs[i], Second: reqs[j], Reason: reason})
				}
			}
		}
	}
	return out
}

// Validate returns a *ConflictError wrapping ErrConflict when the manifest
// has conflicts.
func (m *Manifest) Validate() error {
	if c := m.Conflicts(); len(c) > 0 {
		return &ConflictError{Conflicts: c}
	}
	return nil
}

func conflicts(a, b Requirement) (string, bool) {
	switch {
	case a.Operator == OpExact && b.Operator == OpExact:
		if !sameVersion(a.Version, b.Version) {
			return "different exact pins", true
		}
	case a.Operator == OpExact && b.Operator == OpMinimum:
		if below(a.Version, b.Version) {
			return "pinned version is below the minimum bound", true
		}
	case a.Operator == OpMinimum && b.Operator == OpExact:
		if below(b.Version, a.Version) {
			return "pinned version is below the minimum bound", true
		}
	}
	return "", false
}

func sameVersion(a, b string) bool {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}

// below reports whether pin < bound. Versions go-version cannot parse are
// never reported as conflicting.
func below(pin, bound string) bool {
	vp, err := version.NewVersion(pin)
	if err != nil {
		return false
	}
	vb, err := version.NewVersion(bound)
	if err != nil {
		return false
	}
	return vp.LessThan(vb)
}
