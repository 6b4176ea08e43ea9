package manifest

import (
	"strings"
)

// Operator is a version constraint operator.
type Operator string

const (
	// OpMinimum is a minimum-version bound.
	OpMinimum Operator = ">="
	// OpExact pins an exact version.
	OpExact Operator = "=="
)

// Requirement is a single package constraint line.
type Requirement struct {
	Name     string
	Extras   []string
	Operator Operator
	Version  string
	// Line is the 1-based source line, zero for requirements built in code.
	Line  int
	Group string
}

// NormalizedName returns the package name lower-cased with runs of `-`, `_`
// and `.` collapsed to a single `-`.
func (r Requirement) NormalizedName() string {
	return NormalizeName(r.Name)
}

// String renders the requirement as a manifest line.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteByte(']')
	}
	b.WriteString(string(r.Operator))
	b.WriteString(r.Version)
	return b.String()
}

// Group is a block of requirements under one comment header.
type Group struct {
	Header       string
	Requirements []Requirement
}

// Manifest is a parsed dependency manifest.
type Manifest struct {
	Groups []Group
}

// Requirements returns every requirement in file order.
func (m *Manifest) Requirements() []Requirement {
	if m == nil {
		return nil
	}
	var out []Requirement
	for _, g := range m.Groups {
		out = append(out, g.Requirements...)
	}
	return out
}

// Group returns the group with the given header.
func (m *Manifest) Group(header string) (Group, bool) {
	for _, g := range m.Groups {
		if g.Header == header {
			return g, true
		}
	}
	return Group{}, false
}

// Add appends r to the group named header, creating the group when needed.
func (m *Manifest) Add(header string, r Requirement) {
	r.Group = header
	for i := range m.Groups {
		if m.Groups[i].Header == header {
			m.Groups[i].Requirements = append(m.Groups[i].Requirements, r)
			return
		}
	}
	m.Groups = append(m.Groups, Group{Header: header, Requirements: []Requirement{r}})
}

// NormalizeName normalises a package name the way pip compares names.
func NormalizeName(name string) string {
	var b strings.Builder
	lastSep := false
	for _, c := range strings.ToLower(name) {
		if c == '-' || c == '_' || c == '.' {
			if !lastSep {
				b.WriteByte('-')
			}
			lastSep = true
			continue
		}
		lastSep = false
		b.WriteRune(c)
	}
	return b.String()
}
