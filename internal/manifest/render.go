package manifest

import (
	"bytes"
)

// Render writes m in manifest syntax. Groups are separated by a blank line
// and introduced by `# <Header>`.
//
// A header line opens a group when read back, so requirements without a
// header are written first, before any header, and groups without
// requirements are left out. With those two rules Parse(Render(m)) puts
// every requirement back under its own header.
func Render(m *Manifest) []byte {
	var (
		buf       bytes.Buffer
		ungrouped []Requirement
		named     []Group
	)
	for _, g := range m.Groups {
		switch {
		case len(g.Requirements) == 0:
		case g.Header == "":
			ungrouped = append(ungrouped, g.Requirements...)
		default:
			named = append(named, g)
		}
	}

	for _, r := range ungrouped {
		buf.WriteString(r.String())
		buf.WriteByte('\n')
	}
	for _, g := range named {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("# ")
		buf.WriteString(g.Header)
		buf.WriteByte('\n')
		for _, r := range g.Requirements {
			buf.WriteString(r.String())
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
