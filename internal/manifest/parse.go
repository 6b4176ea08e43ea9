package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var requirementPattern = regexp.MustCompile(
	`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[\s*([A-Za-z0-9._-]+(?:\s*,\s*[A-Za-z0-9._-]+)*)\s*\])?\s*(>=|==)\s*([0-9][A-Za-z0-9.+!-]*)$`,
)

// LineError describes a manifest line that does not match
// `name[extras]<op><version>`.
type LineError struct {
	Line int
	Text string
}

// ParseError lists every offending line of a manifest.
type ParseError struct {
	Lines []LineError
}

func (e *ParseError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("line %d: %q", l.Line, l.Text))
	}
	return fmt.Sprintf("invalid requirement lines (expected name>=version or name==version): %s",
		strings.Join(parts, "; "))
}

// Parse reads a manifest from r.
//
// A comment line opens a new group named by the comment text. Consecutive
// comments before any requirement keep the first header. Requirements that
// appear before any header belong to a group with an empty header.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	var perr ParseError
	current := -1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			header := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if header == "" {
				continue
			}
			if current >= 0 && len(m.Groups[current].Requirements) == 0 && m.Groups[current].Header != "" {
				continue
			}
			m.Groups = append(m.Groups, Group{Header: header})
			current = len(m.Groups) - 1
			continue
		}

		req, ok := parseRequirement(line)
		if !ok {
			perr.Lines = append(perr.Lines, LineError{Line: lineNo, Text: line})
			continue
		}
		if current < 0 {
			m.Groups = append(m.Groups, Group{})
			current = 0
		}
		req.Line = lineNo
		req.Group = m.Groups[current].Header
		m.Groups[current].Requirements = append(m.Groups[current].Requirements, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if len(perr.Lines) > 0 {
		return nil, &perr
	}
	return m, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Manifest, error) {
	return Parse(strings.NewReader(s))
}

func parseRequirement(line string) (Requirement, bool) {
	match := requirementPattern.FindStringSubmatch(line)
	if match == nil {
		return Requirement{}, false
	}
	req := Requirement{
		Name:     match[1],
		Operator: Operator(match[3]),
		Version:  match[4],
	}
	if match[2] != "" {
		for _, extra := range strings.Split(match[2], ",") {
			req.Extras = append(req.Extras, strings.TrimSpace(extra))
		}
	}
	return req, true
}
