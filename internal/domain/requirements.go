package domain

import (
	"strings"
	"unicode"
)

// AuthTypeUnknown is the auth type used when none could be extracted.
const AuthTypeUnknown = "Unknown"

// Endpoint is an API endpoint named by the SRS document.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// Table is a database table named by the SRS document.
type Table struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// Schema is the database schema section of the requirements.
type Schema struct {
	Tables []Table `json:"tables"`
}

// Auth describes the authentication requirements.
type Auth struct {
	Type     string   `json:"type"`
	Features []string `json:"features"`
}

// Requirements is the structured form of an SRS document.
type Requirements struct {
	FunctionalRequirements []string   `json:"functional_requirements"`
	APIEndpoints           []Endpoint `json:"api_endpoints"`
	DBSchema               Schema     `json:"db_schema"`
	AuthRequirements       Auth       `json:"auth_requirements"`
}

// FallbackRequirements is the structure used when the analysis output
// cannot be decoded.
func FallbackRequirements() *Requirements {
	return &Requirements{
		FunctionalRequirements: []string{"Failed to parse requirements"},
		APIEndpoints:           []Endpoint{},
		DBSchema:               Schema{Tables: []Table{}},
		AuthRequirements:       Auth{Type: AuthTypeUnknown, Features: []string{}},
	}
}

// Endpoints returns the distinct endpoint paths in document order.
func (r *Requirements) Endpoints() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool, len(r.APIEndpoints))
	paths := make([]string, 0, len(r.APIEndpoints))
	for _, e := range r.APIEndpoints {
		if e.Path == "" || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		paths = append(paths, e.Path)
	}
	return paths
}

// Models returns the distinct model names derived from the schema tables,
// e.g. "order_items" becomes "OrderItem".
func (r *Requirements) Models() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool, len(r.DBSchema.Tables))
	models := make([]string, 0, len(r.DBSchema.Tables))
	for _, t := range r.DBSchema.Tables {
		name := ModelName(t.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		models = append(models, name)
	}
	return models
}

// HasAuth reports whether the document names any authentication scheme.
func (r *Requirements) HasAuth() bool {
	if r == nil {
		return false
	}
	t := strings.TrimSpace(r.AuthRequirements.Type)
	known := t != "" && !strings.EqualFold(t, AuthTypeUnknown) && !strings.EqualFold(t, "none")
	return known || len(r.AuthRequirements.Features) > 0
}

// ModelName converts a table name to a singular PascalCase model name.
func ModelName(table string) string {
	words := strings.FieldsFunc(table, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = singular(words[len(words)-1])

	var b strings.Builder
	for _, w := range words {
		if strings.ToUpper(w) == w {
			w = strings.ToLower(w)
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func singular(word string) string {
	lower := strings.ToLower(word)
	switch {
	case len(lower) > 3 && strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "sses"), strings.HasSuffix(lower, "uses"),
		strings.HasSuffix(lower, "xes"), strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case len(lower) > 1 && strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

// ResourceName returns the file-safe name of the last non-empty segment of
// an endpoint path: "/api/users" gives "users", "/api/users/{id}" gives "id".
func ResourceName(path string) string {
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	last := segments[len(segments)-1]
	last = strings.Trim(last, "{}<>:")

	var b strings.Builder
	for _, c := range strings.ToLower(last) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "root"
	}
	return b.String()
}
