package srs

import (
	"encoding/json"
	"strings"

	"github.com/phrazzld/srsforge/internal/domain"
)

// Top-level keys of the requirements JSON.
const (
	KeyFunctionalRequirements = "functional_requirements"
	KeyAPIEndpoints           = "api_endpoints"
	KeyDBSchema               = "db_schema"
	KeyAuthRequirements       = "auth_requirements"
)

var requiredKeys = []string{
	KeyFunctionalRequirements,
	KeyAPIEndpoints,
	KeyDBSchema,
	KeyAuthRequirements,
}

// ExtractJSON returns the text between the first `{` and the last `}` of
// raw, inclusive. When raw has no such span the whole string is returned
// and found is false.
func ExtractJSON(raw string) (body string, found bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return raw, false
}

// Parse decodes a model answer into requirements. When the answer is not a
// JSON object of the expected shape the fallback requirements are returned.
// Top-level keys absent from the answer are filled with defaults and listed
// in missing, in canonical key order.
func Parse(raw string) (req *domain.Requirements, missing []string) {
	body, _ := ExtractJSON(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &keys); err != nil || keys == nil {
		return domain.FallbackRequirements(), nil
	}

	var decoded domain.Requirements
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return domain.FallbackRequirements(), nil
	}

	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if _, ok := keys[KeyAuthRequirements]; !ok {
		decoded.AuthRequirements.Type = domain.AuthTypeUnknown
	}
	normalize(&decoded)
	return &decoded, missing
}

func normalize(r *domain.Requirements) {
	if r.FunctionalRequirements == nil {
		r.FunctionalRequirements = []string{}
	}
	if r.APIEndpoints == nil {
		r.APIEndpoints = []domain.Endpoint{}
	}
	if r.DBSchema.Tables == nil {
		r.DBSchema.Tables = []domain.Table{}
	}
	for i := range r.DBSchema.Tables {
		if r.DBSchema.Tables[i].Fields == nil {
			r.DBSchema.Tables[i].Fields = []string{}
		}
	}
	if r.AuthRequirements.Features == nil {
		r.AuthRequirements.Features = []string{}
	}
}
