package httpapi

import (
	"net/http"

	"github.com/goccy/go-json"

	skemac "github.com/reoring/skemac"
)

// Issue is the wire form of a skemac.Issue.
type Issue struct {
	Path     string         `json:"path"`
	Code     string         `json:"code"`
	Keyword  string         `json:"keyword,omitempty"`
	Category string         `json:"category,omitempty"`
	Message  string         `json:"message"`
	Rule     string         `json:"rule,omitempty"`
	Offset   *int64         `json:"offset,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Causes   []Issue        `json:"causes,omitempty"`
}

// Payload is the body of a validation response.
type Payload struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// NewIssues converts issues to their wire form. Composition failures carry
// their child issues as causes.
func NewIssues(iss skemac.Issues) []Issue {
	out := make([]Issue, 0, len(iss))
	for _, it := range iss {
		dto := Issue{
			Path:     it.Path,
			Code:     it.Code,
			Keyword:  it.Keyword,
			Category: string(it.Category),
			Message:  it.Message,
			Rule:     it.Rule,
			Params:   it.Params,
		}
		if it.Offset > 0 {
			off := it.Offset
			dto.Offset = &off
		}
		if causes, ok := skemac.AsIssues(it.Cause); ok {
			dto.Causes = NewIssues(causes)
		}
		out = append(out, dto)
	}
	return out
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(iss skemac.Issues) Payload {
	return Payload{Valid: len(iss) == 0, Issues: NewIssues(iss)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
