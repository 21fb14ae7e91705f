// Package suggestion turns a grocery list into validated item suggestions
// using a local language model.
package suggestion

// Priority ranks how strongly an item is recommended
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Categories the model is asked to choose from. Validation does not enforce them.
var Categories = []string{"produce", "dairy", "meat", "pantry", "beverages", "snacks", "other"}

// Suggestion is one recommended grocery item
type Suggestion struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority" validate:"oneof=low medium high"`
	Quantity *int     `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// DiagnosticKind classifies why a suggestion run produced nothing
type DiagnosticKind string

const (
	DiagnosticNone               DiagnosticKind = "ok"
	DiagnosticServiceUnavailable DiagnosticKind = "service_unavailable"
	DiagnosticModelNotFound      DiagnosticKind = "model_not_found"
	DiagnosticMalformedResponse  DiagnosticKind = "malformed_response"
	DiagnosticTransport          DiagnosticKind = "transport"
)

// Diagnostic explains the outcome of a run. It is logged and returned, never raised.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message,omitempty"`
	// Models lists installed models when Kind is DiagnosticModelNotFound
	Models []string `json:"models,omitempty"`
	Err    error    `json:"-"`
}

// OK reports whether the run completed without a failure
func (d Diagnostic) OK() bool {
	return d.Kind == DiagnosticNone
}

// Result is the outcome of GenerateSuggestions. Suggestions is never nil:
// it is either fully validated or empty.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Diagnostic  Diagnostic   `json:"diagnostic"`
}
