package webhook

import "github.com/onetakeda/sapio-webhooks/reports"

// Result is the response body for a webhook invocation. The platform treats
// any well-formed result as a successful round trip; Passed only drives the
// rule-engine outcome.
type Result struct {
	Passed      bool     `json:"passed"`
	DisplayText string   `json:"displayText,omitempty"`
	ListValues  []string `json:"listValues,omitempty"`

	// FieldMapChanges sends edited field values back to the triggering form
	// on data-field endpoints.
	FieldMapChanges map[string]interface{} `json:"fieldMapChanges,omitempty"`

	Directive             *Directive       `json:"directive,omitempty"`
	ClientCallbackRequest *CallbackRequest `json:"clientCallbackRequest,omitempty"`

	// RefreshData asks the client to re-fetch records the handler changed.
	RefreshData bool `json:"refreshData,omitempty"`

	// RefreshExperiment asks the client to reload the open notebook
	// experiment so toolbar and entry changes show up immediately.
	RefreshExperiment bool `json:"refreshNotebookExperiment,omitempty"`
}

func NewResult(passed bool) *Result {
	return &Result{Passed: passed}
}

func NewResultWithText(passed bool, displayText string) *Result {
	return &Result{Passed: passed, DisplayText: displayText}
}

// NewListResult passes with selection values for list-style endpoints.
func NewListResult(values []string) *Result {
	return &Result{Passed: true, ListValues: values}
}

type DirectiveType string

const (
	DirectiveCustomReport DirectiveType = "CUSTOM_REPORT"
	DirectiveForm         DirectiveType = "FORM"
	DirectiveTable        DirectiveType = "TABLE"
	DirectiveHome         DirectiveType = "HOME"
)

// Directive steers the invoking user's client after the webhook returns.
type Directive struct {
	Type DirectiveType `json:"type"`

	// CustomReport is set for DirectiveCustomReport: the client opens the
	// report results view for these criteria.
	CustomReport *reports.CustomReportCriteria `json:"customReport,omitempty"`

	// DataTypeName is set for form/table directives.
	DataTypeName string `json:"dataTypeName,omitempty"`
}

// NewCustomReportDirective directs the user to the results of the report.
func NewCustomReportDirective(criteria *reports.CustomReportCriteria) *Directive {
	return &Directive{Type: DirectiveCustomReport, CustomReport: criteria}
}
