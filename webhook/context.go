package webhook

import (
	"context"
	"encoding/json"
	"math"
)

// EndpointType identifies where in the platform UI or rule engine an
// invocation originated.
type EndpointType string

const (
	EndpointActionMenu         EndpointType = "ACTIONMENU"
	EndpointFormToolbar        EndpointType = "FORMTOOLBAR"
	EndpointTableToolbar       EndpointType = "TABLETOOLBAR"
	EndpointEntryToolbar       EndpointType = "EXPERIMENTENTRYTOOLBAR"
	EndpointMainToolbar        EndpointType = "NOTEBOOKEXPERIMENTMAINTOOLBAR"
	EndpointOnSaveRuleAction   EndpointType = "VELOXONSAVERULEACTION"
	EndpointElnRuleAction      EndpointType = "VELOXELNRULEACTION"
	EndpointSelectionDataField EndpointType = "SELECTIONDATAFIELD"
	EndpointActionDataField    EndpointType = "ACTIONDATAFIELD"
)

// Context is the payload the platform POSTs to a registered endpoint. The
// invoking user's session rides along so the handler can call back into the
// platform web service on their behalf.
type Context struct {
	EndpointType EndpointType `json:"webhookEndpointType"`
	EndpointPath string       `json:"webhookEndpointPath"`

	WebServiceURL string `json:"webserviceUrl"`
	Username      string `json:"username"`
	SessionToken  string `json:"sessionToken"`

	DataTypeName  string                 `json:"dataTypeName,omitempty"`
	DataFieldName string                 `json:"dataFieldName,omitempty"`
	FieldMap      map[string]interface{} `json:"fieldMap,omitempty"`

	DataRecordList []DataRecord `json:"dataRecordList,omitempty"`
	BaseDataRecord *DataRecord  `json:"baseDataRecord,omitempty"`

	ExperimentID  int64 `json:"notebookExperimentId,omitempty"`
	ActiveEntryID int64 `json:"activeEntryId,omitempty"`

	ClientCallbackResult *CallbackResult `json:"clientCallbackResult,omitempty"`
}

// DataRecord is a single platform record: an identity plus its field map.
type DataRecord struct {
	RecordID     int64                  `json:"recordId"`
	DataTypeName string                 `json:"dataTypeName"`
	Fields       map[string]interface{} `json:"fields"`
}

// StringField returns the named field as a string, or "" when absent or of
// another type.
func (r *DataRecord) StringField(name string) string {
	if s, ok := r.Fields[name].(string); ok {
		return s
	}

	return ""
}

// Int64Field returns the named field as an int64. Values decoded from JSON
// arrive as float64 or json.Number and are converted.
func (r *DataRecord) Int64Field(name string) int64 {
	switch v := r.Fields[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(math.Round(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float64Field returns the named field as a float64, or 0 when absent.
func (r *DataRecord) Float64Field(name string) float64 {
	switch v := r.Fields[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Handler executes application logic for a single webhook invocation.
type Handler interface {
	Execute(ctx context.Context, wctx *Context) (*Result, error)
}
