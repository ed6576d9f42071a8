// Package reports builds custom report criteria for the platform's ad-hoc
// query engine.
package reports

// FieldType mirrors the platform's field definition types.
type FieldType string

const (
	FieldTypeString  FieldType = "STRING"
	FieldTypeInteger FieldType = "INTEGER"
	FieldTypeLong    FieldType = "LONG"
	FieldTypeDouble  FieldType = "DOUBLE"
	FieldTypeBoolean FieldType = "BOOLEAN"
	FieldTypeDate    FieldType = "DATE"
	FieldTypePicker  FieldType = "PICKLIST"
)

type TermOperation string

const (
	OperationEquals    TermOperation = "EQUALS"
	OperationNotEquals TermOperation = "NOT_EQUALS"
)

type JoinType string

const (
	JoinAnd JoinType = "AND"
	JoinOr  JoinType = "OR"
)

type ReportColumn struct {
	DataTypeName  string    `json:"dataTypeName"`
	DataFieldName string    `json:"dataFieldName"`
	FieldType     FieldType `json:"fieldType"`
}

// ReportTerm is either a raw comparison (leaf) or a composite joining child
// terms. A raw term with multiple values matches any of them.
type ReportTerm struct {
	DataTypeName  string        `json:"dataTypeName,omitempty"`
	DataFieldName string        `json:"dataFieldName,omitempty"`
	Operation     TermOperation `json:"operation,omitempty"`
	Values        []string      `json:"values,omitempty"`

	Join     JoinType      `json:"join,omitempty"`
	Children []*ReportTerm `json:"children,omitempty"`
}

// CustomReportCriteria is the wire form the platform runs and the form UI
// directives point users at.
type CustomReportCriteria struct {
	RootDataType string         `json:"rootDataType"`
	Columns      []ReportColumn `json:"columnList"`
	RootTerm     *ReportTerm    `json:"rootTerm,omitempty"`
	PageSize     int            `json:"pageSize,omitempty"`
	PageNumber   int            `json:"pageNumber,omitempty"`
}

// CustomReportResult is what running a report returns: column metadata plus
// rows of stringified cell values.
type CustomReportResult struct {
	Columns     []ReportColumn `json:"columnList"`
	ResultTable [][]string     `json:"resultTable"`
	HasNextPage bool           `json:"hasNextPage"`
}
