package reports

// Builder assembles a CustomReportCriteria column by column.
type Builder struct {
	dataType string
	columns  []ReportColumn
	root     *ReportTerm
}

func NewBuilder(dataType string) *Builder {
	return &Builder{dataType: dataType}
}

// AddColumn appends a column on the root data type.
func (b *Builder) AddColumn(fieldName string, fieldType FieldType) *Builder {
	b.columns = append(b.columns, ReportColumn{
		DataTypeName:  b.dataType,
		DataFieldName: fieldName,
		FieldType:     fieldType,
	})

	return b
}

// SetRootTerm sets the filter applied to the report.
func (b *Builder) SetRootTerm(t *ReportTerm) *Builder {
	b.root = t
	return b
}

func (b *Builder) Build() *CustomReportCriteria {
	return &CustomReportCriteria{
		RootDataType: b.dataType,
		Columns:      b.columns,
		RootTerm:     b.root,
	}
}

// IsTerm matches records whose field equals any of the given values.
func IsTerm(dataType, fieldName string, values ...string) *ReportTerm {
	return &ReportTerm{
		DataTypeName:  dataType,
		DataFieldName: fieldName,
		Operation:     OperationEquals,
		Values:        values,
	}
}

// NotTerm matches records whose field differs from the given value.
func NotTerm(dataType, fieldName, value string) *ReportTerm {
	return &ReportTerm{
		DataTypeName:  dataType,
		DataFieldName: fieldName,
		Operation:     OperationNotEquals,
		Values:        []string{value},
	}
}

func AndTerm(children ...*ReportTerm) *ReportTerm {
	return &ReportTerm{Join: JoinAnd, Children: children}
}

func OrTerm(children ...*ReportTerm) *ReportTerm {
	return &ReportTerm{Join: JoinOr, Children: children}
}
