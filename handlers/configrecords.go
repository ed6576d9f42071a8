package handlers

import (
	"context"
	"fmt"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/reports"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

const fieldRecordID = "RecordId"

// ManageConfigRecords opens a maintenance view over every record of a
// configuration data type: the report columns follow the default layout's
// field order so the view matches what admins see on the form.
type ManageConfigRecords struct {
	sapio        *client.Client
	dataTypeName string
}

func NewManageConfigRecords(sapio *client.Client, dataTypeName string) *ManageConfigRecords {
	return &ManageConfigRecords{sapio: sapio, dataTypeName: dataTypeName}
}

func (h *ManageConfigRecords) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	fields, err := h.sapio.FieldDefinitionsInOrder(ctx, h.dataTypeName)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return webhook.NewErrorPopupResult(
			fmt.Sprintf("No fields found for data type: %s", h.dataTypeName)), nil
	}

	builder := reports.NewBuilder(h.dataTypeName)
	for _, field := range fields {
		builder.AddColumn(field.DataFieldName, field.DataFieldType)
	}

	// RecordId != 0 matches every record; the term only exists because the
	// report engine requires a root term.
	builder.SetRootTerm(reports.NotTerm(h.dataTypeName, fieldRecordID, "0"))

	return &webhook.Result{
		Passed:    true,
		Directive: webhook.NewCustomReportDirective(builder.Build()),
	}, nil
}
