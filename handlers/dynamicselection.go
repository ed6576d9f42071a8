package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/reports"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// dynamicSelectionTagRe extracts the search data type and filter field from
// a field tag configured by an admin, e.g.
// <!-- TAKEDA DYNAMIC SELECTION: DATA TYPE [C_Option] FILTER BY FIELD [C_Category] -->
var dynamicSelectionTagRe = regexp.MustCompile(
	`<!--\s*TAKEDA\s*DYNAMIC\s*SELECTION\s*:\s*DATA\s*TYPE\s*\[(.*?)\]\s*FILTER\s*BY\s*FIELD\s*\[(.*?)\]\s*-->`)

const (
	optionKeyField   = "C_OptionKey"
	optionValueField = "C_OptionValue"
)

// DynamicSelection feeds selection-list fields whose options depend on
// another field of the same record. The triggering field's tag names a
// key/value data type and the field to filter keys by.
type DynamicSelection struct {
	sapio *client.Client
}

func NewDynamicSelection(sapio *client.Client) *DynamicSelection {
	return &DynamicSelection{sapio: sapio}
}

func (h *DynamicSelection) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	fields, err := h.sapio.GetFieldDefinitionList(ctx, wctx.DataTypeName)
	if err != nil {
		return nil, err
	}

	var searchDataType, filterField string
	for _, field := range fields {
		if field.DataFieldName != wctx.DataFieldName {
			continue
		}

		matches := dynamicSelectionTagRe.FindStringSubmatch(field.Tag)
		if matches == nil {
			return webhook.NewResultWithText(false,
				"Dynamic Selection List field has not been configured correctly."), nil
		}

		searchDataType, filterField = matches[1], matches[2]
		break
	}

	if searchDataType == "" || filterField == "" {
		return webhook.NewResultWithText(false,
			"Unable to find dynamic selection criteria. Please contact a system administrator."), nil
	}

	// A comma separated filter value matches any of its parts.
	filterValue, _ := wctx.FieldMap[filterField].(string)
	values := []string{filterValue}
	if strings.Contains(filterValue, ",") {
		values = values[:0]
		for _, v := range strings.Split(filterValue, ",") {
			values = append(values, strings.TrimSpace(v))
		}
	}

	criteria := reports.NewBuilder(searchDataType).
		AddColumn(optionValueField, reports.FieldTypeString).
		SetRootTerm(reports.IsTerm(searchDataType, optionKeyField, values...)).
		Build()

	result, err := h.sapio.RunCustomReport(ctx, criteria)
	if err != nil {
		return nil, err
	}

	listValues := make([]string, 0, len(result.ResultTable))
	for _, row := range result.ResultTable {
		if len(row) > 0 {
			listValues = append(listValues, row[0])
		}
	}

	return webhook.NewListResult(listValues), nil
}
