package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/reports"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// selectionMappingPicklist names the data types that carry dynamic selection
// list mappings. Admins maintain the picklist on the platform.
const selectionMappingPicklist = "Dynamic Selection List Mapping Data Types"

// Selection mapping records share a common audit shape regardless of which
// mapping type they belong to, so the report columns are fixed.
var selectionMappingColumns = []struct {
	name      string
	fieldType reports.FieldType
}{
	{"C_OptionKey", reports.FieldTypeString},
	{"C_OptionValue", reports.FieldTypeString},
	{"CreatedBy", reports.FieldTypeString},
	{"DateCreated", reports.FieldTypeDate},
	{"VeloxLastModifiedBy", reports.FieldTypeString},
	{"VeloxLastModifiedDate", reports.FieldTypeDate},
}

// ManageSelectionMappingRecords lets an admin pick one of the configured
// selection mapping data types and opens a report over its records. The
// choice is collected through a list-dialog callback round trip; both legs
// rebuild the display-name map from the picklist, so no state is held
// between invocations.
type ManageSelectionMappingRecords struct {
	sapio *client.Client
}

func NewManageSelectionMappingRecords(sapio *client.Client) *ManageSelectionMappingRecords {
	return &ManageSelectionMappingRecords{sapio: sapio}
}

func (h *ManageSelectionMappingRecords) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	displayNames, typesByDisplayName, errResult, err := h.loadDataTypeMap(ctx)
	if err != nil || errResult != nil {
		return errResult, err
	}

	if len(displayNames) == 0 {
		return webhook.NewResult(true), nil
	}

	cb := wctx.ClientCallbackResult
	if cb == nil || cb.Type != webhook.CallbackListDialog {
		return webhook.NewListDialogRequest("Select Data Type", displayNames), nil
	}

	if cb.Cancelled || len(cb.SelectedOptions) == 0 {
		return webhook.NewResult(true), nil
	}

	chosen, ok := typesByDisplayName[cb.SelectedOptions[0]]
	if !ok {
		return webhook.NewErrorPopupResult(
			fmt.Sprintf("Unknown data type selection: %s", cb.SelectedOptions[0])), nil
	}

	builder := reports.NewBuilder(chosen)
	for _, col := range selectionMappingColumns {
		builder.AddColumn(col.name, col.fieldType)
	}
	builder.SetRootTerm(reports.NotTerm(chosen, fieldRecordID, "0"))

	return &webhook.Result{
		Passed:    true,
		Directive: webhook.NewCustomReportDirective(builder.Build()),
	}, nil
}

// loadDataTypeMap resolves the picklist entries to display names, keeping
// picklist order. Entries without a data type definition are skipped. The
// returned result is non-nil only for the user-facing picklist errors.
func (h *ManageSelectionMappingRecords) loadDataTypeMap(ctx context.Context) ([]string, map[string]string, *webhook.Result, error) {
	picklist, err := h.sapio.GetPicklist(ctx, selectionMappingPicklist)
	if err != nil {
		return nil, nil, nil, err
	}

	if picklist == nil {
		return nil, nil, webhook.NewErrorPopupResult(
			fmt.Sprintf("Picklist '%s' does not exist.", selectionMappingPicklist)), nil
	}

	if len(picklist.Entries) == 0 {
		return nil, nil, webhook.NewErrorPopupResult(
			fmt.Sprintf("Picklist '%s' is empty.", selectionMappingPicklist)), nil
	}

	var displayNames []string
	typesByDisplayName := make(map[string]string, len(picklist.Entries))

	for _, dataTypeName := range picklist.Entries {
		def, err := h.sapio.GetDataTypeDefinition(ctx, dataTypeName)
		if err != nil {
			// stale picklist entries for deleted types are skipped
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				continue
			}

			return nil, nil, nil, err
		}

		displayNames = append(displayNames, def.DisplayName)
		typesByDisplayName[def.DisplayName] = def.DataTypeName
	}

	return displayNames, typesByDisplayName, nil, nil
}
