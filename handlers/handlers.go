// Package handlers contains the webhook endpoint implementations and the
// endpoint table that mounts them.
package handlers

import (
	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/server"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// Data types referenced by the handlers. The C_ prefix marks custom types
// configured on the platform.
const (
	dataTypeSample                  = "Sample"
	dataTypeELNSampleDetail         = "ELNSampleDetail"
	dataTypeCellCultureMeasurements = "C_CellCultureMeasurements"
	dataTypePurificationYieldConfig = "C_PurificationYieldConfig"
	dataTypePIFieldMapping          = "C_PIFieldMapping"
	dataTypeLabelDefinition         = "C_TakedaLabelDefinition"
)

// RegisterEndpoints mounts every production webhook on the registry. The
// paths are referenced by endpoint configuration inside the platform, so
// changing one here is a breaking change for deployed rule actions.
func RegisterEndpoints(reg *server.Registry) {
	reg.Register("/test_health", "TestWebhookServerConnection",
		func(sapio *client.Client) webhook.Handler { return NewTestConnection() })

	reg.Register("/a_test", "ReturnPopupResultFalse",
		func(sapio *client.Client) webhook.Handler { return NewReturnPopupFalse() })

	reg.Register("/days_since_day_zero", "DaysSinceDayZero",
		func(sapio *client.Client) webhook.Handler { return NewDaysSinceDayZero(sapio) })

	reg.Register("/dynamic_selection", "DynamicSelection",
		func(sapio *client.Client) webhook.Handler { return NewDynamicSelection(sapio) })

	reg.Register("/set_parent_onsave", "AddParentOnSave",
		func(sapio *client.Client) webhook.Handler { return NewAddParentOnSave(sapio) })

	reg.Register("/enforce_cancel_reason", "CancellingExperiment",
		func(sapio *client.Client) webhook.Handler { return NewCancellingExperiment(sapio) })

	reg.Register("/manage_config_records/purification_yields", "ManagePurificationYieldConfigRecords",
		func(sapio *client.Client) webhook.Handler {
			return NewManageConfigRecords(sapio, dataTypePurificationYieldConfig)
		})

	reg.Register("/manage_config_records/pi_field_mappings", "ManagePIFieldMappingRecords",
		func(sapio *client.Client) webhook.Handler {
			return NewManageConfigRecords(sapio, dataTypePIFieldMapping)
		})

	reg.Register("/manage_config_records/label_definitions", "ManageLabelDefinitionRecords",
		func(sapio *client.Client) webhook.Handler {
			return NewManageConfigRecords(sapio, dataTypeLabelDefinition)
		})

	reg.Register("/manage_config_records/selection_mappings", "ManageSelectionMappingRecords",
		func(sapio *client.Client) webhook.Handler { return NewManageSelectionMappingRecords(sapio) })

	reg.Register("/review/mark_ready_for_review", "MarkReadyForReview",
		func(sapio *client.Client) webhook.Handler { return NewMarkReadyForReview(sapio) })

	reg.Register("/review/unlock_experiment", "UnlockExperiment",
		func(sapio *client.Client) webhook.Handler { return NewUnlockExperiment(sapio) })

	reg.Register("/review/prevent_author_edit", "PreventAuthorEdit",
		func(sapio *client.Client) webhook.Handler { return NewPreventAuthorEdit(sapio) })

	reg.Register("/review/show_complete_button", "ShowCompleteExperimentButton",
		func(sapio *client.Client) webhook.Handler { return NewShowCompleteExperimentButton(sapio) })

	reg.Register("/review/complete_approved_experiment", "CompleteApprovedExperiment",
		func(sapio *client.Client) webhook.Handler { return NewCompleteApprovedExperiment(sapio) })
}
