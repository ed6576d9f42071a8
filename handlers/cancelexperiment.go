package handlers

import (
	"context"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/util"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

const (
	fieldReasonForCancelling = "ReasonForCancelling"
	fieldReviewStatus        = "ReviewStatus"

	reviewStatusCancelled = "Cancelled"
)

// CancellingExperiment enforces that a reason is recorded when a user
// cancels an experiment. The reason is collected through a string-input
// callback round trip; a cancelled or empty dialog re-prompts, since the
// reason has to be captured as well as we can manage.
type CancellingExperiment struct {
	sapio *client.Client
}

func NewCancellingExperiment(sapio *client.Client) *CancellingExperiment {
	return &CancellingExperiment{sapio: sapio}
}

func (h *CancellingExperiment) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	cb := wctx.ClientCallbackResult

	if cb == nil || cb.Cancelled || util.IsStringEmpty(cb.Value) {
		return webhook.NewStringInputRequest(
			"Cancelling Experiment",
			"Please provide a reason for cancelling the experiment.",
			fieldReasonForCancelling,
		), nil
	}

	err := h.sapio.UpdateExperimentFields(ctx, wctx.ExperimentID, map[string]interface{}{
		fieldReasonForCancelling: cb.Value,
		fieldReviewStatus:        reviewStatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	return webhook.NewResultWithText(true, "Success!"), nil
}
