package handlers

import (
	"context"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

const (
	// entryTagExperimentOverview marks the experiment overview entry in the
	// entry option map.
	entryTagExperimentOverview = "TAKEDA EXPERIMENT OVERVIEW"

	// optionHideCompleteButton hides the complete-workflow toolbar button
	// while a review is underway.
	optionHideCompleteButton = "HIDE COMPLETE WORKFLOW BUTTON"

	fieldVeloxCompletedBy = "VeloxCompletedBy"
)

// Review statuses tracked on the experiment overview.
const (
	reviewStatusOpen           = "Open"
	reviewStatusReadyForReview = "Ready for Review"
	reviewStatusInReview       = "In Review"
	reviewStatusApproved       = "Approved"
	reviewStatusRejected       = "Rejected"
)

// MarkReadyForReview runs after the complete-experiment button moved the
// experiment to completed. It reopens the experiment for the review cycle:
// back to New, the overview entry made visible, the review status set, and
// the complete button hidden until the review resolves.
type MarkReadyForReview struct {
	sapio *client.Client
}

func NewMarkReadyForReview(sapio *client.Client) *MarkReadyForReview {
	return &MarkReadyForReview{sapio: sapio}
}

func (h *MarkReadyForReview) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	expID := wctx.ExperimentID

	if err := h.sapio.UpdateExperimentStatus(ctx, expID, client.ExperimentStatusNew); err != nil {
		return nil, err
	}

	overview, err := findEntryByOption(ctx, h.sapio, expID, entryTagExperimentOverview)
	if err != nil {
		return nil, err
	}
	if overview != nil {
		if err := h.sapio.SetEntryHidden(ctx, expID, overview.ID, false); err != nil {
			return nil, err
		}
	}

	err = h.sapio.UpdateExperimentFields(ctx, expID, map[string]interface{}{
		fieldReviewStatus: reviewStatusReadyForReview,
	})
	if err != nil {
		return nil, err
	}

	options, err := h.sapio.GetExperimentOptions(ctx, expID)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = map[string]string{}
	}
	options[optionHideCompleteButton] = ""

	if err := h.sapio.UpdateExperimentOptions(ctx, expID, options); err != nil {
		return nil, err
	}

	return webhook.NewResult(true), nil
}

// UnlockExperiment reopens a completed experiment for editing: back to New,
// review status reset, and all experiment options cleared so the complete
// button shows up again.
type UnlockExperiment struct {
	sapio *client.Client
}

func NewUnlockExperiment(sapio *client.Client) *UnlockExperiment {
	return &UnlockExperiment{sapio: sapio}
}

func (h *UnlockExperiment) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	expID := wctx.ExperimentID

	if err := h.sapio.UpdateExperimentStatus(ctx, expID, client.ExperimentStatusNew); err != nil {
		return nil, err
	}

	err := h.sapio.UpdateExperimentFields(ctx, expID, map[string]interface{}{
		fieldReviewStatus: reviewStatusOpen,
	})
	if err != nil {
		return nil, err
	}

	if err := h.sapio.UpdateExperimentOptions(ctx, expID, nil); err != nil {
		return nil, err
	}

	return &webhook.Result{Passed: true, RefreshExperiment: true}, nil
}

// PreventAuthorEdit blocks the user who completed the experiment from
// updating its review details.
type PreventAuthorEdit struct {
	sapio *client.Client
}

func NewPreventAuthorEdit(sapio *client.Client) *PreventAuthorEdit {
	return &PreventAuthorEdit{sapio: sapio}
}

func (h *PreventAuthorEdit) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	rec, err := h.sapio.GetExperimentRecord(ctx, wctx.ExperimentID)
	if err != nil {
		return nil, err
	}

	if rec.StringField(fieldVeloxCompletedBy) == wctx.Username {
		return webhook.NewResultWithText(false,
			"As the Author of the experiment, you may not update review details."), nil
	}

	return webhook.NewResult(true), nil
}

// ShowCompleteExperimentButton clears every experiment option so the
// complete-workflow button reappears.
type ShowCompleteExperimentButton struct {
	sapio *client.Client
}

func NewShowCompleteExperimentButton(sapio *client.Client) *ShowCompleteExperimentButton {
	return &ShowCompleteExperimentButton{sapio: sapio}
}

func (h *ShowCompleteExperimentButton) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	if err := h.sapio.UpdateExperimentOptions(ctx, wctx.ExperimentID, nil); err != nil {
		return nil, err
	}

	return &webhook.Result{Passed: true, RefreshExperiment: true}, nil
}

// CompleteApprovedExperiment runs when the experiment overview is submitted.
// A resolved review is required, then the user confirms through a yes/no
// callback round trip before the experiment is completed and locked.
type CompleteApprovedExperiment struct {
	sapio *client.Client
}

func NewCompleteApprovedExperiment(sapio *client.Client) *CompleteApprovedExperiment {
	return &CompleteApprovedExperiment{sapio: sapio}
}

func (h *CompleteApprovedExperiment) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	rec, err := h.sapio.GetExperimentRecord(ctx, wctx.ExperimentID)
	if err != nil {
		return nil, err
	}

	status := rec.StringField(fieldReviewStatus)
	if status != reviewStatusApproved && status != reviewStatusRejected {
		return webhook.NewResultWithText(false,
			"Unable to complete Review, experiment had been neither accepted nor rejected."), nil
	}

	cb := wctx.ClientCallbackResult
	if cb == nil || cb.Type != webhook.CallbackYesNoDialog {
		return webhook.NewYesNoRequest(
			"The experiment will be marked as completed and locked.",
			"Would you like to continue?",
		), nil
	}

	if cb.Cancelled || !cb.Confirmed {
		return webhook.NewResult(false), nil
	}

	if err := h.sapio.UpdateExperimentStatus(ctx, wctx.ExperimentID, client.ExperimentStatusCompleted); err != nil {
		return nil, err
	}

	return webhook.NewResult(true), nil
}

// findEntryByOption returns the first entry carrying the option key, or nil
// when no entry does.
func findEntryByOption(ctx context.Context, sapio *client.Client, experimentID int64, optionKey string) (*client.ExperimentEntry, error) {
	entries, err := sapio.GetExperimentEntries(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if _, ok := entries[i].Options[optionKey]; ok {
			return &entries[i], nil
		}
	}

	return nil, nil
}
