package handlers

import (
	"context"
	"regexp"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/recordmodel"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// whenNewAddToRe reads the parent type from the data type description, e.g.
// <!-- WHEN NEW ADD TO: C_StudyLog -->
var whenNewAddToRe = regexp.MustCompile(`<!--\s*WHEN\s*NEW\s*ADD\s*TO:\s*(\w+)\s*-->`)

// AddParentOnSave relates newly created records of a tagged data type to a
// single parent record. Invoked by an on-save rule of the form "When the
// {DataType} is new".
type AddParentOnSave struct {
	sapio *client.Client
}

func NewAddParentOnSave(sapio *client.Client) *AddParentOnSave {
	return &AddParentOnSave{sapio: sapio}
}

func (h *AddParentOnSave) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	def, err := h.sapio.GetDataTypeDefinition(ctx, wctx.DataTypeName)
	if err != nil {
		return nil, err
	}

	matches := whenNewAddToRe.FindAllStringSubmatch(def.Description, -1)
	if len(matches) == 0 {
		// Data type is not tagged; nothing to do.
		return webhook.NewResult(true), nil
	}

	parentType := matches[len(matches)-1][1]

	candidates, err := h.sapio.QueryAllRecordsOfType(ctx, parentType)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return webhook.NewResult(true), nil
	}

	mgr := recordmodel.NewManager(h.sapio)

	// The parent type is expected to expose a single accessible record;
	// take the last one to match how the platform orders the query.
	potentialParents := mgr.AddExistingRecords(candidates)
	selectedParent := potentialParents[len(potentialParents)-1]

	newRecords := mgr.AddExistingRecords(wctx.DataRecordList)
	selectedParent.AddChildren(newRecords)

	if err := mgr.Commit(ctx); err != nil {
		return nil, err
	}

	return webhook.NewResult(true), nil
}
