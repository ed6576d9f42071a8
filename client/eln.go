package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/onetakeda/sapio-webhooks/webhook"
)

// GetExperimentRecord returns the data record backing an ELN experiment.
func (c *Client) GetExperimentRecord(ctx context.Context, experimentID int64) (*webhook.DataRecord, error) {
	var out webhook.DataRecord
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/record", experimentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateEntryFields sets fields on the data records of one experiment entry.
func (c *Client) UpdateEntryFields(ctx context.Context, experimentID, entryID int64, fields map[string]interface{}) error {
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/entry/%d/fields", experimentID, entryID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{"fields": fields}, nil)
}

// UpdateExperimentFields sets fields on the experiment's backing record.
func (c *Client) UpdateExperimentFields(ctx context.Context, experimentID int64, fields map[string]interface{}) error {
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/fields", experimentID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{"fields": fields}, nil)
}

// ExperimentStatus is the lifecycle state of an ELN experiment.
type ExperimentStatus string

const (
	ExperimentStatusNew       ExperimentStatus = "New"
	ExperimentStatusCompleted ExperimentStatus = "Completed"
)

// UpdateExperimentStatus moves the experiment to the given lifecycle state.
func (c *Client) UpdateExperimentStatus(ctx context.Context, experimentID int64, status ExperimentStatus) error {
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/status", experimentID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{"status": status}, nil)
}

// GetExperimentOptions returns the experiment option map. Options are plain
// key/value tags the client UI reads, for example to hide toolbar buttons.
func (c *Client) GetExperimentOptions(ctx context.Context, experimentID int64) (map[string]string, error) {
	var out struct {
		Options map[string]string `json:"options"`
	}
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/options", experimentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out.Options, nil
}

// UpdateExperimentOptions replaces the experiment option map. An empty map
// clears every option.
func (c *Client) UpdateExperimentOptions(ctx context.Context, experimentID int64, options map[string]string) error {
	if options == nil {
		options = map[string]string{}
	}

	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/options", experimentID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{"options": options}, nil)
}

// ExperimentEntry is one entry (step) of an ELN experiment.
type ExperimentEntry struct {
	ID      int64             `json:"entryId"`
	Name    string            `json:"name"`
	Hidden  bool              `json:"hidden"`
	Options map[string]string `json:"options"`
}

// GetExperimentEntries lists the experiment's entries in notebook order.
func (c *Client) GetExperimentEntries(ctx context.Context, experimentID int64) ([]ExperimentEntry, error) {
	var out struct {
		Entries []ExperimentEntry `json:"entries"`
	}
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/entries", experimentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out.Entries, nil
}

// SetEntryHidden toggles an entry's visibility in the notebook.
func (c *Client) SetEntryHidden(ctx context.Context, experimentID, entryID int64, hidden bool) error {
	path := fmt.Sprintf("/webservice/api/eln/experiment/%d/entry/%d/visibility", experimentID, entryID)
	return c.do(ctx, http.MethodPost, path, map[string]interface{}{"hidden": hidden}, nil)
}
