package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/onetakeda/sapio-webhooks/webhook"
)

// queryPageSize is the page size used when walking a full record list.
const queryPageSize = 500

type recordPage struct {
	Records     []webhook.DataRecord `json:"records"`
	HasNextPage bool                 `json:"hasNextPage"`
}

// QueryAllRecordsOfType pages through every accessible record of the data
// type and returns them all at once.
func (c *Client) QueryAllRecordsOfType(ctx context.Context, dataTypeName string) ([]webhook.DataRecord, error) {
	var all []webhook.DataRecord

	for page := 0; ; page++ {
		body := map[string]interface{}{
			"dataTypeName": dataTypeName,
			"pageSize":     queryPageSize,
			"pageNumber":   page,
		}

		var out recordPage
		if err := c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/query", body, &out); err != nil {
			return nil, err
		}

		all = append(all, out.Records...)
		if !out.HasNextPage {
			break
		}
	}

	return all, nil
}

// AddRecords creates one record per field map and returns the created
// records with their assigned ids.
func (c *Client) AddRecords(ctx context.Context, dataTypeName string, fieldMaps []map[string]interface{}) ([]webhook.DataRecord, error) {
	body := map[string]interface{}{
		"dataTypeName": dataTypeName,
		"fieldMaps":    fieldMaps,
	}

	var out struct {
		Records []webhook.DataRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/add", body, &out); err != nil {
		return nil, err
	}

	return out.Records, nil
}

// FieldUpdate is one record's changed fields.
type FieldUpdate struct {
	RecordID     int64                  `json:"recordId"`
	DataTypeName string                 `json:"dataTypeName"`
	Fields       map[string]interface{} `json:"fields"`
}

// UpdateRecordFields applies all updates in one platform transaction.
func (c *Client) UpdateRecordFields(ctx context.Context, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	body := map[string]interface{}{"fieldUpdates": updates}
	return c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/fields", body, nil)
}

// ChildRelation links an existing child record under a parent.
type ChildRelation struct {
	ParentRecordID int64 `json:"parentRecordId"`
	ChildRecordID  int64 `json:"childRecordId"`
}

// AddChildren creates parent/child links in one platform transaction.
func (c *Client) AddChildren(ctx context.Context, relations []ChildRelation) error {
	if len(relations) == 0 {
		return nil
	}

	body := map[string]interface{}{"relations": relations}
	return c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/children/add", body, nil)
}

// ChangeSet is a combined batch of record changes committed in one platform
// transaction: either everything is applied or nothing is.
type ChangeSet struct {
	FieldUpdates     []FieldUpdate   `json:"fieldUpdates,omitempty"`
	AddedRelations   []ChildRelation `json:"addedRelations,omitempty"`
	RemovedRelations []ChildRelation `json:"removedRelations,omitempty"`
}

func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.FieldUpdates) == 0 && len(cs.AddedRelations) == 0 && len(cs.RemovedRelations) == 0
}

// CommitChanges applies the change set atomically.
func (c *Client) CommitChanges(ctx context.Context, cs ChangeSet) error {
	if cs.IsEmpty() {
		return nil
	}

	return c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/commit", cs, nil)
}

// DeleteRecords removes the given records of one data type.
func (c *Client) DeleteRecords(ctx context.Context, dataTypeName string, recordIDs []int64) error {
	if len(recordIDs) == 0 {
		return nil
	}

	body := map[string]interface{}{
		"dataTypeName": dataTypeName,
		"recordIds":    recordIDs,
	}
	return c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/delete", body, nil)
}

// RemoveChildren breaks parent/child links in one platform transaction.
func (c *Client) RemoveChildren(ctx context.Context, relations []ChildRelation) error {
	if len(relations) == 0 {
		return nil
	}

	body := map[string]interface{}{"relations": relations}
	return c.do(ctx, http.MethodPost, "/webservice/api/datarecordlist/children/remove", body, nil)
}

type relatedRecords struct {
	// RecordsBySourceID maps a queried record id to its related records.
	RecordsBySourceID map[int64][]webhook.DataRecord `json:"recordsBySourceId"`
}

// GetParents returns the parents of the given records having the parent data
// type, keyed by child record id.
func (c *Client) GetParents(ctx context.Context, recordIDs []int64, parentTypeName string) (map[int64][]webhook.DataRecord, error) {
	return c.related(ctx, "parents", recordIDs, parentTypeName)
}

// GetChildren returns the children of the given records having the child
// data type, keyed by parent record id.
func (c *Client) GetChildren(ctx context.Context, recordIDs []int64, childTypeName string) (map[int64][]webhook.DataRecord, error) {
	return c.related(ctx, "children", recordIDs, childTypeName)
}

func (c *Client) related(ctx context.Context, direction string, recordIDs []int64, dataTypeName string) (map[int64][]webhook.DataRecord, error) {
	if len(recordIDs) == 0 {
		return map[int64][]webhook.DataRecord{}, nil
	}

	body := map[string]interface{}{
		"recordIds":    recordIDs,
		"dataTypeName": dataTypeName,
	}

	var out relatedRecords
	path := fmt.Sprintf("/webservice/api/datarecordlist/%s", direction)
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}

	if out.RecordsBySourceID == nil {
		out.RecordsBySourceID = map[int64][]webhook.DataRecord{}
	}

	return out.RecordsBySourceID, nil
}
