package recordmodel

import (
	"context"
	"sort"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// PlatformClient is the slice of the platform client the record model needs.
// *client.Client satisfies it.
type PlatformClient interface {
	GetParents(ctx context.Context, recordIDs []int64, parentTypeName string) (map[int64][]webhook.DataRecord, error)
	GetChildren(ctx context.Context, recordIDs []int64, childTypeName string) (map[int64][]webhook.DataRecord, error)
	CommitChanges(ctx context.Context, cs client.ChangeSet) error
}

var _ PlatformClient = (*client.Client)(nil)

// Manager owns every record model of one invocation. Each record id maps to
// exactly one model, so edits through different access paths never diverge.
type Manager struct {
	client PlatformClient

	byID             map[int64]*Record
	pendingRelations []client.ChildRelation
	pendingRemovals  []client.ChildRelation
}

func NewManager(c PlatformClient) *Manager {
	return &Manager{
		client: c,
		byID:   make(map[int64]*Record),
	}
}

// AddExistingRecord wraps a platform record in a model, reusing the model if
// the record is already known.
func (m *Manager) AddExistingRecord(rec webhook.DataRecord) *Record {
	if existing, ok := m.byID[rec.RecordID]; ok {
		return existing
	}

	fields := make(map[string]interface{}, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}

	r := &Record{
		id:           rec.RecordID,
		dataTypeName: rec.DataTypeName,
		fields:       fields,
		mgr:          m,
	}

	m.byID[rec.RecordID] = r
	return r
}

// AddExistingRecords wraps a list of platform records, preserving order.
func (m *Manager) AddExistingRecords(recs []webhook.DataRecord) []*Record {
	out := make([]*Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, m.AddExistingRecord(rec))
	}

	return out
}

func (m *Manager) addPendingRelation(parentID, childID int64) {
	m.pendingRelations = append(m.pendingRelations, client.ChildRelation{
		ParentRecordID: parentID,
		ChildRecordID:  childID,
	})
}

func (m *Manager) addPendingRemoval(parentID, childID int64) {
	m.pendingRemovals = append(m.pendingRemovals, client.ChildRelation{
		ParentRecordID: parentID,
		ChildRecordID:  childID,
	})
}

// Commit flushes buffered field writes and pending relation changes as one
// change set, applied by the platform in a single transaction. On failure
// nothing is cleared, so a retry re-sends the full set.
func (m *Manager) Commit(ctx context.Context) error {
	ids := make([]int64, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cs := client.ChangeSet{
		AddedRelations:   m.pendingRelations,
		RemovedRelations: m.pendingRemovals,
	}

	for _, id := range ids {
		r := m.byID[id]
		if len(r.dirty) == 0 {
			continue
		}

		fields := make(map[string]interface{}, len(r.dirty))
		for k, v := range r.dirty {
			fields[k] = v
		}

		cs.FieldUpdates = append(cs.FieldUpdates, client.FieldUpdate{
			RecordID:     r.id,
			DataTypeName: r.dataTypeName,
			Fields:       fields,
		})
	}

	if cs.IsEmpty() {
		return nil
	}

	if err := m.client.CommitChanges(ctx, cs); err != nil {
		return err
	}

	for _, id := range ids {
		r := m.byID[id]
		for k, v := range r.dirty {
			r.fields[k] = v
		}
		r.dirty = nil
	}
	m.pendingRelations = nil
	m.pendingRemovals = nil

	return nil
}
