package recordmodel

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

type fakePlatform struct {
	parents  map[int64][]webhook.DataRecord
	children map[int64][]webhook.DataRecord

	commits []client.ChangeSet

	commitErr error
}

func (f *fakePlatform) GetParents(ctx context.Context, recordIDs []int64, parentTypeName string) (map[int64][]webhook.DataRecord, error) {
	return filterByType(f.parents, recordIDs, parentTypeName), nil
}

func (f *fakePlatform) GetChildren(ctx context.Context, recordIDs []int64, childTypeName string) (map[int64][]webhook.DataRecord, error) {
	return filterByType(f.children, recordIDs, childTypeName), nil
}

func (f *fakePlatform) CommitChanges(ctx context.Context, cs client.ChangeSet) error {
	if f.commitErr != nil {
		return f.commitErr
	}

	f.commits = append(f.commits, cs)
	return nil
}

func filterByType(src map[int64][]webhook.DataRecord, ids []int64, dataTypeName string) map[int64][]webhook.DataRecord {
	out := make(map[int64][]webhook.DataRecord)
	for _, id := range ids {
		for _, rec := range src[id] {
			if rec.DataTypeName == dataTypeName {
				out[id] = append(out[id], rec)
			}
		}
	}

	return out
}

func TestManager_AddExistingRecord_Dedupes(t *testing.T) {
	m := NewManager(&fakePlatform{})

	a := m.AddExistingRecord(webhook.DataRecord{RecordID: 7, DataTypeName: "Sample"})
	b := m.AddExistingRecord(webhook.DataRecord{RecordID: 7, DataTypeName: "Sample"})

	require.Same(t, a, b)
}

func TestManager_LoadPath(t *testing.T) {
	platform := &fakePlatform{
		parents: map[int64][]webhook.DataRecord{
			10: {{RecordID: 1, DataTypeName: "Sample", Fields: map[string]interface{}{"Status": "Active"}}},
			11: {{RecordID: 1, DataTypeName: "Sample"}},
		},
		children: map[int64][]webhook.DataRecord{
			1: {
				{RecordID: 20, DataTypeName: "ELNSampleDetail"},
				{RecordID: 21, DataTypeName: "ELNSampleDetail"},
			},
		},
	}

	m := NewManager(platform)
	details := m.AddExistingRecords([]webhook.DataRecord{
		{RecordID: 10, DataTypeName: "ELNSampleDetail"},
		{RecordID: 11, DataTypeName: "ELNSampleDetail"},
	})

	path := NewPath().Parent("Sample").Child("ELNSampleDetail")
	require.NoError(t, m.LoadPath(context.Background(), details, path))

	parents := details[0].ParentsOfType("Sample")
	require.Len(t, parents, 1)
	require.Equal(t, "Active", parents[0].StringField("Status"))

	// both details resolve to the same shared parent model
	require.Same(t, parents[0], details[1].ParentsOfType("Sample")[0])

	siblings := parents[0].ChildrenOfType("ELNSampleDetail")
	require.Len(t, siblings, 2)

	// relationships attach both ways
	require.Same(t, parents[0], siblings[0].ParentsOfType("Sample")[0])
}

func TestManager_Commit_BatchesDirtyFields(t *testing.T) {
	platform := &fakePlatform{}
	m := NewManager(platform)

	recs := m.AddExistingRecords([]webhook.DataRecord{
		{RecordID: 3, DataTypeName: "Sample", Fields: map[string]interface{}{"C_Day": int64(1)}},
		{RecordID: 1, DataTypeName: "Sample"},
		{RecordID: 2, DataTypeName: "Sample"},
	})

	recs[0].SetFieldValue("C_Day", int64(4))
	recs[1].SetFieldValue("C_DaysSinceD0", 4.5)

	require.NoError(t, m.Commit(context.Background()))

	require.Len(t, platform.commits, 1)
	updates := platform.commits[0].FieldUpdates

	// one update per dirty record, ordered by id; untouched records are
	// not sent
	require.Len(t, updates, 2)
	require.Equal(t, int64(1), updates[0].RecordID)
	require.Equal(t, map[string]interface{}{"C_DaysSinceD0": 4.5}, updates[0].Fields)
	require.Equal(t, int64(3), updates[1].RecordID)
	require.Equal(t, map[string]interface{}{"C_Day": int64(4)}, updates[1].Fields)

	// dirty buffers drain into the committed state; a clean commit is a no-op
	require.Equal(t, int64(4), recs[0].Int64Field("C_Day"))
	require.NoError(t, m.Commit(context.Background()))
	require.Len(t, platform.commits, 1)
}

func TestManager_Commit_SingleChangeSet(t *testing.T) {
	platform := &fakePlatform{
		children: map[int64][]webhook.DataRecord{
			1: {{RecordID: 9, DataTypeName: "ELNSampleDetail"}},
		},
	}
	m := NewManager(platform)

	parent := m.AddExistingRecord(webhook.DataRecord{RecordID: 1, DataTypeName: "Sample"})
	require.NoError(t, m.LoadPath(context.Background(), []*Record{parent}, NewPath().Child("ELNSampleDetail")))

	stale := parent.ChildrenOfType("ELNSampleDetail")[0]
	fresh := m.AddExistingRecord(webhook.DataRecord{RecordID: 2, DataTypeName: "ELNSampleDetail"})

	parent.SetFieldValue("Status", "Done")
	parent.RemoveChildren([]*Record{stale})
	parent.AddChildren([]*Record{fresh})

	require.NoError(t, m.Commit(context.Background()))

	// field writes and relation changes travel together in one request
	require.Len(t, platform.commits, 1)
	cs := platform.commits[0]
	require.Len(t, cs.FieldUpdates, 1)
	require.Equal(t, "Done", cs.FieldUpdates[0].Fields["Status"])
	require.Equal(t, []client.ChildRelation{{ParentRecordID: 1, ChildRecordID: 2}}, cs.AddedRelations)
	require.Equal(t, []client.ChildRelation{{ParentRecordID: 1, ChildRecordID: 9}}, cs.RemovedRelations)
}

func TestManager_Commit_FailureKeepsChangeSet(t *testing.T) {
	platform := &fakePlatform{commitErr: errors.New("platform down")}
	m := NewManager(platform)

	parent := m.AddExistingRecord(webhook.DataRecord{RecordID: 1, DataTypeName: "Sample"})
	child := m.AddExistingRecord(webhook.DataRecord{RecordID: 2, DataTypeName: "ELNSampleDetail"})

	parent.SetFieldValue("Status", "Done")
	parent.AddChildren([]*Record{child})

	require.Error(t, m.Commit(context.Background()))
	require.Empty(t, platform.commits)

	// a retry after the fault re-sends the full change set
	platform.commitErr = nil
	require.NoError(t, m.Commit(context.Background()))

	require.Len(t, platform.commits, 1)
	cs := platform.commits[0]
	require.Equal(t, "Done", cs.FieldUpdates[0].Fields["Status"])
	require.Equal(t, []client.ChildRelation{{ParentRecordID: 1, ChildRecordID: 2}}, cs.AddedRelations)
}

func TestRecord_RemoveChildren(t *testing.T) {
	platform := &fakePlatform{
		children: map[int64][]webhook.DataRecord{
			1: {{RecordID: 2, DataTypeName: "ELNSampleDetail"}},
		},
	}
	m := NewManager(platform)

	parent := m.AddExistingRecord(webhook.DataRecord{RecordID: 1, DataTypeName: "Sample"})
	require.NoError(t, m.LoadPath(context.Background(), []*Record{parent}, NewPath().Child("ELNSampleDetail")))

	child := parent.ChildrenOfType("ELNSampleDetail")[0]
	parent.RemoveChildren([]*Record{child})

	require.Empty(t, parent.ChildrenOfType("ELNSampleDetail"))
	require.Empty(t, child.ParentsOfType("Sample"))

	require.NoError(t, m.Commit(context.Background()))

	require.Len(t, platform.commits, 1)
	require.Equal(t, []client.ChildRelation{{ParentRecordID: 1, ChildRecordID: 2}}, platform.commits[0].RemovedRelations)
}

func TestRecord_FieldValue_PrefersUncommitted(t *testing.T) {
	m := NewManager(&fakePlatform{})
	r := m.AddExistingRecord(webhook.DataRecord{
		RecordID:     1,
		DataTypeName: "Sample",
		Fields:       map[string]interface{}{"C_Day": float64(2)},
	})

	require.Equal(t, int64(2), r.Int64Field("C_Day"))

	r.SetFieldValue("C_Day", int64(5))
	require.Equal(t, int64(5), r.Int64Field("C_Day"))
}
