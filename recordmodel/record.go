// Package recordmodel layers an in-memory model graph over platform data
// records: field edits are tracked per record and flushed, together with new
// parent/child links, as a single change set.
package recordmodel

import (
	"encoding/json"
	"math"
)

// Record is one data record held by a Manager. Field writes are buffered
// until the manager commits.
type Record struct {
	id           int64
	dataTypeName string
	fields       map[string]interface{}
	dirty        map[string]interface{}

	parents  map[string][]*Record
	children map[string][]*Record

	mgr *Manager
}

func (r *Record) RecordID() int64 {
	return r.id
}

func (r *Record) DataTypeName() string {
	return r.dataTypeName
}

// FieldValue returns the current value of the field, including uncommitted
// writes.
func (r *Record) FieldValue(name string) interface{} {
	if v, ok := r.dirty[name]; ok {
		return v
	}

	return r.fields[name]
}

// SetFieldValue buffers a field write until the next commit.
func (r *Record) SetFieldValue(name string, value interface{}) {
	if r.dirty == nil {
		r.dirty = make(map[string]interface{})
	}

	r.dirty[name] = value
}

// StringField returns the field as a string, or "" for absent or non-string
// values.
func (r *Record) StringField(name string) string {
	if s, ok := r.FieldValue(name).(string); ok {
		return s
	}

	return ""
}

// Int64Field returns the field as an int64. JSON-decoded numbers arrive as
// float64 or json.Number and are converted.
func (r *Record) Int64Field(name string) int64 {
	switch v := r.FieldValue(name).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(math.Round(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float64Field returns the field as a float64, or 0 when absent.
func (r *Record) Float64Field(name string) float64 {
	switch v := r.FieldValue(name).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ParentsOfType returns loaded parents of the given data type. Relationships
// must have been loaded through the manager first.
func (r *Record) ParentsOfType(dataTypeName string) []*Record {
	return r.parents[dataTypeName]
}

// ChildrenOfType returns loaded children of the given data type.
func (r *Record) ChildrenOfType(dataTypeName string) []*Record {
	return r.children[dataTypeName]
}

// AddChildren links the given records under this one. The links are created
// on the next commit.
func (r *Record) AddChildren(children []*Record) {
	for _, child := range children {
		r.attachChild(child)
		child.attachParent(r)
		r.mgr.addPendingRelation(r.id, child.id)
	}
}

// RemoveChildren unlinks the given records from this one. The links are
// removed on the next commit.
func (r *Record) RemoveChildren(children []*Record) {
	for _, child := range children {
		r.detachChild(child)
		child.detachParent(r)
		r.mgr.addPendingRemoval(r.id, child.id)
	}
}

func (r *Record) attachParent(parent *Record) {
	if r.parents == nil {
		r.parents = make(map[string][]*Record)
	}

	for _, existing := range r.parents[parent.dataTypeName] {
		if existing.id == parent.id {
			return
		}
	}

	r.parents[parent.dataTypeName] = append(r.parents[parent.dataTypeName], parent)
}

func (r *Record) attachChild(child *Record) {
	if r.children == nil {
		r.children = make(map[string][]*Record)
	}

	for _, existing := range r.children[child.dataTypeName] {
		if existing.id == child.id {
			return
		}
	}

	r.children[child.dataTypeName] = append(r.children[child.dataTypeName], child)
}

func (r *Record) detachChild(child *Record) {
	list := r.children[child.dataTypeName]
	for i, existing := range list {
		if existing.id == child.id {
			r.children[child.dataTypeName] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (r *Record) detachParent(parent *Record) {
	list := r.parents[parent.dataTypeName]
	for i, existing := range list {
		if existing.id == parent.id {
			r.parents[parent.dataTypeName] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
