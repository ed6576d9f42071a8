package client

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/onetakeda/sapio-webhooks/reports"
)

// DataTypeDefinition is the platform's description of a data type. Admins
// hang behavioral tags off the description; several webhooks key off them.
type DataTypeDefinition struct {
	DataTypeName string `json:"dataTypeName"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
}

// FieldDefinition describes one field of a data type.
type FieldDefinition struct {
	DataFieldName string            `json:"dataFieldName"`
	DisplayName   string            `json:"displayName"`
	DataFieldType reports.FieldType `json:"dataFieldType"`

	// Tag carries admin-configured behavior markers, matched by regex in
	// the webhooks that consume them.
	Tag string `json:"tag"`
}

// Layout types mirror the default form layout: tabs hold components, form
// components hold field positions.

type FieldPosition struct {
	DataFieldName string `json:"dataFieldName"`
	Order         int    `json:"order"`
}

type LayoutComponent struct {
	ComponentName string          `json:"componentName"`
	ComponentType string          `json:"componentType"`
	Order         int             `json:"order"`
	Positions     []FieldPosition `json:"positions"`
}

// ComponentTypeForm marks components whose positions lay out data fields.
const ComponentTypeForm = "FORM"

type LayoutTab struct {
	TabName    string            `json:"tabName"`
	TabOrder   int               `json:"tabOrder"`
	Components []LayoutComponent `json:"components"`
}

type DataTypeLayout struct {
	DataTypeName string      `json:"dataTypeName"`
	Tabs         []LayoutTab `json:"tabs"`
}

// dataTypeCache memoizes per-type lookups for the life of one invocation.
type dataTypeCache struct {
	mu     sync.Mutex
	fields map[string][]FieldDefinition
}

func newDataTypeCache() *dataTypeCache {
	return &dataTypeCache{fields: make(map[string][]FieldDefinition)}
}

// GetDataTypeDefinition fetches the definition of the named data type.
func (c *Client) GetDataTypeDefinition(ctx context.Context, dataTypeName string) (*DataTypeDefinition, error) {
	var out DataTypeDefinition
	err := c.do(ctx, http.MethodGet, "/webservice/api/datatypemanager/datatypedefinition/"+dataTypeName, nil, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// GetFieldDefinitionList fetches the field definitions of the named data
// type, memoized per client.
func (c *Client) GetFieldDefinitionList(ctx context.Context, dataTypeName string) ([]FieldDefinition, error) {
	c.dataTypes.mu.Lock()
	cached, ok := c.dataTypes.fields[dataTypeName]
	c.dataTypes.mu.Unlock()
	if ok {
		return cached, nil
	}

	var out struct {
		Fields []FieldDefinition `json:"fields"`
	}
	err := c.do(ctx, http.MethodGet, "/webservice/api/datatypemanager/fielddefinitionlist/"+dataTypeName, nil, &out)
	if err != nil {
		return nil, err
	}

	c.dataTypes.mu.Lock()
	c.dataTypes.fields[dataTypeName] = out.Fields
	c.dataTypes.mu.Unlock()

	return out.Fields, nil
}

// IsFieldInDataType reports whether the data type declares the field.
func (c *Client) IsFieldInDataType(ctx context.Context, dataTypeName, fieldName string) (bool, error) {
	fields, err := c.GetFieldDefinitionList(ctx, dataTypeName)
	if err != nil {
		return false, err
	}

	for _, f := range fields {
		if f.DataFieldName == fieldName {
			return true, nil
		}
	}

	return false, nil
}

// GetDefaultLayout fetches the default form layout of the named data type.
func (c *Client) GetDefaultLayout(ctx context.Context, dataTypeName string) (*DataTypeLayout, error) {
	var out DataTypeLayout
	err := c.do(ctx, http.MethodGet, "/webservice/api/datatypemanager/defaultlayout/"+dataTypeName, nil, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// FieldDefinitionsInOrder returns the data type's field definitions in the
// order the default layout presents them: by tab, then component, then
// position. Fields absent from the layout are omitted; fields placed twice
// appear twice.
func (c *Client) FieldDefinitionsInOrder(ctx context.Context, dataTypeName string) ([]FieldDefinition, error) {
	fields, err := c.GetFieldDefinitionList(ctx, dataTypeName)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, nil
	}

	byName := make(map[string]FieldDefinition, len(fields))
	for _, f := range fields {
		byName[f.DataFieldName] = f
	}

	layout, err := c.GetDefaultLayout(ctx, dataTypeName)
	if err != nil {
		return nil, err
	}

	tabs := append([]LayoutTab(nil), layout.Tabs...)
	sort.SliceStable(tabs, func(i, j int) bool { return tabs[i].TabOrder < tabs[j].TabOrder })

	var ordered []FieldDefinition
	for _, tab := range tabs {
		components := append([]LayoutComponent(nil), tab.Components...)
		sort.SliceStable(components, func(i, j int) bool { return components[i].Order < components[j].Order })

		for _, component := range components {
			if component.ComponentType != ComponentTypeForm {
				continue
			}

			positions := append([]FieldPosition(nil), component.Positions...)
			sort.SliceStable(positions, func(i, j int) bool { return positions[i].Order < positions[j].Order })

			for _, pos := range positions {
				if f, ok := byName[pos.DataFieldName]; ok {
					ordered = append(ordered, f)
				}
			}
		}
	}

	return ordered, nil
}
