package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/reports"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

const mediaTagged = `<!-- TAKEDA DYNAMIC SELECTION: DATA TYPE [C_MediaOption] FILTER BY FIELD [C_CellLine] -->`

func dynamicSelectionPlatform(t *testing.T, tag string, reportCriteria **reports.CustomReportCriteria) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/webservice/api/datatypemanager/fielddefinitionlist/C_CellCultureMeasurements",
		func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"fields": []client.FieldDefinition{
					{DataFieldName: "C_CellLine"},
					{DataFieldName: "C_Media", Tag: tag},
				},
			})
		})

	mux.HandleFunc("/webservice/api/customreportmanager/run",
		func(w http.ResponseWriter, r *http.Request) {
			var criteria reports.CustomReportCriteria
			require.NoError(t, json.NewDecoder(r.Body).Decode(&criteria))
			*reportCriteria = &criteria

			_ = json.NewEncoder(w).Encode(reports.CustomReportResult{
				ResultTable: [][]string{{"CD Media A"}, {"CD Media B"}},
			})
		})

	return mux
}

func TestDynamicSelection(t *testing.T) {
	var criteria *reports.CustomReportCriteria
	h := NewDynamicSelection(newSapioClient(t, dynamicSelectionPlatform(t, mediaTagged, &criteria)))

	res, err := h.Execute(context.Background(), &webhook.Context{
		DataTypeName:  dataTypeCellCultureMeasurements,
		DataFieldName: "C_Media",
		FieldMap:      map[string]interface{}{"C_CellLine": "CHO-K1"},
	})
	require.NoError(t, err)

	require.True(t, res.Passed)
	require.Equal(t, []string{"CD Media A", "CD Media B"}, res.ListValues)

	require.NotNil(t, criteria)
	require.Equal(t, "C_MediaOption", criteria.RootDataType)
	require.Len(t, criteria.Columns, 1)
	require.Equal(t, optionValueField, criteria.Columns[0].DataFieldName)
	require.Equal(t, optionKeyField, criteria.RootTerm.DataFieldName)
	require.Equal(t, []string{"CHO-K1"}, criteria.RootTerm.Values)
}

func TestDynamicSelection_CommaSeparatedFilter(t *testing.T) {
	var criteria *reports.CustomReportCriteria
	h := NewDynamicSelection(newSapioClient(t, dynamicSelectionPlatform(t, mediaTagged, &criteria)))

	_, err := h.Execute(context.Background(), &webhook.Context{
		DataTypeName:  dataTypeCellCultureMeasurements,
		DataFieldName: "C_Media",
		FieldMap:      map[string]interface{}{"C_CellLine": "CHO-K1, HEK293"},
	})
	require.NoError(t, err)

	require.NotNil(t, criteria)
	require.Equal(t, []string{"CHO-K1", "HEK293"}, criteria.RootTerm.Values)
}

func TestDynamicSelection_Misconfigured(t *testing.T) {
	tests := []struct {
		name          string
		dataFieldName string
		wantText      string
	}{
		{
			name:          "field tag has no marker",
			dataFieldName: "C_CellLine",
			wantText:      "Dynamic Selection List field has not been configured correctly.",
		},
		{
			name:          "triggering field is not in the data type",
			dataFieldName: "C_Missing",
			wantText:      "Unable to find dynamic selection criteria. Please contact a system administrator.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var criteria *reports.CustomReportCriteria
			h := NewDynamicSelection(newSapioClient(t, dynamicSelectionPlatform(t, mediaTagged, &criteria)))

			res, err := h.Execute(context.Background(), &webhook.Context{
				DataTypeName:  dataTypeCellCultureMeasurements,
				DataFieldName: tc.dataFieldName,
			})
			require.NoError(t, err)

			require.False(t, res.Passed)
			require.Equal(t, tc.wantText, res.DisplayText)
			require.Nil(t, criteria)
		})
	}
}
