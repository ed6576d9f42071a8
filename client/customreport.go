package client

import (
	"context"
	"net/http"

	"github.com/onetakeda/sapio-webhooks/reports"
)

// RunCustomReport executes the report criteria and returns the result table.
func (c *Client) RunCustomReport(ctx context.Context, criteria *reports.CustomReportCriteria) (*reports.CustomReportResult, error) {
	var out reports.CustomReportResult
	err := c.do(ctx, http.MethodPost, "/webservice/api/customreportmanager/run", criteria, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}
