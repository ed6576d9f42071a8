package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Picklist is a named list of selectable values maintained on the platform.
type Picklist struct {
	Name    string   `json:"name"`
	Entries []string `json:"entryList"`
}

// GetPicklist fetches a picklist by name. A missing picklist returns nil
// without error, matching the platform's absent-vs-empty distinction.
func (c *Client) GetPicklist(ctx context.Context, name string) (*Picklist, error) {
	var out Picklist
	path := "/webservice/api/picklistmanager/picklist/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}

		return nil, err
	}

	return &out, nil
}
