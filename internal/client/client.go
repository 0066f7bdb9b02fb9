package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/capabilitycompass/compass/internal/model"
	"github.com/capabilitycompass/compass/internal/viewer"
)

// Client talks to a running compass server. It satisfies both source
// interfaces the viewer needs.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ viewer.SubtreeSource = (*Client)(nil)
var _ viewer.DetailSource = (*Client)(nil)

func (c *Client) Subtree(ctx context.Context, sel viewer.Selection) (*model.ApiResponse, error) {
	endpoint := fmt.Sprintf("%s/api/subtree/%s/id/%d", c.BaseURL, url.PathEscape(sel.EntityType), sel.EntityID)

	query := url.Values{}
	if sel.Depth > 0 {
		query.Set("depth", strconv.Itoa(sel.Depth))
	}
	if sel.Direction != "" {
		query.Set("direction", sel.Direction)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var resp model.ApiResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NodeProperties(ctx context.Context, label, uid string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/api/properties/node-properties/%s?uid=%s", c.BaseURL, url.PathEscape(label), url.QueryEscape(uid))

	var envelope struct {
		Node       string                 `json:"node"`
		Properties map[string]interface{} `json:"properties"`
	}
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	return envelope.Properties, nil
}

// Entities lists the catalog for one entity type, for interactive pickers.
func (c *Client) Entities(ctx context.Context, entityType string) ([]map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/api/subtree/%s/all", c.BaseURL, url.PathEscape(entityType))

	var entities []map[string]interface{}
	if err := c.getJSON(ctx, endpoint, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("server returned %d: %s", res.StatusCode, body)
	}

	return json.NewDecoder(res.Body).Decode(out)
}
