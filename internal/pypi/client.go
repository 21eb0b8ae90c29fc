// SPDX-License-Identifier: MPL-2.0

// Package pypi queries the PyPI JSON API for package metadata. It backs the
// best-effort "newer version available" hint and never gates a run.
package pypi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org"

type (
	// Client fetches package metadata from a PyPI-compatible JSON API.
	Client struct {
		http *resty.Client
	}
)

// NewClient creates a Client against baseURL (empty means pypi.org) with a
// short timeout; metadata lookups are advisory and must not stall a run.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// LatestVersion returns the newest published version of the package as
// reported by the /pypi/<name>/json endpoint.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/pypi/%s/json", name))
	if err != nil {
		return "", fmt.Errorf("query pypi metadata for %s: %w", name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("query pypi metadata for %s: HTTP %d", name, resp.StatusCode())
	}

	version := gjson.GetBytes(resp.Body(), "info.version").String()
	if version == "" {
		return "", fmt.Errorf("pypi metadata for %s has no info.version", name)
	}
	return version, nil
}
