// Package api binds the backend's REST endpoints to typed Go calls. Every
// call goes through the gateway, so credential handling and error
// notification are uniform across screens.
package api

import (
	"context"
	"net/url"
	"strconv"
)

// Doer sends one request. *gateway.Gateway implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Client exposes the backend endpoints.
type Client struct {
	doer Doer
}

// New returns a Client sending requests through doer.
func New(doer Doer) *Client {
	return &Client{doer: doer}
}

// ListParams are the common list filters accepted by list endpoints.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Status   string
}

func (p ListParams) encode() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", itoa(p.Limit))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Pagination is the paging block returned by list endpoints.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

func esc(s string) string { return url.PathEscape(s) }

func itoa(n int) string { return strconv.Itoa(n) }
