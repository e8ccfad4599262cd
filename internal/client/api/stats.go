package api

import (
	"context"
	"net/http"
)

// Stats is a free-form statistics document; its shape differs per endpoint.
type Stats map[string]any

// AdminStats returns platform-wide statistics (admin only).
func (c *Client) AdminStats(ctx context.Context) (Stats, error) {
	return c.stats(ctx, "/stats/admin")
}

// UserStats returns the caller's statistics.
func (c *Client) UserStats(ctx context.Context) (Stats, error) {
	return c.stats(ctx, "/stats/user")
}

// SystemHealth returns backend health information.
func (c *Client) SystemHealth(ctx context.Context) (Stats, error) {
	return c.stats(ctx, "/stats/health")
}

func (c *Client) stats(ctx context.Context, path string) (Stats, error) {
	var out Stats
	if err := c.doer.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
