package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/civica/internal/models"
)

// ShortFormList is a page of short-form videos.
type ShortFormList struct {
	Contents   []models.ShortForm `json:"contents"`
	Pagination Pagination         `json:"pagination"`
}

// NewShortForm is a video submission.
type NewShortForm struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VideoURL    string   `json:"video_url"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// ShortForms lists short-form videos.
func (c *Client) ShortForms(ctx context.Context, p ListParams) (*ShortFormList, error) {
	var out ShortFormList
	if err := c.doer.Do(ctx, http.MethodGet, "/short-form"+p.encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShortForm fetches one video.
func (c *Client) ShortForm(ctx context.Context, id string) (*models.ShortForm, error) {
	var out struct {
		Content models.ShortForm `json:"content"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/short-form/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Content, nil
}

// CreateShortForm submits a video for moderation.
func (c *Client) CreateShortForm(ctx context.Context, sf NewShortForm) (*models.ShortForm, error) {
	var out struct {
		Content models.ShortForm `json:"content"`
	}
	if err := c.doer.Do(ctx, http.MethodPost, "/short-form", sf, &out); err != nil {
		return nil, err
	}
	return &out.Content, nil
}

// LikeShortForm toggles the viewer's like; the backend returns the new aggregate.
func (c *Client) LikeShortForm(ctx context.Context, id string) (*models.LikeState, error) {
	var out models.LikeState
	if err := c.doer.Do(ctx, http.MethodPost, "/short-form/"+esc(id)+"/like", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IncrementView counts one view of a video.
func (c *Client) IncrementView(ctx context.Context, id string) error {
	return c.doer.Do(ctx, http.MethodPost, "/short-form/"+esc(id)+"/view", nil, nil)
}

// ModerateShortForm approves or rejects a video (admin only).
func (c *Client) ModerateShortForm(ctx context.Context, id, status, rejectionReason string) error {
	body := map[string]string{"status": status}
	if rejectionReason != "" {
		body["rejection_reason"] = rejectionReason
	}
	return c.doer.Do(ctx, http.MethodPut, "/short-form/"+esc(id)+"/moderate", body, nil)
}

// DeleteShortForm removes a video.
func (c *Client) DeleteShortForm(ctx context.Context, id string) error {
	return c.doer.Do(ctx, http.MethodDelete, "/short-form/"+esc(id), nil, nil)
}
