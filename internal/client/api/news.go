package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/civica/internal/models"
)

// NewsList is a page of articles.
type NewsList struct {
	News       []models.NewsArticle `json:"news"`
	Pagination Pagination           `json:"pagination"`
}

// News lists articles.
func (c *Client) News(ctx context.Context, p ListParams) (*NewsList, error) {
	var out NewsList
	if err := c.doer.Do(ctx, http.MethodGet, "/news"+p.encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Article fetches one article by slug.
func (c *Client) Article(ctx context.Context, slug string) (*models.NewsArticle, error) {
	var out struct {
		News models.NewsArticle `json:"news"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/news/"+esc(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out.News, nil
}

// CreateArticle publishes an article (admin only).
func (c *Client) CreateArticle(ctx context.Context, a models.NewsArticle) (*models.NewsArticle, error) {
	var out struct {
		News models.NewsArticle `json:"news"`
	}
	if err := c.doer.Do(ctx, http.MethodPost, "/news", a, &out); err != nil {
		return nil, err
	}
	return &out.News, nil
}

// UpdateArticle replaces an article (admin only).
func (c *Client) UpdateArticle(ctx context.Context, id string, a models.NewsArticle) (*models.NewsArticle, error) {
	var out struct {
		News models.NewsArticle `json:"news"`
	}
	if err := c.doer.Do(ctx, http.MethodPut, "/news/"+esc(id), a, &out); err != nil {
		return nil, err
	}
	return &out.News, nil
}

// DeleteArticle removes an article (admin only).
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.doer.Do(ctx, http.MethodDelete, "/news/"+esc(id), nil, nil)
}

// LikeArticle likes an article and returns the new like count.
func (c *Client) LikeArticle(ctx context.Context, id string) (int, error) {
	var out struct {
		Likes int `json:"likes"`
	}
	if err := c.doer.Do(ctx, http.MethodPost, "/news/"+esc(id)+"/like", nil, &out); err != nil {
		return 0, err
	}
	return out.Likes, nil
}
