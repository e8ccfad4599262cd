package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atinyakov/civica/internal/models"
)

// Friends lists accepted friendships.
func (c *Client) Friends(ctx context.Context) ([]models.Friendship, error) {
	var out struct {
		Friends []models.Friendship `json:"friends"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/friends/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// FriendRequests lists pending incoming requests.
func (c *Client) FriendRequests(ctx context.Context) ([]models.Friendship, error) {
	var out struct {
		Requests []models.Friendship `json:"requests"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/friends/requests", nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// SendFriendRequest asks userID to become a friend.
func (c *Client) SendFriendRequest(ctx context.Context, userID string) error {
	return c.doer.Do(ctx, http.MethodPost, "/friends/request", map[string]string{"userId": userID}, nil)
}

// RespondToFriendRequest accepts or rejects a pending request.
func (c *Client) RespondToFriendRequest(ctx context.Context, friendshipID, action string) error {
	body := map[string]string{"friendshipId": friendshipID, "action": action}
	return c.doer.Do(ctx, http.MethodPost, "/friends/respond", body, nil)
}

// RemoveFriend deletes a friendship.
func (c *Client) RemoveFriend(ctx context.Context, friendshipID string) error {
	return c.doer.Do(ctx, http.MethodDelete, "/friends/"+esc(friendshipID), nil, nil)
}

// SearchUsers finds users by name or email.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.Author, error) {
	var out struct {
		Users []models.Author `json:"users"`
	}
	path := "/friends/search?" + url.Values{"q": {query}}.Encode()
	if err := c.doer.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}
