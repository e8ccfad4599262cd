package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/models"
)

// VoteResult is the backend's answer to a vote.
type VoteResult struct {
	VoteScore int
	UserVote  models.VoteType
	// HasUserVote reports whether the response carried a userVote field at all
	// (null counts as present and means no vote).
	HasUserVote bool
}

// UnmarshalJSON records whether userVote was present.
func (v *VoteResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		VoteScore int             `json:"voteScore"`
		UserVote  json.RawMessage `json:"userVote"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v.VoteScore = raw.VoteScore
	v.UserVote = models.VoteNone
	v.HasUserVote = raw.UserVote != nil
	if v.HasUserVote && !bytes.Equal(raw.UserVote, []byte("null")) {
		var s string
		if err := json.Unmarshal(raw.UserVote, &s); err != nil {
			return err
		}
		v.UserVote = models.VoteType(s)
	}
	return nil
}

// PostList is a page of forum posts.
type PostList struct {
	Posts      []models.ForumPost `json:"posts"`
	Pagination Pagination         `json:"pagination"`
}

// PostDetail is a post with its replies.
type PostDetail struct {
	Post    models.ForumPost    `json:"post"`
	Replies []models.ForumReply `json:"replies"`
}

// NewPost is a forum post to create. Image is optional.
type NewPost struct {
	Title         string
	Content       string
	Category      string
	Tags          []string
	Image         io.Reader
	ImageFilename string
}

// Posts lists forum posts.
func (c *Client) Posts(ctx context.Context, p ListParams) (*PostList, error) {
	var out PostList
	if err := c.doer.Do(ctx, http.MethodGet, "/forum"+p.encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Post fetches one post and its replies.
func (c *Client) Post(ctx context.Context, id string) (*PostDetail, error) {
	var out PostDetail
	if err := c.doer.Do(ctx, http.MethodGet, "/forum/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost creates a post, sent as multipart so an image can ride along.
// Tags are sent as a JSON array string.
func (c *Client) CreatePost(ctx context.Context, np NewPost) (*models.ForumPost, error) {
	body := &gateway.Multipart{Fields: []gateway.Field{
		{Name: "title", Value: np.Title},
		{Name: "content", Value: np.Content},
		{Name: "category", Value: np.Category},
	}}
	if len(np.Tags) > 0 {
		tags, err := json.Marshal(np.Tags)
		if err != nil {
			return nil, err
		}
		body.Fields = append(body.Fields, gateway.Field{Name: "tags", Value: string(tags)})
	}
	if np.Image != nil {
		body.Files = append(body.Files, gateway.File{Field: "image", Filename: np.ImageFilename, Content: np.Image})
	}

	var out struct {
		Post models.ForumPost `json:"post"`
	}
	if err := c.doer.Do(ctx, http.MethodPost, "/forum", body, &out); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

// VotePost sends the target vote for a post.
func (c *Client) VotePost(ctx context.Context, postID string, vote models.VoteType) (*VoteResult, error) {
	var out VoteResult
	body := map[string]models.VoteType{"voteType": vote}
	if err := c.doer.Do(ctx, http.MethodPost, "/forum/"+esc(postID)+"/vote", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddReply posts a reply to a thread.
func (c *Client) AddReply(ctx context.Context, postID, content string) (*models.ForumReply, error) {
	var out struct {
		Reply models.ForumReply `json:"reply"`
	}
	body := map[string]string{"content": content}
	if err := c.doer.Do(ctx, http.MethodPost, "/forum/"+esc(postID)+"/replies", body, &out); err != nil {
		return nil, err
	}
	return &out.Reply, nil
}

// VoteReply sends the target vote for a reply.
func (c *Client) VoteReply(ctx context.Context, postID, replyID string, vote models.VoteType) (*VoteResult, error) {
	var out VoteResult
	body := map[string]models.VoteType{"voteType": vote}
	path := "/forum/" + esc(postID) + "/replies/" + esc(replyID) + "/vote"
	if err := c.doer.Do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
