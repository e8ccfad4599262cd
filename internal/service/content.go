package service

import (
	"context"

	"github.com/atinyakov/civica/internal/models"
)

// ContentRepository defines the persistence operations
// required by the content service.
type ContentRepository interface {
	Posts(ctx context.Context, viewerID string) ([]models.ForumPost, error)
	Post(ctx context.Context, id, viewerID string) (*models.ForumPost, []models.ForumReply, error)
	VotePost(ctx context.Context, postID, userID string, vote models.VoteType) (models.VoteState, error)
	VoteReply(ctx context.Context, postID, replyID, userID string, vote models.VoteType) (models.VoteState, error)
	ShortForms(ctx context.Context, viewerID string) ([]models.ShortForm, error)
	ToggleLike(ctx context.Context, id, userID string) (models.LikeState, error)
}

// ContentService serves forum threads and short-form videos and records
// votes and likes on them.
type ContentService struct {
	repo ContentRepository
}

// NewContentService constructs a ContentService on repo.
func NewContentService(repo ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

func (s *ContentService) Posts(ctx context.Context, viewerID string) ([]models.ForumPost, error) {
	return s.repo.Posts(ctx, viewerID)
}

func (s *ContentService) Post(ctx context.Context, id, viewerID string) (*models.ForumPost, []models.ForumReply, error) {
	return s.repo.Post(ctx, id, viewerID)
}

// VotePost sets userID's vote on a thread to vote, which must be up, down
// or remove.
func (s *ContentService) VotePost(ctx context.Context, postID, userID string, vote models.VoteType) (models.VoteState, error) {
	if !votable(vote) {
		return models.VoteState{}, ErrInvalidInput
	}
	return s.repo.VotePost(ctx, postID, userID, vote)
}

// VoteReply sets userID's vote on a reply.
func (s *ContentService) VoteReply(ctx context.Context, postID, replyID, userID string, vote models.VoteType) (models.VoteState, error) {
	if !votable(vote) {
		return models.VoteState{}, ErrInvalidInput
	}
	return s.repo.VoteReply(ctx, postID, replyID, userID, vote)
}

func (s *ContentService) ShortForms(ctx context.Context, viewerID string) ([]models.ShortForm, error) {
	return s.repo.ShortForms(ctx, viewerID)
}

// LikeShortForm toggles userID's like on a video.
func (s *ContentService) LikeShortForm(ctx context.Context, id, userID string) (models.LikeState, error) {
	return s.repo.ToggleLike(ctx, id, userID)
}

func votable(v models.VoteType) bool {
	return v == models.VoteUp || v == models.VoteDown || v == models.VoteRemove
}
