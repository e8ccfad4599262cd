package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
)

func TestVotePost_RejectsUnknownVote(t *testing.T) {
	repo := repository.NewMemoryContentRepository()
	repo.AddPost(models.ForumPost{ID: "p1"})
	svc := NewContentService(repo)

	if _, err := svc.VotePost(context.Background(), "p1", "u1", "sideways"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("VotePost error = %v; want ErrInvalidInput", err)
	}
	if _, err := svc.VoteReply(context.Background(), "p1", "r1", "u1", models.VoteNone); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("VoteReply error = %v; want ErrInvalidInput", err)
	}

	got, err := svc.VotePost(context.Background(), "p1", "u1", models.VoteUp)
	if err != nil {
		t.Fatalf("VotePost returned error: %v", err)
	}
	if got != (models.VoteState{VoteScore: 1, UserVote: models.VoteUp}) {
		t.Errorf("VotePost = %+v", got)
	}
}

func TestLikeShortForm(t *testing.T) {
	repo := repository.NewMemoryContentRepository()
	repo.AddShortForm(models.ShortForm{ID: "v1"})
	svc := NewContentService(repo)

	got, err := svc.LikeShortForm(context.Background(), "v1", "u1")
	if err != nil {
		t.Fatalf("LikeShortForm returned error: %v", err)
	}
	if got != (models.LikeState{Likes: 1, Liked: true}) {
		t.Errorf("LikeShortForm = %+v", got)
	}
	if _, err := svc.LikeShortForm(context.Background(), "v2", "u1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing video error = %v; want ErrNotFound", err)
	}
}
