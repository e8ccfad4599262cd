package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/civica/internal/models"
)

// MemoryContentRepository holds forum threads and short-form videos together
// with every user's votes and likes.
//
// All mutations are serialized, so each returned aggregate is consistent
// with the write that produced it.
type MemoryContentRepository struct {
	mu      sync.RWMutex
	posts   []models.ForumPost
	replies map[string][]models.ForumReply
	videos  []models.ShortForm

	// votes maps a post or reply id to each user's vote on it.
	votes map[string]map[string]models.VoteType
	// likes maps a video id to the users who like it.
	likes map[string]map[string]struct{}
}

// NewMemoryContentRepository returns an empty repository.
func NewMemoryContentRepository() *MemoryContentRepository {
	return &MemoryContentRepository{
		replies: make(map[string][]models.ForumReply),
		votes:   make(map[string]map[string]models.VoteType),
		likes:   make(map[string]map[string]struct{}),
	}
}

// AddPost appends a thread.
func (r *MemoryContentRepository) AddPost(p models.ForumPost) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, p)
}

// AddReply appends a reply to postID.
func (r *MemoryContentRepository) AddReply(postID string, reply models.ForumReply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[postID] = append(r.replies[postID], reply)
}

// AddShortForm appends a video.
func (r *MemoryContentRepository) AddShortForm(v models.ShortForm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos = append(r.videos, v)
}

// Posts lists threads with vote state as seen by viewerID ("" for anonymous).
func (r *MemoryContentRepository) Posts(_ context.Context, viewerID string) ([]models.ForumPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ForumPost, 0, len(r.posts))
	for _, p := range r.posts {
		p.VoteState = r.voteState(p.ID, viewerID)
		out = append(out, p)
	}
	return out, nil
}

// Post returns one thread and its replies.
func (r *MemoryContentRepository) Post(_ context.Context, id, viewerID string) (*models.ForumPost, []models.ForumReply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.postIndex(id)
	if i < 0 {
		return nil, nil, ErrNotFound
	}
	p := r.posts[i]
	p.VoteState = r.voteState(id, viewerID)
	replies := make([]models.ForumReply, 0, len(r.replies[id]))
	for _, rep := range r.replies[id] {
		rep.VoteState = r.voteState(rep.ID, viewerID)
		replies = append(replies, rep)
	}
	return &p, replies, nil
}

// VotePost records userID's vote on a thread. VoteRemove drops the vote.
func (r *MemoryContentRepository) VotePost(_ context.Context, postID, userID string, vote models.VoteType) (models.VoteState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.postIndex(postID) < 0 {
		return models.VoteState{}, ErrNotFound
	}
	return r.vote(postID, userID, vote), nil
}

// VoteReply records userID's vote on a reply of postID.
func (r *MemoryContentRepository) VoteReply(_ context.Context, postID, replyID, userID string, vote models.VoteType) (models.VoteState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, rep := range r.replies[postID] {
		if rep.ID == replyID {
			found = true
			break
		}
	}
	if !found {
		return models.VoteState{}, ErrNotFound
	}
	return r.vote(replyID, userID, vote), nil
}

// ShortForms lists videos with like state as seen by viewerID.
func (r *MemoryContentRepository) ShortForms(_ context.Context, viewerID string) ([]models.ShortForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ShortForm, 0, len(r.videos))
	for _, v := range r.videos {
		v.LikeState = r.likeState(v.ID, viewerID)
		out = append(out, v)
	}
	return out, nil
}

// ToggleLike flips userID's like on a video.
func (r *MemoryContentRepository) ToggleLike(_ context.Context, id, userID string) (models.LikeState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, v := range r.videos {
		if v.ID == id {
			found = true
			break
		}
	}
	if !found {
		return models.LikeState{}, ErrNotFound
	}

	users := r.likes[id]
	if users == nil {
		users = make(map[string]struct{})
		r.likes[id] = users
	}
	if _, ok := users[userID]; ok {
		delete(users, userID)
	} else {
		users[userID] = struct{}{}
	}
	return r.likeState(id, userID), nil
}

func (r *MemoryContentRepository) postIndex(id string) int {
	for i, p := range r.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryContentRepository) vote(targetID, userID string, vote models.VoteType) models.VoteState {
	users := r.votes[targetID]
	if users == nil {
		users = make(map[string]models.VoteType)
		r.votes[targetID] = users
	}
	if vote == models.VoteRemove || vote == models.VoteNone {
		delete(users, userID)
	} else {
		users[userID] = vote
	}
	return r.voteState(targetID, userID)
}

func (r *MemoryContentRepository) voteState(targetID, viewerID string) models.VoteState {
	var st models.VoteState
	for user, v := range r.votes[targetID] {
		switch v {
		case models.VoteUp:
			st.VoteScore++
		case models.VoteDown:
			st.VoteScore--
		}
		if user == viewerID {
			st.UserVote = v
		}
	}
	return st
}

func (r *MemoryContentRepository) likeState(id, viewerID string) models.LikeState {
	users := r.likes[id]
	_, liked := users[viewerID]
	return models.LikeState{Likes: len(users), Liked: liked && viewerID != ""}
}
