package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/middleware"
	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
	"github.com/atinyakov/civica/internal/service"
)

// ContentService defines the forum and short-form operations
// required by the HTTP handlers.
type ContentService interface {
	Posts(ctx context.Context, viewerID string) ([]models.ForumPost, error)
	Post(ctx context.Context, id, viewerID string) (*models.ForumPost, []models.ForumReply, error)
	VotePost(ctx context.Context, postID, userID string, vote models.VoteType) (models.VoteState, error)
	VoteReply(ctx context.Context, postID, replyID, userID string, vote models.VoteType) (models.VoteState, error)
	ShortForms(ctx context.Context, viewerID string) ([]models.ShortForm, error)
	LikeShortForm(ctx context.Context, id, userID string) (models.LikeState, error)
}

// ContentHandler serves forum threads and short-form videos.
type ContentHandler struct {
	ContentService ContentService
	Log            *zap.Logger
}

type pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

func singlePage(n int) pagination {
	return pagination{Page: 1, Pages: 1, Total: n}
}

// voteResponse reports the aggregate after a vote. UserVote is null when the
// caller holds no vote.
type voteResponse struct {
	VoteScore int              `json:"voteScore"`
	UserVote  *models.VoteType `json:"userVote"`
}

func newVoteResponse(st models.VoteState) voteResponse {
	resp := voteResponse{VoteScore: st.VoteScore}
	if st.UserVote != models.VoteNone {
		v := st.UserVote
		resp.UserVote = &v
	}
	return resp
}

// Posts handles GET /forum.
func (h *ContentHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.ContentService.Posts(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "pagination": singlePage(len(posts))})
}

// Post handles GET /forum/{id}.
func (h *ContentHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, replies, err := h.ContentService.Post(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post, "replies": replies})
}

type voteRequest struct {
	VoteType models.VoteType `json:"voteType"`
}

// VotePost handles POST /forum/{id}/vote.
func (h *ContentHandler) VotePost(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	st, err := h.ContentService.VotePost(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()), req.VoteType)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVoteResponse(st))
}

// VoteReply handles POST /forum/{id}/replies/{replyID}/vote.
func (h *ContentHandler) VoteReply(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	st, err := h.ContentService.VoteReply(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "replyID"),
		middleware.GetUserIDFromContext(r.Context()), req.VoteType)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVoteResponse(st))
}

// ShortForms handles GET /short-form.
func (h *ContentHandler) ShortForms(w http.ResponseWriter, r *http.Request) {
	videos, err := h.ContentService.ShortForms(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contents": videos, "pagination": singlePage(len(videos))})
}

// LikeShortForm handles POST /short-form/{id}/like.
func (h *ContentHandler) LikeShortForm(w http.ResponseWriter, r *http.Request) {
	st, err := h.ContentService.LikeShortForm(r.Context(), chi.URLParam(r, "id"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *ContentHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "voteType must be up, down or remove")
	default:
		if h.Log != nil {
			h.Log.Error("content request failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
