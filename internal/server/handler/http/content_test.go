package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
	"github.com/atinyakov/civica/internal/service"
)

func newContentHandler() *ContentHandler {
	repo := repository.NewMemoryContentRepository()
	repo.AddPost(models.ForumPost{ID: "p1", Title: "Local elections"})
	repo.AddReply("p1", models.ForumReply{ID: "r1", Content: "Register early"})
	repo.AddShortForm(models.ShortForm{ID: "v1", Title: "Separation of powers"})
	return &ContentHandler{ContentService: service.NewContentService(repo)}
}

// withParams attaches chi URL params and an authenticated user to req.
func withParams(req *http.Request, userID string, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(ctx)
	if userID == "" {
		return req
	}
	// Route through the real middleware so the context key stays private.
	var out *http.Request
	authenticated := bearerFor(userID)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { out = r }))
	req.Header.Set("Authorization", "Bearer "+userID)
	authenticated.ServeHTTP(httptest.NewRecorder(), req)
	return out
}

func TestContentHandler_VotePost(t *testing.T) {
	h := newContentHandler()

	tests := []struct {
		name      string
		post      string
		body      string
		wantCode  int
		wantScore int
		wantVote  any
	}{
		{"up", "p1", `{"voteType":"up"}`, http.StatusOK, 1, "up"},
		{"remove", "p1", `{"voteType":"remove"}`, http.StatusOK, 0, nil},
		{"unknown vote", "p1", `{"voteType":"sideways"}`, http.StatusBadRequest, 0, nil},
		{"missing post", "p9", `{"voteType":"up"}`, http.StatusNotFound, 0, nil},
		{"malformed", "p1", `{`, http.StatusBadRequest, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withParams(httptest.NewRequest("POST", "/forum/"+tt.post+"/vote", bytes.NewBufferString(tt.body)),
				"alice", map[string]string{"id": tt.post})
			rec := httptest.NewRecorder()
			h.VotePost(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var payload map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if payload["voteScore"] != float64(tt.wantScore) {
				t.Errorf("voteScore = %v; want %d", payload["voteScore"], tt.wantScore)
			}
			vote, present := payload["userVote"]
			if !present || vote != tt.wantVote {
				t.Errorf("userVote = %v (present %v); want %v", vote, present, tt.wantVote)
			}
		})
	}
}

func TestContentHandler_VoteReply(t *testing.T) {
	h := newContentHandler()
	req := withParams(httptest.NewRequest("POST", "/forum/p1/replies/r1/vote", bytes.NewBufferString(`{"voteType":"down"}`)),
		"alice", map[string]string{"id": "p1", "replyID": "r1"})
	rec := httptest.NewRecorder()
	h.VoteReply(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		VoteScore int    `json:"voteScore"`
		UserVote  string `json:"userVote"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&payload)
	if payload.VoteScore != -1 || payload.UserVote != "down" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestContentHandler_LikeAndList(t *testing.T) {
	h := newContentHandler()

	rec := httptest.NewRecorder()
	h.LikeShortForm(rec, withParams(httptest.NewRequest("POST", "/short-form/v1/like", nil), "alice", map[string]string{"id": "v1"}))
	var like models.LikeState
	_ = json.NewDecoder(rec.Body).Decode(&like)
	if like != (models.LikeState{Likes: 1, Liked: true}) {
		t.Errorf("like = %+v", like)
	}

	rec = httptest.NewRecorder()
	h.ShortForms(rec, withParams(httptest.NewRequest("GET", "/short-form", nil), "", nil))
	var list struct {
		Contents []models.ShortForm `json:"contents"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Contents) != 1 || list.Contents[0].Likes != 1 || list.Contents[0].Liked {
		t.Errorf("anonymous listing = %+v", list.Contents)
	}

	rec = httptest.NewRecorder()
	h.Post(rec, withParams(httptest.NewRequest("GET", "/forum/p9", nil), "", map[string]string{"id": "p9"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing post, got %d", rec.Code)
	}
}
