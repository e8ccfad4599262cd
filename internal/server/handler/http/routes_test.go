package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/client/api"
	"github.com/atinyakov/civica/internal/client/auth"
	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/client/optimistic"
	"github.com/atinyakov/civica/internal/client/storage"
	"github.com/atinyakov/civica/internal/metrics"
	"github.com/atinyakov/civica/internal/middleware"
	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
	"github.com/atinyakov/civica/internal/service"
)

// staticAuthn accepts each user id as its own token.
type staticAuthn map[string]string

func (s staticAuthn) Authenticate(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", service.ErrUnauthorized
}

func bearerFor(userID string) func(http.Handler) http.Handler {
	return middleware.BearerAuth(staticAuthn{userID: userID})
}

type backend struct {
	srv      *httptest.Server
	sessions *repository.MemoryAuthRepository
	reg      *prometheus.Registry
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	users := repository.NewMemoryAuthRepository()
	content := repository.NewMemoryContentRepository()
	content.AddPost(models.ForumPost{ID: "p1", Title: "Budget hearing"})
	content.AddReply("p1", models.ForumReply{ID: "r1", Content: "See you there"})
	content.AddShortForm(models.ShortForm{ID: "v1", Title: "What is a constitution?"})

	authService := service.NewAuthService(users)
	reg := prometheus.NewRegistry()
	router := NewRouter(
		&AuthHandler{AuthService: authService},
		&ContentHandler{ContentService: service.NewContentService(content)},
		authService,
		metrics.NewCollector(reg),
		metrics.Handler(reg),
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &backend{srv: srv, sessions: users, reg: reg}
}

type client struct {
	mem   *storage.MemoryBackend
	gw    *gateway.Gateway
	api   *api.Client
	sync  *auth.Synchronizer
	voter *optimistic.Voter
	liker *optimistic.Liker
}

func newClient(b *backend, mem *storage.MemoryBackend) *client {
	store := storage.NewStore(mem, nil)
	gw := gateway.New(b.srv.URL, store)
	c := api.New(gw)
	s := auth.New(store, c, nil, nil)
	gw.OnUnauthorized(s.Expire)
	return &client{
		mem:   mem,
		gw:    gw,
		api:   c,
		sync:  s,
		voter: optimistic.NewVoter(c, s, nil),
		liker: optimistic.NewLiker(c, s, nil),
	}
}

func TestEndToEnd_SessionLifecycle(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	first := newClient(b, storage.NewMemoryBackend())
	first.sync.Init(ctx)
	require.False(t, first.sync.IsAuthenticated())

	require.NoError(t, first.sync.Register(ctx, "Alice", "alice@example.com", "pw"))
	require.True(t, first.sync.IsAuthenticated())

	err := first.sync.Register(ctx, "Alice", "ALICE@example.com", "pw")
	assert.EqualError(t, err, "email already registered")

	level := models.Advanced
	require.NoError(t, first.sync.UpdateProfile(ctx, models.ProfileUpdate{LearningLevel: &level}))

	// A restart with the same durable storage restores the session.
	restarted := newClient(b, first.mem)
	restarted.sync.Init(ctx)
	st := restarted.sync.State()
	require.NotNil(t, st.Identity)
	assert.Equal(t, models.Advanced, st.Identity.LearningLevel)
	assert.False(t, st.Loading)

	// The backend forgets the token: the next request signs the client out.
	b.sessions.RevokeSession(storage.NewStore(first.mem, nil).Token())
	_, err = restarted.voter.VotePost(ctx, "p1", models.VoteUp)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.False(t, restarted.sync.IsAuthenticated())
	assert.Equal(t, 0, first.mem.Len())

	err = restarted.sync.Login(ctx, "alice@example.com", "wrong")
	assert.EqualError(t, err, "invalid email or password")
	require.NoError(t, restarted.sync.Login(ctx, "alice@example.com", "pw"))
	assert.True(t, restarted.sync.IsAuthenticated())

	expected := `
# HELP civica_api_unauthorized_total API responses with status 401.
# TYPE civica_api_unauthorized_total counter
civica_api_unauthorized_total 1
`
	require.NoError(t, testutil.GatherAndCompare(b.reg, strings.NewReader(expected), "civica_api_unauthorized_total"))
}

func TestEndToEnd_VotesAndLikes(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	alice := newClient(b, storage.NewMemoryBackend())
	alice.sync.Init(ctx)
	require.NoError(t, alice.sync.Register(ctx, "Alice", "alice@example.com", "pw"))
	bob := newClient(b, storage.NewMemoryBackend())
	bob.sync.Init(ctx)
	require.NoError(t, bob.sync.Register(ctx, "Bob", "bob@example.com", "pw"))

	_, err := bob.voter.VotePost(ctx, "p1", models.VoteUp)
	require.NoError(t, err)

	st, err := alice.voter.VotePost(ctx, "p1", models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, models.VoteState{VoteScore: 2, UserVote: models.VoteUp}, st)

	// Pressing up again withdraws the vote.
	st, err = alice.voter.VotePost(ctx, "p1", models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, models.VoteState{VoteScore: 1, UserVote: models.VoteNone}, st)

	st, err = alice.voter.VoteReply(ctx, "p1", "r1", models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, models.VoteState{VoteScore: -1, UserVote: models.VoteDown}, st)

	like, err := alice.liker.Like(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Likes: 1, Liked: true}, like)
	like, err = alice.liker.Like(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Likes: 0, Liked: false}, like)

	_, err = alice.voter.VotePost(ctx, "missing", models.VoteUp)
	assert.True(t, gateway.Surfaced(err))
	assert.True(t, alice.sync.IsAuthenticated(), "a 404 must not sign the user out")

	posts, err := bob.api.Posts(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, posts.Posts, 1)
	assert.Equal(t, models.VoteUp, posts.Posts[0].UserVote)
}

func TestRouter_AnonymousVoteIsUnauthorized(t *testing.T) {
	b := newBackend(t)

	res, err := http.Post(b.srv.URL+"/forum/p1/vote", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, err = http.Get(b.srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
