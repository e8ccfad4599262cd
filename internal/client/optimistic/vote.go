package optimistic

import (
	"context"

	"github.com/atinyakov/civica/internal/client/api"
	"github.com/atinyakov/civica/internal/client/notify"
	"github.com/atinyakov/civica/internal/models"
)

// NextVote returns the vote to send when the viewer presses requested while
// holding current: pressing the same direction again removes the vote, any
// other direction is sent as is.
func NextVote(current, requested models.VoteType) models.VoteType {
	if requested != models.VoteRemove && requested == current {
		return models.VoteRemove
	}
	return requested
}

// VoteAPI is the backend surface used by Voter.
type VoteAPI interface {
	VotePost(ctx context.Context, postID string, vote models.VoteType) (*api.VoteResult, error)
	VoteReply(ctx context.Context, postID, replyID string, vote models.VoteType) (*api.VoteResult, error)
}

// Voter handles votes on forum posts and replies.
type Voter struct {
	api     VoteAPI
	posts   *Mutation[models.VoteState]
	replies *Mutation[models.VoteState]
}

// NewVoter returns a Voter with empty post and reply state.
func NewVoter(voteAPI VoteAPI, guard Guard, n notify.Notifier) *Voter {
	newMutation := func() *Mutation[models.VoteState] {
		return &Mutation[models.VoteState]{
			Entities:      NewSet[models.VoteState](),
			Guard:         guard,
			Notifier:      n,
			DeniedMessage: "log in to vote",
			FailedMessage: "vote failed",
		}
	}
	return &Voter{api: voteAPI, posts: newMutation(), replies: newMutation()}
}

// Posts is the vote state of loaded posts, keyed by post id.
func (v *Voter) Posts() *Set[models.VoteState] { return v.posts.Entities }

// Replies is the vote state of loaded replies, keyed by reply id.
func (v *Voter) Replies() *Set[models.VoteState] { return v.replies.Entities }

// VotePost applies the viewer's press of requested on a post.
func (v *Voter) VotePost(ctx context.Context, postID string, requested models.VoteType) (models.VoteState, error) {
	return v.posts.Run(ctx, postID, func(ctx context.Context, current models.VoteState) (models.VoteState, error) {
		target := NextVote(current.UserVote, requested)
		res, err := v.api.VotePost(ctx, postID, target)
		if err != nil {
			return models.VoteState{}, err
		}
		return reconcileVote(res, target), nil
	})
}

// VoteReply applies the viewer's press of requested on a reply.
func (v *Voter) VoteReply(ctx context.Context, postID, replyID string, requested models.VoteType) (models.VoteState, error) {
	return v.replies.Run(ctx, replyID, func(ctx context.Context, current models.VoteState) (models.VoteState, error) {
		target := NextVote(current.UserVote, requested)
		res, err := v.api.VoteReply(ctx, postID, replyID, target)
		if err != nil {
			return models.VoteState{}, err
		}
		return reconcileVote(res, target), nil
	})
}

// reconcileVote takes the score from the backend. The viewer's own vote also
// comes from the backend when it reports one; otherwise it is the vote that
// was just accepted.
func reconcileVote(res *api.VoteResult, target models.VoteType) models.VoteState {
	userVote := target
	if target == models.VoteRemove {
		userVote = models.VoteNone
	}
	if res.HasUserVote {
		userVote = res.UserVote
	}
	return models.VoteState{VoteScore: res.VoteScore, UserVote: userVote}
}
