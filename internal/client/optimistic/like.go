package optimistic

import (
	"context"

	"github.com/atinyakov/civica/internal/client/notify"
	"github.com/atinyakov/civica/internal/models"
)

// LikeAPI is the backend surface used by Liker.
type LikeAPI interface {
	LikeShortForm(ctx context.Context, id string) (*models.LikeState, error)
}

// Liker handles likes on short-form videos. The backend toggles the like,
// so no target is sent.
type Liker struct {
	api      LikeAPI
	mutation *Mutation[models.LikeState]
}

// NewLiker returns a Liker with empty state.
func NewLiker(likeAPI LikeAPI, guard Guard, n notify.Notifier) *Liker {
	return &Liker{
		api: likeAPI,
		mutation: &Mutation[models.LikeState]{
			Entities:      NewSet[models.LikeState](),
			Guard:         guard,
			Notifier:      n,
			DeniedMessage: "log in to like",
			FailedMessage: "like failed",
		},
	}
}

// Contents is the like state of loaded videos, keyed by id.
func (l *Liker) Contents() *Set[models.LikeState] { return l.mutation.Entities }

// Like toggles the viewer's like on id.
func (l *Liker) Like(ctx context.Context, id string) (models.LikeState, error) {
	return l.mutation.Run(ctx, id, func(ctx context.Context, _ models.LikeState) (models.LikeState, error) {
		res, err := l.api.LikeShortForm(ctx, id)
		if err != nil {
			return models.LikeState{}, err
		}
		return *res, nil
	})
}
