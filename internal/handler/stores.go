// Package handler implements the HTTP operations. Handlers depend on the
// narrow store interfaces below; internal/repository provides the MongoDB
// and redis implementations, tests provide in-memory fakes.
package handler

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/queue"
)

// UserStore is the slice of repository.UserRepo the handlers consume.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	UpdateCredentials(ctx context.Context, id primitive.ObjectID, email, passwordHash string) error
	TouchLastSeen(ctx context.Context, id primitive.ObjectID) error
	AddFavorite(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFavorite(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error)
	PullFavoriteFromAll(ctx context.Context, movieID primitive.ObjectID) error
}

// MovieStore is the slice of repository.MovieRepo the handlers consume.
type MovieStore interface {
	Insert(ctx context.Context, m *model.Movie) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.Movie, error)
	List(ctx context.Context, genre string) ([]model.Movie, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.MovieUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddCastMember(ctx context.Context, movieID, castID primitive.ObjectID) error
	PullCastFromAll(ctx context.Context, castID primitive.ObjectID) error
}

// CastStore is the slice of repository.CastRepo the handlers consume.
type CastStore interface {
	Insert(ctx context.Context, c *model.Cast) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.Cast, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Cast, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReviewStore is the slice of repository.ReviewRepo the handlers consume.
type ReviewStore interface {
	Insert(ctx context.Context, rv *model.Review) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.Review, error)
	ListByMovie(ctx context.Context, movieID primitive.ObjectID) ([]model.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.ReviewUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) (int64, error)
}

// SessionStore is the slice of repository.SessionRepo the handlers consume.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, sid string) error
}

// IntegrityPublisher enqueues a reconciliation event when an inline cascade
// step fails. A nil publisher degrades to logging only.
type IntegrityPublisher interface {
	Publish(ctx context.Context, ev queue.IntegrityEvent) error
}
