package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds for a review, inclusive.
const (
	RatingMin = 1
	RatingMax = 10
)

// Review mirrors the 'reviews' collection. UserID is the author, MovieID the
// subject; both are required. Reviews are deleted individually or in bulk
// when their movie is removed.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userID" json:"userID"`
	MovieID   primitive.ObjectID `bson:"movieID" json:"movieID"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     string             `bson:"title" json:"title"`
	Text      string             `bson:"text,omitempty" json:"text,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewUpdate carries the optional fields of a partial review update.
type ReviewUpdate struct {
	Rating *int
	Title  *string
	Text   *string
}
