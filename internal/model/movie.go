package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie mirrors the 'movies' collection. Cast holds weak references to cast
// documents; entries are added with $addToSet and removed with $pull, so the
// slice behaves as a set.
type Movie struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Genre       []string             `bson:"genre" json:"genre"`
	ReleaseDate time.Time            `bson:"releaseDate" json:"releaseDate"`
	PosterURL   string               `bson:"posterURL" json:"posterURL"`
	Cast        []primitive.ObjectID `bson:"cast" json:"cast"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// MovieUpdate carries the optional fields of a partial movie update. Nil
// pointers are left untouched.
type MovieUpdate struct {
	Title       *string
	Description *string
	Genre       []string
	ReleaseDate *time.Time
	PosterURL   *string
}
