package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cast mirrors the 'casts' collection. A cast member exists independently of
// any movie; movies reference it through their cast set.
type Cast struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Bio       string             `bson:"bio" json:"bio"`
	Role      string             `bson:"role" json:"role"`
	PhotoURL  string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	BirthDay  time.Time          `bson:"birthDay" json:"birthDay"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
