// Package model declares the documents stored in MongoDB. Field names follow
// the collections this service owns; bson tags are the wire format, json tags
// the API shape.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user document can carry. New accounts default to RoleUser; the
// admin role is only assigned by the seed step or by hand.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the 'users' collection. Password holds the bcrypt hash and is
// never serialized to JSON. Favorites is a set of movie ids: inserts go
// through $addToSet and removals through $pull, so duplicates cannot occur.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Role      string               `bson:"role" json:"role"`
	Favorites []primitive.ObjectID `bson:"favorites" json:"favorites"`
	LastSeen  time.Time            `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
