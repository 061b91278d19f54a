package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reelstack/movie-catalogue/internal/model"
)

// UserRepo persists user documents in the 'users' collection.
type UserRepo struct{ C *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{C: db.Collection("users")}
}

// Create inserts a user with a normalized email and returns the new id.
// The password argument must already be hashed. A violation of the unique
// email index surfaces as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	u := model.User{
		Username:  username,
		Email:     normalizeEmail(email),
		Password:  passwordHash,
		Role:      role,
		Favorites: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.C.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrEmailExists
		}
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.C.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	var u model.User
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// EmailTaken reports whether another user already holds the given email.
// The exclude id keeps a user's own record out of the uniqueness check on
// profile updates.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	n, err := r.C.CountDocuments(ctx, bson.M{
		"email": normalizeEmail(email),
		"_id":   bson.M{"$ne": exclude},
	})
	return n > 0, err
}

// UpdateCredentials applies a partial update of email and/or password hash.
// Empty strings mean "leave unchanged"; callers guarantee at least one field
// is set. A duplicate email surfaces as ErrEmailExists.
func (r *UserRepo) UpdateCredentials(ctx context.Context, id primitive.ObjectID, email, passwordHash string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if email != "" {
		set["email"] = normalizeEmail(email)
	}
	if passwordHash != "" {
		set["password"] = passwordHash
	}
	res, err := r.C.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastSeen records a successful login.
func (r *UserRepo) TouchLastSeen(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.C.UpdateByID(ctx, id, bson.M{"$set": bson.M{"lastSeen": time.Now().UTC()}})
	return err
}

// AddFavorite inserts the movie id into the user's favorites set. $addToSet
// makes the insert a no-op when the id is already present, so calling it
// twice never produces a duplicate. Returns the resulting set.
func (r *UserRepo) AddFavorite(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.favoriteUpdate(ctx, userID, bson.M{"$addToSet": bson.M{"favorites": movieID}})
}

// RemoveFavorite pulls the movie id from the user's favorites set. Removing
// a non-member is a no-op success. Returns the resulting set.
func (r *UserRepo) RemoveFavorite(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.favoriteUpdate(ctx, userID, bson.M{"$pull": bson.M{"favorites": movieID}})
}

func (r *UserRepo) favoriteUpdate(ctx context.Context, userID primitive.ObjectID, update bson.M) ([]primitive.ObjectID, error) {
	var u model.User
	err := r.C.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

// PullFavoriteFromAll removes a deleted movie from every user's favorites.
func (r *UserRepo) PullFavoriteFromAll(ctx context.Context, movieID primitive.ObjectID) error {
	_, err := r.C.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"favorites": movieID}})
	return err
}

// HasAdmin reports whether any admin account exists. Used by the seed step.
func (r *UserRepo) HasAdmin(ctx context.Context) (bool, error) {
	n, err := r.C.CountDocuments(ctx, bson.M{"role": model.RoleAdmin})
	return n > 0, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
