package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reelstack/movie-catalogue/internal/model"
)

// ReviewRepo persists review documents in the 'reviews' collection.
type ReviewRepo struct{ C *mongo.Collection }

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{C: db.Collection("reviews")}
}

// Insert stores a new review and returns its id. Rating bounds are enforced
// by the handler before the document reaches the store.
func (r *ReviewRepo) Insert(ctx context.Context, rv *model.Review) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	rv.CreatedAt = now
	rv.UpdatedAt = now
	res, err := r.C.InsertOne(ctx, rv)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// GetByID fetches a review by id.
func (r *ReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Review, error) {
	var rv model.Review
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&rv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Review{}, ErrNotFound
	}
	return rv, err
}

// ListByMovie returns all reviews for a movie, newest first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID primitive.ObjectID) ([]model.Review, error) {
	cur, err := r.C.Find(ctx, bson.M{"movieID": movieID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []model.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Update applies the non-nil fields of the patch and refreshes updatedAt.
func (r *ReviewRepo) Update(ctx context.Context, id primitive.ObjectID, patch model.ReviewUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	res, err := r.C.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single review.
func (r *ReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByMovie removes every review whose subject is the given movie and
// returns how many were deleted. Runs before the movie document itself is
// removed so an interrupted cascade leaves no orphans behind the parent.
func (r *ReviewRepo) DeleteByMovie(ctx context.Context, movieID primitive.ObjectID) (int64, error) {
	res, err := r.C.DeleteMany(ctx, bson.M{"movieID": movieID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
