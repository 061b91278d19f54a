package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reelstack/movie-catalogue/internal/model"
)

// CastRepo persists cast documents in the 'casts' collection.
type CastRepo struct{ C *mongo.Collection }

func NewCastRepo(db *mongo.Database) *CastRepo {
	return &CastRepo{C: db.Collection("casts")}
}

// Insert stores a new cast member and returns its id.
func (r *CastRepo) Insert(ctx context.Context, c *model.Cast) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := r.C.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// GetByID fetches a cast member by id.
func (r *CastRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Cast, error) {
	var c model.Cast
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Cast{}, ErrNotFound
	}
	return c, err
}

// ByIDs fetches the cast members whose ids appear in the given set.
func (r *CastRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Cast, error) {
	if len(ids) == 0 {
		return []model.Cast{}, nil
	}
	cur, err := r.C.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	members := []model.Cast{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Delete removes a cast document. Callers pull the member out of movie cast
// sets before calling this.
func (r *CastRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
