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

// MovieRepo persists movie documents in the 'movies' collection.
type MovieRepo struct{ C *mongo.Collection }

func NewMovieRepo(db *mongo.Database) *MovieRepo {
	return &MovieRepo{C: db.Collection("movies")}
}

// Insert stores a new movie and returns its id.
func (r *MovieRepo) Insert(ctx context.Context, m *model.Movie) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Cast == nil {
		m.Cast = []primitive.ObjectID{}
	}
	res, err := r.C.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// GetByID fetches a movie by id.
func (r *MovieRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Movie, error) {
	var m model.Movie
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Movie{}, ErrNotFound
	}
	return m, err
}

// List returns all movies, optionally filtered by genre tag. Genre is an
// array field, so a plain equality filter matches documents containing the
// tag.
func (r *MovieRepo) List(ctx context.Context, genre string) ([]model.Movie, error) {
	filter := bson.M{}
	if genre != "" {
		filter["genre"] = genre
	}
	cur, err := r.C.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	movies := []model.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// ByIDs fetches the movies whose ids appear in the given set. Ids with no
// backing document are silently dropped, which is what lets favorites
// tolerate dangling references.
func (r *MovieRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	cur, err := r.C.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	movies := []model.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Update applies the non-nil fields of the patch.
func (r *MovieRepo) Update(ctx context.Context, id primitive.ObjectID, patch model.MovieUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Genre != nil {
		set["genre"] = patch.Genre
	}
	if patch.ReleaseDate != nil {
		set["releaseDate"] = *patch.ReleaseDate
	}
	if patch.PosterURL != nil {
		set["posterURL"] = *patch.PosterURL
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

// Delete removes a movie document. The caller is responsible for running
// the dependent cleanup (reviews, favorites) first.
func (r *MovieRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCastMember links a cast member to a movie. $addToSet keeps the cast
// list duplicate-free no matter how often the link is requested.
func (r *MovieRepo) AddCastMember(ctx context.Context, movieID, castID primitive.ObjectID) error {
	res, err := r.C.UpdateByID(ctx, movieID, bson.M{
		"$addToSet": bson.M{"cast": castID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullCastFromAll removes a deleted cast member from every movie's cast set.
// Pulling an absent member is a no-op, so the sweep can be retried safely.
func (r *MovieRepo) PullCastFromAll(ctx context.Context, castID primitive.ObjectID) error {
	_, err := r.C.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"cast": castID}})
	return err
}
