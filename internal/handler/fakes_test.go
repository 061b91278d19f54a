package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/queue"
	"github.com/reelstack/movie-catalogue/internal/repository"
)

// In-memory stores implementing the handler interfaces. They reproduce the
// semantics the mongo repos provide: set-add on favorites and cast,
// absence-safe pulls, sentinel errors.

type fakeUsers struct {
	users map[primitive.ObjectID]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*model.User{}}
}

func (f *fakeUsers) add(u model.User) primitive.ObjectID {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}
	f.users[u.ID] = &u
	return u.ID
}

func (f *fakeUsers) Create(_ context.Context, username, email, hash, role string) (primitive.ObjectID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrEmailExists
		}
	}
	return f.add(model.User{Username: username, Email: email, Password: hash, Role: role}), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (model.User, error) {
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email && u.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdateCredentials(_ context.Context, id primitive.ObjectID, email, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if hash != "" {
		u.Password = hash
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeUsers) TouchLastSeen(_ context.Context, id primitive.ObjectID) error {
	if u, ok := f.users[id]; ok {
		u.LastSeen = time.Now().UTC()
	}
	return nil
}

func (f *fakeUsers) AddFavorite(_ context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, id := range u.Favorites {
		if id == movieID {
			return u.Favorites, nil
		}
	}
	u.Favorites = append(u.Favorites, movieID)
	return u.Favorites, nil
}

func (f *fakeUsers) RemoveFavorite(_ context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := u.Favorites[:0]
	for _, id := range u.Favorites {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	u.Favorites = kept
	return u.Favorites, nil
}

func (f *fakeUsers) PullFavoriteFromAll(ctx context.Context, movieID primitive.ObjectID) error {
	for id := range f.users {
		if _, err := f.RemoveFavorite(ctx, id, movieID); err != nil {
			return err
		}
	}
	return nil
}

type fakeMovies struct {
	movies map[primitive.ObjectID]*model.Movie
}

func newFakeMovies() *fakeMovies {
	return &fakeMovies{movies: map[primitive.ObjectID]*model.Movie{}}
}

func (f *fakeMovies) Insert(_ context.Context, m *model.Movie) (primitive.ObjectID, error) {
	m.ID = primitive.NewObjectID()
	if m.Cast == nil {
		m.Cast = []primitive.ObjectID{}
	}
	cp := *m
	f.movies[m.ID] = &cp
	return m.ID, nil
}

func (f *fakeMovies) GetByID(_ context.Context, id primitive.ObjectID) (model.Movie, error) {
	if m, ok := f.movies[id]; ok {
		return *m, nil
	}
	return model.Movie{}, repository.ErrNotFound
}

func (f *fakeMovies) List(_ context.Context, genre string) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if genre != "" && !contains(m.Genre, genre) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMovies) ByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, id := range ids {
		if m, ok := f.movies[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMovies) Update(_ context.Context, id primitive.ObjectID, patch model.MovieUpdate) error {
	m, ok := f.movies[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Genre != nil {
		m.Genre = patch.Genre
	}
	if patch.ReleaseDate != nil {
		m.ReleaseDate = *patch.ReleaseDate
	}
	if patch.PosterURL != nil {
		m.PosterURL = *patch.PosterURL
	}
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeMovies) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.movies, id)
	return nil
}

func (f *fakeMovies) AddCastMember(_ context.Context, movieID, castID primitive.ObjectID) error {
	m, ok := f.movies[movieID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range m.Cast {
		if id == castID {
			return nil
		}
	}
	m.Cast = append(m.Cast, castID)
	return nil
}

func (f *fakeMovies) PullCastFromAll(_ context.Context, castID primitive.ObjectID) error {
	for _, m := range f.movies {
		kept := m.Cast[:0]
		for _, id := range m.Cast {
			if id != castID {
				kept = append(kept, id)
			}
		}
		m.Cast = kept
	}
	return nil
}

type fakeCasts struct {
	members map[primitive.ObjectID]*model.Cast
}

func newFakeCasts() *fakeCasts {
	return &fakeCasts{members: map[primitive.ObjectID]*model.Cast{}}
}

func (f *fakeCasts) Insert(_ context.Context, c *model.Cast) (primitive.ObjectID, error) {
	c.ID = primitive.NewObjectID()
	cp := *c
	f.members[c.ID] = &cp
	return c.ID, nil
}

func (f *fakeCasts) GetByID(_ context.Context, id primitive.ObjectID) (model.Cast, error) {
	if c, ok := f.members[id]; ok {
		return *c, nil
	}
	return model.Cast{}, repository.ErrNotFound
}

func (f *fakeCasts) ByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Cast, error) {
	out := []model.Cast{}
	for _, id := range ids {
		if c, ok := f.members[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCasts) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

type fakeReviews struct {
	reviews map[primitive.ObjectID]*model.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[primitive.ObjectID]*model.Review{}}
}

func (f *fakeReviews) Insert(_ context.Context, rv *model.Review) (primitive.ObjectID, error) {
	rv.ID = primitive.NewObjectID()
	cp := *rv
	f.reviews[rv.ID] = &cp
	return rv.ID, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id primitive.ObjectID) (model.Review, error) {
	if rv, ok := f.reviews[id]; ok {
		return *rv, nil
	}
	return model.Review{}, repository.ErrNotFound
}

func (f *fakeReviews) ListByMovie(_ context.Context, movieID primitive.ObjectID) ([]model.Review, error) {
	out := []model.Review{}
	for _, rv := range f.reviews {
		if rv.MovieID == movieID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) Update(_ context.Context, id primitive.ObjectID, patch model.ReviewUpdate) error {
	rv, ok := f.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Rating != nil {
		rv.Rating = *patch.Rating
	}
	if patch.Title != nil {
		rv.Title = *patch.Title
	}
	if patch.Text != nil {
		rv.Text = *patch.Text
	}
	rv.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviews) DeleteByMovie(_ context.Context, movieID primitive.ObjectID) (int64, error) {
	var n int64
	for id, rv := range f.reviews {
		if rv.MovieID == movieID {
			delete(f.reviews, id)
			n++
		}
	}
	return n, nil
}

type fakeSessions struct {
	sessions map[string]string
	next     int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]string{}}
}

func (f *fakeSessions) Create(_ context.Context, userID string) (string, error) {
	f.next++
	sid := "sid-" + strings.Repeat("0", f.next)
	f.sessions[sid] = userID
	return sid, nil
}

func (f *fakeSessions) Delete(_ context.Context, sid string) error {
	delete(f.sessions, sid)
	return nil
}

type fakePublisher struct {
	events []queue.IntegrityEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.IntegrityEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// newCtx builds an echo context around a JSON request.
func newCtx(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser attaches an authenticated identity the way the gate middleware
// does.
func asUser(c echo.Context, u *model.User) {
	c.Set("user", u)
}
