package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/repository"
	"github.com/reelstack/movie-catalogue/internal/utils"
)

const testSecret = "middleware-test-secret"

type stubSessions struct {
	byID map[string]string
}

func (s *stubSessions) Lookup(_ context.Context, sid string) (string, error) {
	uid, ok := s.byID[sid]
	if !ok {
		return "", repository.ErrNotFound
	}
	return uid, nil
}

type stubUsers struct {
	byID map[primitive.ObjectID]model.User
}

func (s *stubUsers) GetByID(_ context.Context, id primitive.ObjectID) (model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func gateFixture(t *testing.T) (*stubSessions, *stubUsers, model.User) {
	t.Helper()
	u := model.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hash",
		Role:     model.RoleUser,
	}
	sessions := &stubSessions{byID: map[string]string{"sid-alice": u.ID.Hex()}}
	users := &stubUsers{byID: map[primitive.ObjectID]model.User{u.ID: u}}
	return sessions, users, u
}

func runGate(t *testing.T, sessions SessionLookup, users UserLoader, prep func(*http.Request)) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prep != nil {
		prep(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	next := func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, Authenticate(sessions, users, testSecret)(next)(c))
	return rec, seen
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	sessions, users, u := gateFixture(t)
	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-alice"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)
	assert.Empty(t, seen.Password, "password hash must not leak into the context")
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	sessions, users, u := gateFixture(t)
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), u.Role, time.Hour)
	require.NoError(t, err)

	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)
}

func TestAuthenticate_TokenCookie(t *testing.T) {
	sessions, users, u := gateFixture(t)
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), u.Role, time.Hour)
	require.NoError(t, err)

	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)
}

func TestAuthenticate_NoProof(t *testing.T) {
	sessions, users, _ := gateFixture(t)
	rec, seen := runGate(t, sessions, users, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthenticate_MismatchedProofs(t *testing.T) {
	sessions, users, _ := gateFixture(t)
	other := primitive.NewObjectID()
	users.byID[other] = model.User{ID: other, Username: "bob", Role: model.RoleUser}
	tok, err := utils.NewAccessToken(testSecret, other.Hex(), model.RoleUser, time.Hour)
	require.NoError(t, err)

	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-alice"})
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen, "neither identity may win a disagreement")
	assert.Contains(t, rec.Body.String(), "credentials do not match")
}

func TestAuthenticate_AgreeingProofs(t *testing.T) {
	sessions, users, u := gateFixture(t)
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), u.Role, time.Hour)
	require.NoError(t, err)

	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-alice"})
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)
}

func TestAuthenticate_BadTokenFallsBackToSession(t *testing.T) {
	sessions, users, u := gateFixture(t)
	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-alice"})
		req.Header.Set("Authorization", "Bearer not-a-jwt")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)
}

func TestAuthenticate_BadTokenAlone(t *testing.T) {
	sessions, users, _ := gateFixture(t)
	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not-a-jwt")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	sessions, users, u := gateFixture(t)
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), u.Role, -time.Minute)
	require.NoError(t, err)

	rec, _ := runGate(t, sessions, users, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_StaleSession(t *testing.T) {
	sessions, users, _ := gateFixture(t)
	rec, seen := runGate(t, sessions, users, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-expired"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	run := func(u *model.User) int {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if u != nil {
			c.Set("user", u)
		}
		next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
		require.NoError(t, RequireAdmin()(next)(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, run(nil))
	assert.Equal(t, http.StatusForbidden, run(&model.User{Role: model.RoleUser}))
	assert.Equal(t, http.StatusOK, run(&model.User{Role: model.RoleAdmin}))
}
