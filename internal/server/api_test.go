package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"croctop/internal/config"
	"croctop/internal/database"
	"croctop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// apiClient drives the full middleware and route stack against in-memory SQLite.
type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Env:              "test",
		JWTAccessSecret:  "api-test-access-secret",
		JWTRefreshSecret: "api-test-refresh-secret",
		JWTIssuer:        "croctop-api",
		TokenTTLHours:    1,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	return &apiClient{t: t, app: srv.NewApp()}
}

func (a *apiClient) do(method, path, token string, body interface{}) (int, []byte) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func (a *apiClient) decode(raw []byte, dest interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(raw, dest), string(raw))
}

// register signs up and signs in, returning the user id and access token.
func (a *apiClient) register(username string) (uint, string) {
	a.t.Helper()

	status, raw := a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"firstname": username,
		"lastname":  "Test",
		"username":  username,
		"email":     username + "@example.com",
		"password":  "motdepasse1",
		"birthday":  "1992-03-08",
	})
	require.Equal(a.t, http.StatusCreated, status, string(raw))

	status, raw = a.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    username + "@example.com",
		"password": "motdepasse1",
	})
	require.Equal(a.t, http.StatusOK, status, string(raw))

	var res struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	a.decode(raw, &res)
	return res.User.ID, res.AccessToken
}

func tarte() map[string]interface{} {
	return map[string]interface{}{
		"title":      "Tarte",
		"category":   "Dessert",
		"prep_time":  20,
		"cook_time":  35,
		"allergens":  []string{"Gluten", "Oeufs"},
		"prep_steps": []string{"Étaler la pâte", "Disposer les pommes", "Cuire"},
		"ingredients": []map[string]string{
			{"name": "Pommes", "quantity": "4", "unit": "pièces"},
		},
	}
}

type postEnvelope struct {
	Message string      `json:"message"`
	Post    models.Post `json:"post"`
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Code
}

func TestAPI_LikeLifecycle(t *testing.T) {
	api := newAPIClient(t)
	aliceID, alice := api.register("alice")
	bobID, bob := api.register("bob")

	status, raw := api.do(http.MethodPost, "/api/posts", alice, tarte())
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created postEnvelope
	api.decode(raw, &created)
	assert.Equal(t, "Post created", created.Message)
	assert.Equal(t, aliceID, created.Post.UserID)
	assert.Equal(t, "alice", created.Post.User.Username)
	postPath := fmt.Sprintf("/api/posts/%d", created.Post.ID)

	status, raw = api.do(http.MethodPut, postPath+"/like", bob, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var liked postEnvelope
	api.decode(raw, &liked)
	assert.Equal(t, "Post liked", liked.Message)
	assert.Equal(t, 1, liked.Post.LikesCount)
	assert.Equal(t, []uint{bobID}, liked.Post.Likes)

	status, raw = api.do(http.MethodPut, postPath+"/like", bob, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, errorCode(t, raw))

	status, raw = api.do(http.MethodPut, postPath+"/unlike", bob, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var unliked postEnvelope
	api.decode(raw, &unliked)
	assert.Equal(t, 0, unliked.Post.LikesCount)
	assert.Empty(t, unliked.Post.Likes)

	status, _ = api.do(http.MethodPut, postPath+"/unlike", bob, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPut, "/api/posts/9999/like", bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = api.do(http.MethodGet, "/api/users/me", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	api.decode(raw, &me)
	assert.Equal(t, 1, me.PostsCount)
	assert.Equal(t, []uint{created.Post.ID}, me.Posts)
}

func TestAPI_AuthBoundary(t *testing.T) {
	api := newAPIClient(t)
	aliceID, alice := api.register("alice")

	status, raw := api.do(http.MethodGet, "/api/protected", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthenticated, errorCode(t, raw))

	status, raw = api.do(http.MethodGet, "/api/protected", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeInvalidToken, errorCode(t, raw))

	status, raw = api.do(http.MethodGet, "/api/protected", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var res struct {
		Message string          `json:"message"`
		User    models.Identity `json:"user"`
	}
	api.decode(raw, &res)
	assert.Equal(t, "This is a protected route", res.Message)
	assert.Equal(t, models.Identity{UserID: aliceID, Role: models.RoleNormal}, res.User)

	status, raw = api.do(http.MethodPost, "/api/posts", alice, tarte())
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created postEnvelope
	api.decode(raw, &created)
	postPath := fmt.Sprintf("/api/posts/%d", created.Post.ID)

	// Recipes can be read without a token.
	status, raw = api.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var listed []models.Post
	api.decode(raw, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "alice", listed[0].User.Username)
	assert.NotContains(t, string(raw), "alice@example.com")

	status, raw = api.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.NotContains(t, string(raw), "alice@example.com")

	status, _ = api.do(http.MethodPost, "/api/posts", "", tarte())
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = api.do(http.MethodPut, postPath+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = api.do(http.MethodDelete, postPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw = api.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"username": "alice",
		"password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeInvalidCredentials, errorCode(t, raw))

	status, raw = api.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "nobody@example.com",
		"username": "alice",
		"password": "motdepasse1",
	})
	assert.Equal(t, http.StatusOK, status, string(raw))

	status, _ = api.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"firstname": "Alice",
		"lastname":  "Bis",
		"username":  "alice",
		"email":     "other@example.com",
		"password":  "motdepasse1",
		"birthday":  "1992-03-08",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAPI_CommentsAndOwnership(t *testing.T) {
	api := newAPIClient(t)
	_, alice := api.register("alice")
	_, bob := api.register("bob")

	status, raw := api.do(http.MethodPost, "/api/posts", alice, tarte())
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created postEnvelope
	api.decode(raw, &created)
	postPath := fmt.Sprintf("/api/posts/%d", created.Post.ID)

	status, raw = api.do(http.MethodPost, postPath+"/comments", bob, map[string]string{"content": "Miam"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var commented struct {
		Message string         `json:"message"`
		Comment models.Comment `json:"comment"`
	}
	api.decode(raw, &commented)
	assert.Equal(t, "Comment added", commented.Message)
	assert.Equal(t, "bob", commented.Comment.User.Username)
	commentPath := fmt.Sprintf("%s/comments/%d", postPath, commented.Comment.ID)

	status, raw = api.do(http.MethodGet, postPath, alice, nil)
	require.Equal(t, http.StatusOK, status)
	var post models.Post
	api.decode(raw, &post)
	assert.Equal(t, 1, post.CommentsCount)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "Miam", post.Comments[0].Content)

	status, raw = api.do(http.MethodGet, postPath+"/comments", bob, nil)
	require.Equal(t, http.StatusOK, status)
	var comments []models.Comment
	api.decode(raw, &comments)
	assert.Len(t, comments, 1)

	// The comment author is not the post owner.
	status, raw = api.do(http.MethodDelete, commentPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, errorCode(t, raw))

	status, _ = api.do(http.MethodPut, postPath, bob, map[string]string{"title": "Volée"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodPut, postPath+"/archive", bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodDelete, postPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = api.do(http.MethodDelete, commentPath, alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	status, _ = api.do(http.MethodDelete, commentPath, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = api.do(http.MethodPut, postPath, alice, map[string]interface{}{"title": "Tarte fine", "cook_time": 40})
	require.Equal(t, http.StatusOK, status, string(raw))
	var updated postEnvelope
	api.decode(raw, &updated)
	assert.Equal(t, "Tarte fine", updated.Post.Title)
	assert.Equal(t, 40, updated.Post.CookTime)
	assert.Equal(t, 0, updated.Post.CommentsCount)

	status, raw = api.do(http.MethodPut, postPath, alice, map[string]string{"category": "Goûter"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errorCode(t, raw))
}

func TestAPI_ArchiveAndDelete(t *testing.T) {
	api := newAPIClient(t)
	_, alice := api.register("alice")

	status, raw := api.do(http.MethodPost, "/api/posts", alice, tarte())
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created postEnvelope
	api.decode(raw, &created)
	postPath := fmt.Sprintf("/api/posts/%d", created.Post.ID)

	status, _ = api.do(http.MethodPut, postPath+"/archive", alice, nil)
	require.Equal(t, http.StatusOK, status)

	status, raw = api.do(http.MethodGet, "/api/posts", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var feed []models.Post
	api.decode(raw, &feed)
	assert.Empty(t, feed)

	status, raw = api.do(http.MethodGet, "/api/users/me/archived-posts", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var archived []models.Post
	api.decode(raw, &archived)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Archived)

	status, _ = api.do(http.MethodPut, postPath+"/unarchive", alice, nil)
	require.Equal(t, http.StatusOK, status)
	status, raw = api.do(http.MethodGet, "/api/posts", alice, nil)
	require.Equal(t, http.StatusOK, status)
	api.decode(raw, &feed)
	assert.Len(t, feed, 1)

	status, raw = api.do(http.MethodDelete, postPath, alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	status, _ = api.do(http.MethodGet, postPath, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = api.do(http.MethodGet, "/api/users/me", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	api.decode(raw, &me)
	assert.Equal(t, 0, me.PostsCount)
	assert.Empty(t, me.Posts)
}

func TestAPI_FollowGraph(t *testing.T) {
	api := newAPIClient(t)
	aliceID, alice := api.register("alice")
	bobID, _ := api.register("bob")
	bobPath := fmt.Sprintf("/api/users/%d", bobID)

	status, raw := api.do(http.MethodPut, fmt.Sprintf("/api/users/%d/follow", aliceID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errorCode(t, raw))

	status, raw = api.do(http.MethodPut, bobPath+"/follow", alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var followed struct {
		Message     string      `json:"message"`
		CurrentUser models.User `json:"currentUser"`
		TargetUser  models.User `json:"targetUser"`
	}
	api.decode(raw, &followed)
	assert.Equal(t, "User followed", followed.Message)
	assert.Equal(t, []uint{bobID}, followed.CurrentUser.Following)
	assert.Equal(t, 1, followed.CurrentUser.FollowingCount)
	assert.Equal(t, []uint{aliceID}, followed.TargetUser.Followers)
	assert.Equal(t, 1, followed.TargetUser.FollowersCount)

	status, _ = api.do(http.MethodPut, bobPath+"/follow", alice, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, raw = api.do(http.MethodPut, bobPath+"/unfollow", alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var unfollowed struct {
		Message        string      `json:"message"`
		UserToUnfollow models.User `json:"userToUnfollow"`
	}
	api.decode(raw, &unfollowed)
	assert.Equal(t, "User unfollowed", unfollowed.Message)
	assert.Equal(t, 0, unfollowed.UserToUnfollow.FollowersCount)

	status, _ = api.do(http.MethodPut, bobPath+"/unfollow", alice, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPut, "/api/users/9999/follow", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = api.do(http.MethodGet, "/api/users", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var users []models.UserSummary
	api.decode(raw, &users)
	assert.Equal(t, []models.UserSummary{{ID: aliceID, Username: "alice"}, {ID: bobID, Username: "bob"}}, users)
}

func TestAPI_UserProfileAndPosts(t *testing.T) {
	api := newAPIClient(t)
	_, alice := api.register("alice")
	bobID, bob := api.register("bob")

	status, raw := api.do(http.MethodPost, "/api/posts", bob, tarte())
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = api.do(http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var profile models.User
	api.decode(raw, &profile)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, 1, profile.PostsCount)
	assert.NotContains(t, string(raw), "motdepasse1")

	status, raw = api.do(http.MethodGet, fmt.Sprintf("/api/users/%d/posts", bobID), alice, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var posts []models.Post
	api.decode(raw, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "Tarte", posts[0].Title)

	status, _ = api.do(http.MethodGet, "/api/users/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_HealthChecks(t *testing.T) {
	api := newAPIClient(t)

	status, _ := api.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw := api.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, status)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	api.decode(raw, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "disabled", body.Checks["redis"])
}
