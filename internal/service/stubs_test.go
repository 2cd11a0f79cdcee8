package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"croctop/internal/auth"
	"croctop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.User, error)
	findByLoginFn  func(context.Context, string, string) (*models.User, error)
	createFn       func(context.Context, *models.User) error
	updateFieldsFn func(context.Context, uint, map[string]interface{}) error
	recordLoginFn  func(context.Context, uint, time.Time) error
	listFn         func(context.Context, int, int) ([]models.UserSummary, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) FindByLogin(ctx context.Context, email, username string) (*models.User, error) {
	return s.findByLoginFn(ctx, email, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *userRepoStub) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return s.recordLoginFn(ctx, id, at)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:      func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		findByLoginFn:  func(_ context.Context, _, _ string) (*models.User, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.User) error { return nil },
		updateFieldsFn: func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		recordLoginFn:  func(_ context.Context, _ uint, _ time.Time) error { return nil },
		listFn:         func(_ context.Context, _, _ int) ([]models.UserSummary, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	listFn               func(context.Context, int, int) ([]*models.Post, error)
	listByUserFn         func(context.Context, uint, int, int) ([]*models.Post, error)
	listArchivedByUserFn func(context.Context, uint) ([]*models.Post, error)
	updateFieldsFn       func(context.Context, uint, map[string]interface{}) error
	setArchivedFn        func(context.Context, uint, bool) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) ListArchivedByUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.listArchivedByUserFn(ctx, userID)
}
func (s *postRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *postRepoStub) SetArchived(ctx context.Context, id uint, archived bool) error {
	return s.setArchivedFn(ctx, id, archived)
}

// postOwnedBy returns a repo whose GetByID always yields a post authored by ownerID.
func postOwnedBy(ownerID uint) *postRepoStub {
	return &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: ownerID, Title: "Tarte", Category: "Dessert"}, nil
		},
		listFn:               func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByUserFn:         func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listArchivedByUserFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		updateFieldsFn:       func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		setArchivedFn:        func(_ context.Context, _ uint, _ bool) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}

// graphStub records which mutations were requested.
type graphStub struct {
	calls []string
	err   error

	createPostFn func(context.Context, *models.Post) error
	addCommentFn func(context.Context, *models.Comment) error
}

func (g *graphStub) record(name string) error {
	g.calls = append(g.calls, name)
	return g.err
}

func (g *graphStub) CreatePost(ctx context.Context, post *models.Post) error {
	if g.createPostFn != nil {
		g.calls = append(g.calls, "CreatePost")
		return g.createPostFn(ctx, post)
	}
	return g.record("CreatePost")
}
func (g *graphStub) DeletePost(_ context.Context, _ uint) error {
	return g.record("DeletePost")
}
func (g *graphStub) AddComment(ctx context.Context, comment *models.Comment) error {
	if g.addCommentFn != nil {
		g.calls = append(g.calls, "AddComment")
		return g.addCommentFn(ctx, comment)
	}
	return g.record("AddComment")
}
func (g *graphStub) DeleteComment(_ context.Context, _, _ uint) error {
	return g.record("DeleteComment")
}
func (g *graphStub) Like(_ context.Context, _, _ uint) error {
	return g.record("Like")
}
func (g *graphStub) Unlike(_ context.Context, _, _ uint) error {
	return g.record("Unlike")
}
func (g *graphStub) Follow(_ context.Context, _, _ uint) error {
	return g.record("Follow")
}
func (g *graphStub) Unfollow(_ context.Context, _, _ uint) error {
	return g.record("Unfollow")
}

// tokenIssuerStub is a stub for TokenIssuer.
type tokenIssuerStub struct {
	issuePairFn func(models.Identity) (auth.TokenPair, error)
	refreshFn   func(string) (string, error)
}

func (s *tokenIssuerStub) IssuePair(identity models.Identity) (auth.TokenPair, error) {
	return s.issuePairFn(identity)
}
func (s *tokenIssuerStub) Refresh(token string) (string, error) {
	return s.refreshFn(token)
}

// assertAppError asserts that err is an AppError carrying code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
