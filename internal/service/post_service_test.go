package service

import (
	"context"
	"strings"
	"testing"

	"croctop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPost() CreatePostInput {
	return CreatePostInput{
		UserID:      1,
		Title:       "Tarte",
		Category:    "Dessert",
		PrepTime:    20,
		CookTime:    35,
		Allergens:   []string{"Gluten", "Oeufs"},
		PrepSteps:   []string{"Étaler la pâte", "Cuire"},
		Ingredients: []models.Ingredient{{Name: "Pommes", Quantity: "4", Unit: "pièces"}},
	}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	graph := &graphStub{}
	graph.createPostFn = func(_ context.Context, p *models.Post) error {
		p.ID = 12
		return nil
	}
	svc := NewPostService(postOwnedBy(1), graph)

	post, err := svc.CreatePost(context.Background(), validPost())
	require.NoError(t, err)
	assert.Equal(t, uint(12), post.ID)
	assert.Equal(t, []string{"CreatePost"}, graph.calls)
}

func TestPostService_CreatePost_NormalizesLists(t *testing.T) {
	t.Parallel()

	var created *models.Post
	graph := &graphStub{createPostFn: func(_ context.Context, p *models.Post) error {
		created = p
		return nil
	}}
	svc := NewPostService(postOwnedBy(1), graph)

	in := validPost()
	in.Allergens = nil
	in.Photos = nil
	_, err := svc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotNil(t, created.Photos)
	assert.NotNil(t, created.Allergens)
	assert.Equal(t, uint(1), created.UserID)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	graph := &graphStub{}
	svc := NewPostService(postOwnedBy(1), graph)

	tests := []struct {
		name   string
		mutate func(*CreatePostInput)
	}{
		{"empty title", func(in *CreatePostInput) { in.Title = "  " }},
		{"title too long", func(in *CreatePostInput) { in.Title = strings.Repeat("x", 201) }},
		{"unknown category", func(in *CreatePostInput) { in.Category = "Goûter" }},
		{"negative prep time", func(in *CreatePostInput) { in.PrepTime = -5 }},
		{"unknown allergen", func(in *CreatePostInput) { in.Allergens = []string{"Chocolat"} }},
		{"blank step", func(in *CreatePostInput) { in.PrepSteps = []string{""} }},
		{"ingredient without unit", func(in *CreatePostInput) {
			in.Ingredients = []models.Ingredient{{Name: "Sel", Quantity: "1"}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validPost()
			tc.mutate(&in)
			_, err := svc.CreatePost(context.Background(), in)
			assertAppError(t, err, models.CodeValidation)
		})
	}
	assert.Empty(t, graph.calls)
}

func TestPostService_OwnershipRule(t *testing.T) {
	t.Parallel()

	const owner, stranger = uint(1), uint(2)
	ctx := context.Background()
	title := "Tarte fine"

	tests := []struct {
		name string
		run  func(*PostService, uint) error
	}{
		{"update", func(s *PostService, uid uint) error {
			_, err := s.UpdatePost(ctx, UpdatePostInput{UserID: uid, PostID: 5, Title: &title})
			return err
		}},
		{"archive", func(s *PostService, uid uint) error {
			_, err := s.ArchivePost(ctx, uid, 5)
			return err
		}},
		{"unarchive", func(s *PostService, uid uint) error {
			_, err := s.UnarchivePost(ctx, uid, 5)
			return err
		}},
		{"delete", func(s *PostService, uid uint) error {
			return s.DeletePost(ctx, uid, 5)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			graph := &graphStub{}
			svc := NewPostService(postOwnedBy(owner), graph)

			assertAppError(t, tc.run(svc, stranger), models.CodeForbidden)
			assert.Empty(t, graph.calls)

			assert.NoError(t, tc.run(svc, owner))
		})
	}
}

func TestPostService_DeletePost_UsesGraph(t *testing.T) {
	t.Parallel()

	graph := &graphStub{}
	svc := NewPostService(postOwnedBy(1), graph)

	require.NoError(t, svc.DeletePost(context.Background(), 1, 5))
	assert.Equal(t, []string{"DeletePost"}, graph.calls)
}

func TestPostService_UpdatePost_PartialFields(t *testing.T) {
	t.Parallel()

	repo := postOwnedBy(1)
	var written map[string]interface{}
	repo.updateFieldsFn = func(_ context.Context, _ uint, fields map[string]interface{}) error {
		written = fields
		return nil
	}
	svc := NewPostService(repo, &graphStub{})

	cook := 40
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 5, CookTime: &cook})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"cook_time": 40}, written)

	bad := "Goûter"
	_, err = svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 5, Category: &bad})
	assertAppError(t, err, models.CodeValidation)
}

func TestPostService_ArchiveSetsFlag(t *testing.T) {
	t.Parallel()

	repo := postOwnedBy(1)
	var archived *bool
	repo.setArchivedFn = func(_ context.Context, _ uint, a bool) error {
		archived = &a
		return nil
	}
	svc := NewPostService(repo, &graphStub{})

	post, err := svc.ArchivePost(context.Background(), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.True(t, *archived)
	assert.True(t, post.Archived)
}

func TestPostService_LikeConflictPassesThrough(t *testing.T) {
	t.Parallel()

	graph := &graphStub{err: models.NewConflictError("Post already liked")}
	svc := NewPostService(postOwnedBy(1), graph)

	_, err := svc.LikePost(context.Background(), 2, 5)
	assertAppError(t, err, models.CodeConflict)
	assert.Equal(t, []string{"Like"}, graph.calls)
}

func TestPostService_MissingPost(t *testing.T) {
	t.Parallel()

	repo := postOwnedBy(1)
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewPostService(repo, &graphStub{})

	_, err := svc.GetPost(context.Background(), 9)
	assertAppError(t, err, models.CodeNotFound)
	assertAppError(t, svc.DeletePost(context.Background(), 1, 9), models.CodeNotFound)
}
