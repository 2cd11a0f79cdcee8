package service

import (
	"context"
	"strings"

	"croctop/internal/models"
	"croctop/internal/repository"
	"croctop/internal/validation"

	"gorm.io/datatypes"
)

type PostService struct {
	postRepo repository.PostRepository
	graph    GraphMutator
}

type CreatePostInput struct {
	UserID      uint
	Title       string
	Photos      []string
	Category    string
	PrepTime    int
	CookTime    int
	Allergens   []string
	PrepSteps   []string
	Ingredients []models.Ingredient
}

// UpdatePostInput carries a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Title       *string
	Photos      *[]string
	Category    *string
	PrepTime    *int
	CookTime    *int
	Allergens   *[]string
	PrepSteps   *[]string
	Ingredients *[]models.Ingredient
}

func NewPostService(postRepo repository.PostRepository, graph GraphMutator) *PostService {
	return &PostService{
		postRepo: postRepo,
		graph:    graph,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validatePostContent(in.Title, in.Category, in.PrepTime, in.CookTime, in.Photos, in.Allergens, in.PrepSteps, in.Ingredients); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:      in.UserID,
		Title:       in.Title,
		Photos:      datatypes.NewJSONSlice(nonNil(in.Photos)),
		Category:    in.Category,
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
		Allergens:   datatypes.NewJSONSlice(nonNil(in.Allergens)),
		PrepSteps:   datatypes.NewJSONSlice(nonNil(in.PrepSteps)),
		Ingredients: datatypes.NewJSONSlice(nonNil(in.Ingredients)),
	}
	if err := s.graph.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *PostService) ListArchivedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postRepo.ListArchivedByUser(ctx, userID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, in.UserID, in.PostID, "edit")
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	title, category := post.Title, post.Category
	prepTime, cookTime := post.PrepTime, post.CookTime
	photos, allergens, steps := []string(post.Photos), []string(post.Allergens), []string(post.PrepSteps)
	ingredients := []models.Ingredient(post.Ingredients)

	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		fields["title"] = title
	}
	if in.Category != nil {
		category = *in.Category
		fields["category"] = category
	}
	if in.PrepTime != nil {
		prepTime = *in.PrepTime
		fields["prep_time"] = prepTime
	}
	if in.CookTime != nil {
		cookTime = *in.CookTime
		fields["cook_time"] = cookTime
	}
	if in.Photos != nil {
		photos = nonNil(*in.Photos)
		fields["photos"] = datatypes.NewJSONSlice(photos)
	}
	if in.Allergens != nil {
		allergens = nonNil(*in.Allergens)
		fields["allergens"] = datatypes.NewJSONSlice(allergens)
	}
	if in.PrepSteps != nil {
		steps = nonNil(*in.PrepSteps)
		fields["prep_steps"] = datatypes.NewJSONSlice(steps)
	}
	if in.Ingredients != nil {
		ingredients = nonNil(*in.Ingredients)
		fields["ingredients"] = datatypes.NewJSONSlice(ingredients)
	}
	if len(fields) == 0 {
		return post, nil
	}

	if err := validatePostContent(title, category, prepTime, cookTime, photos, allergens, steps, ingredients); err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateFields(ctx, post.ID, fields); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ArchivePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.setArchived(ctx, userID, postID, true)
}

func (s *PostService) UnarchivePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.setArchived(ctx, userID, postID, false)
}

func (s *PostService) setArchived(ctx context.Context, userID, postID uint, archived bool) (*models.Post, error) {
	action := "archive"
	if !archived {
		action = "unarchive"
	}
	post, err := s.ownedPost(ctx, userID, postID, action)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.SetArchived(ctx, post.ID, archived); err != nil {
		return nil, err
	}
	post.Archived = archived
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.ownedPost(ctx, userID, postID, "delete")
	if err != nil {
		return err
	}
	return s.graph.DeletePost(ctx, post.ID)
}

// LikePost is open to any authenticated user, the author included.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.graph.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.graph.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// ownedPost loads the post and requires userID to be its author.
func (s *PostService) ownedPost(ctx context.Context, userID, postID uint, action string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You are not authorized to " + action + " this post")
	}
	return post, nil
}

func validatePostContent(
	title, category string,
	prepTime, cookTime int,
	photos, allergens, steps []string,
	ingredients []models.Ingredient,
) error {
	checks := []error{
		validation.ValidateTitle(title),
		validation.ValidateCategory(category),
		validation.ValidateDurations(prepTime, cookTime),
		validation.ValidateSteps("photo", photos),
		validation.ValidateAllergens(allergens),
		validation.ValidateSteps("step", steps),
		validation.ValidateIngredients(ingredients),
	}
	for _, err := range checks {
		if err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
