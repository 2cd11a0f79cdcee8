package repository

import (
	"context"
	"errors"

	"croctop/internal/cache"
	"croctop/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines read and content-update operations for posts.
// Creation, deletion, likes and comments go through the graph manager.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListArchivedByUser(ctx context.Context, userID uint) ([]*models.Post, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SetArchived(ctx context.Context, id uint, archived bool) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// GetByID returns the post with its author, comments and liker ids. Archived
// posts are returned too; the caller decides who may see them.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		err := r.db.WithContext(ctx).
			Preload("User").
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.id ASC")
			}).
			Preload("Comments.User").
			First(&post, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		if err := r.attachLikes(ctx, []*models.Post{&post}); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns non-archived posts, newest first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("archived = ?", false), limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND archived = ?", userID, false)
	return r.find(ctx, q, limit, offset)
}

func (r *postRepository) ListArchivedByUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND archived = ?", userID, true)
	return r.find(ctx, q, -1, -1)
}

func (r *postRepository) find(ctx context.Context, q *gorm.DB, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := q.Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// attachLikes fills Likes for every post with one query.
func (r *postRepository) attachLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		p.Likes = []uint{}
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	var likes []models.PostLike
	if err := r.db.WithContext(ctx).
		Select("user_id", "post_id").
		Where("post_id IN ?", ids).
		Order("id").
		Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		if p, ok := byID[l.PostID]; ok {
			p.Likes = append(p.Likes, l.UserID)
		}
	}
	return nil
}

// UpdateFields writes content columns of a post. Author, counters and the
// archived flag are not accepted here.
func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	for _, locked := range []string{"id", "user_id", "archived", "likes_count", "comments_count"} {
		delete(fields, locked)
	}

	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) SetArchived(ctx context.Context, id uint, archived bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("archived", archived)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
