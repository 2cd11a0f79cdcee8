// Package graph keeps the User, Post and Comment relationships consistent.
//
// Every relationship mutation in the application goes through Manager. Each
// entry point runs in a single transaction that applies the primary row change
// and its paired counter updates together. Membership (already liked, already
// following) is decided by the row count of one atomic INSERT ... ON CONFLICT
// DO NOTHING or DELETE, never by a read that precedes the write.
package graph

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"croctop/internal/cache"
	"croctop/internal/middleware"
	"croctop/internal/models"
	"croctop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Action names used for metrics and spans.
const (
	ActionCreatePost    = "create_post"
	ActionDeletePost    = "delete_post"
	ActionAddComment    = "add_comment"
	ActionDeleteComment = "delete_comment"
	ActionLike          = "like"
	ActionUnlike        = "unlike"
	ActionFollow        = "follow"
	ActionUnfollow      = "unfollow"
)

// Manager applies relationship mutations atomically.
type Manager struct {
	db *gorm.DB
}

// NewManager returns a Manager bound to db.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// CreatePost inserts post for post.UserID and counts it on the author.
func (m *Manager) CreatePost(ctx context.Context, post *models.Post) error {
	err := m.run(ctx, ActionCreatePost, func(tx *gorm.DB) error {
		if err := bumpCounter(tx, &models.User{}, post.UserID, "posts_count", 1); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", post.UserID)
			}
			return err
		}
		post.ID = 0
		post.LikesCount = 0
		post.CommentsCount = 0
		return tx.Omit(clause.Associations).Create(post).Error
	}, attribute.Int64("user.id", int64(post.UserID)))
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

// DeletePost removes the post with its comments and likes and uncounts it on the author.
func (m *Manager) DeletePost(ctx context.Context, postID uint) error {
	var authorID uint
	err := m.run(ctx, ActionDeletePost, func(tx *gorm.DB) error {
		post, err := findPost(tx, postID)
		if err != nil {
			return err
		}
		authorID = post.UserID

		// A concurrent delete may have won since the read above.
		res := tx.Delete(&models.Post{}, postID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return bumpCounter(tx, &models.User{}, post.UserID, "posts_count", -1)
	}, attribute.Int64("post.id", int64(postID)))
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidateUser(ctx, authorID)
	return nil
}

// AddComment attaches comment to comment.PostID, which must exist.
func (m *Manager) AddComment(ctx context.Context, comment *models.Comment) error {
	err := m.run(ctx, ActionAddComment, func(tx *gorm.DB) error {
		if err := bumpCounter(tx, &models.Post{}, comment.PostID, "comments_count", 1); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return err
		}
		comment.ID = 0
		return tx.Omit(clause.Associations).Create(comment).Error
	}, attribute.Int64("post.id", int64(comment.PostID)))
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// DeleteComment removes commentID from postID. The comment must belong to the post.
func (m *Manager) DeleteComment(ctx context.Context, postID, commentID uint) error {
	err := m.run(ctx, ActionDeleteComment, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND post_id = ?", commentID, postID).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", commentID)
		}
		return bumpCounter(tx, &models.Post{}, postID, "comments_count", -1)
	}, attribute.Int64("post.id", int64(postID)), attribute.Int64("comment.id", int64(commentID)))
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	return nil
}

// Like adds userID to the post's likes. A second like is a Conflict.
func (m *Manager) Like(ctx context.Context, userID, postID uint) error {
	err := m.run(ctx, ActionLike, func(tx *gorm.DB) error {
		if _, err := findPost(tx, postID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post already liked")
		}
		return bumpCounter(tx, &models.Post{}, postID, "likes_count", 1)
	}, attribute.Int64("user.id", int64(userID)), attribute.Int64("post.id", int64(postID)))
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	return nil
}

// Unlike removes userID from the post's likes. Unliking a post that is not liked is a Conflict.
func (m *Manager) Unlike(ctx context.Context, userID, postID uint) error {
	err := m.run(ctx, ActionUnlike, func(tx *gorm.DB) error {
		if _, err := findPost(tx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post not liked")
		}
		return bumpCounter(tx, &models.Post{}, postID, "likes_count", -1)
	}, attribute.Int64("user.id", int64(userID)), attribute.Int64("post.id", int64(postID)))
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	return nil
}

// Follow makes followerID follow targetID: one edge row, both users' counters.
func (m *Manager) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}

	err := m.run(ctx, ActionFollow, func(tx *gorm.DB) error {
		if err := requireUsers(tx, targetID, followerID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FollowingID: targetID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Already following this user")
		}
		if err := bumpCounter(tx, &models.User{}, followerID, "following_count", 1); err != nil {
			return err
		}
		return bumpCounter(tx, &models.User{}, targetID, "followers_count", 1)
	}, attribute.Int64("user.id", int64(followerID)), attribute.Int64("target.id", int64(targetID)))
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, followerID, targetID)
	return nil
}

// Unfollow removes the followerID → targetID edge and both counters.
func (m *Manager) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot unfollow yourself")
	}

	err := m.run(ctx, ActionUnfollow, func(tx *gorm.DB) error {
		if err := requireUsers(tx, targetID); err != nil {
			return err
		}

		res := tx.Where("follower_id = ? AND following_id = ?", followerID, targetID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("You are not following this user")
		}
		if err := bumpCounter(tx, &models.User{}, followerID, "following_count", -1); err != nil {
			return err
		}
		return bumpCounter(tx, &models.User{}, targetID, "followers_count", -1)
	}, attribute.Int64("user.id", int64(followerID)), attribute.Int64("target.id", int64(targetID)))
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, followerID, targetID)
	return nil
}

// run executes fn in a transaction with a span and mutation metrics. Errors that
// are not AppErrors are logged and returned as internal errors.
func (m *Manager) run(ctx context.Context, action string, fn func(tx *gorm.DB) error, attrs ...attribute.KeyValue) error {
	ctx, end := observability.StartSpan(ctx, "graph."+action, attrs...)
	track := observability.TrackGraphMutation(action)

	err := m.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			middleware.Logger.ErrorContext(ctx, "graph mutation failed",
				slog.String("action", action), slog.String("error", err.Error()))
			err = models.NewInternalError(err)
		}
	}

	track(err, resultLabel(err))
	end(err)
	return err
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// bumpCounter adds delta to column on the row with id. A missing row is reported
// as gorm.ErrRecordNotFound.
func bumpCounter(tx *gorm.DB, model interface{}, id uint, column string, delta int) error {
	res := tx.Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func findPost(tx *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	if err := tx.Select("id", "user_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return &post, nil
}

func requireUsers(tx *gorm.DB, ids ...uint) error {
	for _, id := range ids {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("User", id)
		}
	}
	return nil
}
