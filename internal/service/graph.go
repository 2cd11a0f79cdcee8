// Package service holds the application's use cases. Services validate input,
// apply the ownership rule and delegate every relationship mutation to a
// GraphMutator.
package service

import (
	"context"

	"croctop/internal/models"
)

// GraphMutator is implemented by graph.Manager.
type GraphMutator interface {
	CreatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID uint) error
	AddComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	Follow(ctx context.Context, followerID, targetID uint) error
	Unfollow(ctx context.Context, followerID, targetID uint) error
}
