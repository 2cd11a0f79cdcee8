package seed

import (
	"context"
	"testing"

	"croctop/internal/auth"
	"croctop/internal/database"
	"croctop/internal/models"
	"croctop/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestFactory_BuildPostIsValid(t *testing.T) {
	f := NewFactory(42)

	for i := 0; i < 20; i++ {
		p := f.BuildPost(1)
		assert.NoError(t, validation.ValidateTitle(p.Title))
		assert.NoError(t, validation.ValidateCategory(p.Category))
		assert.NoError(t, validation.ValidateAllergens(p.Allergens))
		assert.NoError(t, validation.ValidateIngredients(p.Ingredients))
		assert.NoError(t, validation.ValidateDurations(p.PrepTime, p.CookTime))
	}
}

func TestFactory_Pick(t *testing.T) {
	f := NewFactory(7)

	picked := f.Pick(5, 10, 2)
	assert.Len(t, picked, 4)
	assert.NotContains(t, picked, 2)

	seen := map[int]bool{}
	for _, i := range picked {
		assert.False(t, seen[i], "duplicate index %d", i)
		seen[i] = true
	}
}

func TestSeeder_RunKeepsCountersConsistent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	s := NewSeeder(db, 1234)

	stats, err := s.Run(ctx, Options{
		NumUsers:       6,
		NumPosts:       10,
		MaxLikes:       4,
		MaxComments:    3,
		FollowsPerUser: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Users)
	assert.Equal(t, 10, stats.Posts)
	assert.Equal(t, 12, stats.Follows)

	var likes, comments int64
	require.NoError(t, db.Model(&models.PostLike{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(stats.Likes), likes)
	assert.Equal(t, int64(stats.Comments), comments)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var n int64
		require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&n).Error)
		assert.Equal(t, int(n), p.LikesCount, "likes on post %d", p.ID)
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&n).Error)
		assert.Equal(t, int(n), p.CommentsCount, "comments on post %d", p.ID)
	}

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		var n int64
		require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", u.ID).Count(&n).Error)
		assert.Equal(t, int(n), u.PostsCount)
		require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = ?", u.ID).Count(&n).Error)
		assert.Equal(t, int(n), u.FollowingCount)
		require.NoError(t, db.Model(&models.Follow{}).Where("following_id = ?", u.ID).Count(&n).Error)
		assert.Equal(t, int(n), u.FollowersCount)
	}

	ok, err := auth.ComparePassword(DefaultPassword, users[0].Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	s := NewSeeder(db, 99)

	_, err := s.Run(ctx, Options{NumUsers: 3, NumPosts: 3, MaxLikes: 2, MaxComments: 2, FollowsPerUser: 1})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	for _, model := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}, &models.PostLike{}, &models.Follow{}} {
		var n int64
		require.NoError(t, db.Unscoped().Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}
