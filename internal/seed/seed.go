// Package seed provides database seeding utilities for development and testing.
// Posts, likes, comments and follows go through the graph manager so seeded
// counters match their edges.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"croctop/internal/auth"
	"croctop/internal/graph"
	"croctop/internal/middleware"
	"croctop/internal/models"

	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	MaxLikes       int
	MaxComments    int
	FollowsPerUser int
}

// Stats reports what a run created.
type Stats struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
	Follows  int
}

// Seeder populates the database.
type Seeder struct {
	db      *gorm.DB
	graph   *graph.Manager
	factory *Factory
}

// NewSeeder creates a seeder bound to db.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:      db,
		graph:   graph.NewManager(db),
		factory: NewFactory(seed),
	}
}

// ClearAll hard-deletes every row, edges first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []interface{}{
		&models.Follow{},
		&models.PostLike{},
		&models.Comment{},
		&models.Post{},
		&models.User{},
	}
	for _, t := range tables {
		db := s.db.WithContext(ctx).Unscoped().Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := db.Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	middleware.Logger.Info("Database cleared")
	return nil
}

// Run seeds users, recipes and the social graph between them.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Stats, error) {
	stats := &Stats{}

	users, err := s.seedUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, err
	}
	stats.Users = len(users)
	if len(users) == 0 {
		return stats, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		post := s.factory.BuildPost(author.ID)
		if err := s.graph.CreatePost(ctx, post); err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	stats.Posts = len(posts)

	for _, post := range posts {
		likes, err := s.seedLikes(ctx, users, post, opts.MaxLikes)
		if err != nil {
			return nil, err
		}
		stats.Likes += likes

		comments, err := s.seedComments(ctx, users, post, opts.MaxComments)
		if err != nil {
			return nil, err
		}
		stats.Comments += comments
	}

	for i, user := range users {
		for _, j := range s.factory.Pick(len(users), opts.FollowsPerUser, i) {
			err := s.graph.Follow(ctx, user.ID, users[j].ID)
			if models.HasCode(err, models.CodeConflict) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
			stats.Follows++
		}
	}

	middleware.Logger.Info("Seeding complete",
		slog.Int("users", stats.Users),
		slog.Int("posts", stats.Posts),
		slog.Int("likes", stats.Likes),
		slog.Int("comments", stats.Comments),
		slog.Int("follows", stats.Follows),
	)
	return stats, nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]*models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	// One digest for everyone keeps large runs fast.
	digest, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, n)
	for i := range users {
		users[i] = s.factory.BuildUser(i, digest)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []*models.User, post *models.Post, maxLikes int) (int, error) {
	if maxLikes <= 0 {
		return 0, nil
	}
	n := 0
	for _, i := range s.factory.Pick(len(users), s.factory.faker.Number(0, maxLikes), -1) {
		if err := s.graph.Like(ctx, users[i].ID, post.ID); err != nil {
			return n, fmt.Errorf("like: %w", err)
		}
		n++
	}
	return n, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, post *models.Post, maxComments int) (int, error) {
	if maxComments <= 0 {
		return 0, nil
	}
	count := s.factory.faker.Number(0, maxComments)
	for i := 0; i < count; i++ {
		author := users[s.factory.faker.Number(0, len(users)-1)]
		comment := &models.Comment{
			Content: s.factory.BuildComment(),
			UserID:  author.ID,
			PostID:  post.ID,
		}
		if err := s.graph.AddComment(ctx, comment); err != nil {
			return i, fmt.Errorf("comment: %w", err)
		}
	}
	return count, nil
}
