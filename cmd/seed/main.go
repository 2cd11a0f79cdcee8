// Command main runs the database seeder for Croc'top.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"croctop/internal/config"
	"croctop/internal/database"
	"croctop/internal/middleware"
	"croctop/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of recipes to create")
	maxLikes := flag.Int("likes", 10, "Maximum likes per recipe")
	maxComments := flag.Int("comments", 5, "Maximum comments per recipe")
	follows := flag.Int("follows", 5, "Users followed by each user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Stdout)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, *seedValue)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	stats, err := s.Run(ctx, seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		MaxLikes:       *maxLikes,
		MaxComments:    *maxComments,
		FollowsPerUser: *follows,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d recipes, %d likes, %d comments, %d follows.",
		stats.Users, stats.Posts, stats.Likes, stats.Comments, stats.Follows)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
