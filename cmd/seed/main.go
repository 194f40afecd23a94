// Command main fills a profile with demo users, posts, and engagement.
package main

import (
	"context"
	"flag"
	"log"

	"communityhub/internal/bootstrap"
	"communityhub/internal/config"
	"communityhub/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxDays := flag.Int("days", 30, "Spread post timestamps over this many days")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 uses the clock)")
	shouldReset := flag.Bool("reset", false, "Reset collections to the fixed seed records first")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("🌱 Community seeder")
	log.Printf("Target: %d users, %d posts, reset=%v, dry-run=%v", *numUsers, *numPosts, *shouldReset, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipEvents: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Printf("Failed to close runtime: %v", err)
		}
	}()

	s := seed.NewSeeder(rt.Store, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		MaxDays:  *maxDays,
		Seed:     *seedValue,
		DryRun:   *dryRun,
	})

	if *shouldReset {
		if err := s.Reset(ctx); err != nil {
			log.Fatalf("❌ Reset failed: %v", err)
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d users, %d posts, %d follows, %d likes, %d comments, %d shares",
		res.Users, res.Posts, res.Follows, res.Likes, res.Comments, res.Shares)
}
