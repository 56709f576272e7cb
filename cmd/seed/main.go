// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"studentconnect/internal/config"
	"studentconnect/internal/database"
	"studentconnect/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 uses the current time)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		Seed:     *randomSeed,
	}
	s := seed.NewSeeder(db, opts)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.SeedCampus(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. Database populated with demo data.")
	log.Printf("All demo users share the password: %s", seed.DefaultPassword)
}
