// Command main fills the configured store with demo accounts and listings.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"coliver/internal/bootstrap"
	"coliver/internal/catalog"
	"coliver/internal/config"
	"coliver/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	perUser := flag.Int("listings", 3, "Listings owned by each user")
	saves := flag.Int("saves", 4, "Listings each user saves")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	log.Println("🌱 CoLiver Seeder")
	log.Printf("Target: %d users, %d listings each, %d saves each\n", *numUsers, *perUser, *saves)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	tags, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	s := seed.NewSeeder(rt.Users, rt.Listings, tags, *seedValue)
	res, err := s.Run(ctx, seed.Options{
		Users:           *numUsers,
		ListingsPerUser: *perUser,
		SavesPerUser:    *saves,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d users and %d listings\n", len(res.Users), len(res.Listings))
	log.Printf("📧 All demo users have the password: %s\n", seed.DemoPassword)
}
