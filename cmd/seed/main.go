// Command main runs the database seeder for Quartermaster.
package main

import (
	"context"
	"flag"
	"log"

	"quartermaster/internal/bootstrap"
	"quartermaster/internal/config"
	"quartermaster/internal/database"
	"quartermaster/internal/repository"
	"quartermaster/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML catalog file (defaults to the built-in catalog)")
	numResources := flag.Int("resources", 0, "Number of fake resources to generate")
	numUsers := flag.Int("users", 10, "Number of fake users to create")
	numRequests := flag.Int("requests", 20, "Number of pending requests to create")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing fake entities")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: catalog=%q, %d resources, %d users, %d requests, clean=%v\n",
		*catalogPath, *numResources, *numUsers, *numRequests, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	admin, err := bootstrap.EnsureBootstrapAdmin(context.Background(), cfg, repository.NewUserRepository(db))
	if err != nil {
		log.Fatalf("❌ Admin bootstrap failed: %v", err)
	}
	var createdBy uint
	if admin != nil {
		createdBy = admin.ID
	}

	s := seed.NewSeeder(db, seed.Options{DryRun: *dryRun})
	summary, err := s.Run(seed.Plan{
		CatalogPath: *catalogPath,
		Resources:   *numResources,
		Users:       *numUsers,
		Requests:    *numRequests,
		Clean:       *shouldClean,
	}, createdBy)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("Catalog: %d new, generated: %d resources, %d users, %d requests",
		summary.CatalogCreated, summary.Resources, summary.Users, summary.Requests)
	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DemoPassword)
}
