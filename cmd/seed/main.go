// Command main runs the database seeder for PartyForge.
package main

import (
	"flag"
	"log"

	"partyforge/internal/config"
	"partyforge/internal/database"
	"partyforge/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numParties := flag.Int("parties", 10, "Number of parties to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Use a precomputed password hash (much faster)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	fixtures := flag.String("fixtures", "", "Load a YAML fixture file instead of generating data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	if *fixtures != "" {
		log.Printf("Loading fixtures: %s (ignoring other flags)\n", *fixtures)
	} else {
		log.Printf("Target: %d users, %d parties, clean=%v\n", *numUsers, *numParties, *shouldClean)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *fixtures != "" {
		if err := seed.LoadFixtures(db, *fixtures); err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		log.Println("✅ Fixtures loaded")
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumParties:  *numParties,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
		DryRun:      *dryRun,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
