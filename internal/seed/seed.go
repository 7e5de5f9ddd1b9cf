package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"partyforge/internal/models"
	"partyforge/internal/validation"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumParties  int
	ShouldClean bool
	// SkipBcrypt stores a plaintext password instead of hashing. Dev only;
	// bcrypt over hundreds of users dominates seeding time.
	SkipBcrypt bool
	DryRun     bool
}

// Seeder populates the database with demo users, friendships, and parties.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Seed populates the database with test data.
func Seed(db *gorm.DB, opts Options) error {
	s := NewSeeder(db, opts)

	log.Printf("🌱 Starting database seeding with %d users and %d parties...", opts.NumUsers, opts.NumParties)

	if opts.ShouldClean {
		if err := s.clearData(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to seed social mesh: %w", err)
	}
	log.Printf("✓ %d users created with a friendship mesh", len(users))

	parties, err := s.SeedParties(users, opts.NumParties)
	if err != nil {
		return fmt.Errorf("failed to seed parties: %w", err)
	}
	log.Printf("✓ %d parties created", len(parties))

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func (s *Seeder) clearData() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE friendships, parties, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates count users plus a friendship mesh over them:
// every user ends up with a handful of edges in mixed states, with at most
// one edge per unordered pair and no self edges.
func (s *Seeder) SeedSocialMesh(count int) ([]models.User, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, *user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	statuses := []models.FriendshipStatus{
		models.FriendshipStatusPending,
		models.FriendshipStatusFriends,
		models.FriendshipStatusFriends,
		models.FriendshipStatusGoodFriends,
		models.FriendshipStatusBestFriends,
	}

	// Each user reaches out to a few later users; pairing i<j guarantees
	// each unordered pair is visited at most once.
	for i := range users {
		edges := r.Intn(4)
		for e := 0; e < edges; e++ {
			j := i + 1 + r.Intn(len(users)-i)
			if j >= len(users) {
				continue
			}
			status := statuses[r.Intn(len(statuses))]
			if err := s.factory.CreateFriendship(&users[i], &users[j], status); err != nil {
				// Pair already connected from an earlier roll; skip it.
				continue
			}
		}
	}

	return users, nil
}

// SeedParties creates count parties led by users who are not yet in one,
// then fills each with unaffiliated members up to a random occupancy. The
// Size == membership-pointer-count invariant holds for every seeded party.
func (s *Seeder) SeedParties(users []models.User, count int) ([]models.Party, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	types := validation.DefaultPartyTypes
	parties := make([]models.Party, 0, count)

	free := 0 // index of the first user not yet in a party
	for i := 0; i < count && free < len(users); i++ {
		leader := &users[free]
		free++

		partyType := types[r.Intn(len(types))]
		party, err := s.factory.CreateParty(leader, func(p *models.Party) {
			p.Type = partyType
		})
		if err != nil {
			return nil, err
		}

		// Fill some slots; leave most parties joinable.
		fill := r.Intn(party.Capacity)
		for m := 0; m < fill && free < len(users); m++ {
			if err := s.factory.AddMember(party, &users[free]); err != nil {
				break
			}
			free++
		}

		parties = append(parties, *party)
	}

	return parties, nil
}
