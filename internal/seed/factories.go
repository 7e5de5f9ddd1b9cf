// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"time"

	"partyforge/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		GamerTag: fmt.Sprintf("%s#%04d", gofakeit.Gamertag(), gofakeit.Number(0, 9999)),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFriendship persists a friendship edge between two users.
func (f *Factory) CreateFriendship(requester, addressee *models.User, status models.FriendshipStatus) error {
	friendship := &models.Friendship{
		RequesterID: requester.ID,
		AddresseeID: addressee.ID,
		Status:      status,
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateFriendship: %d -> %d (%s)", requester.ID, addressee.ID, status)
		return nil
	}
	return f.db.Create(friendship).Error
}

// CreateParty persists a party led by the given user and points the leader's
// membership at it, keeping Size equal to the number of members throughout.
// The leader must not already be in a party.
func (f *Factory) CreateParty(leader *models.User, overrides ...func(*models.Party)) (*models.Party, error) {
	if leader.CurrentPartyID != nil {
		return nil, fmt.Errorf("user %d already belongs to party %d", leader.ID, *leader.CurrentPartyID)
	}

	party := &models.Party{
		LeaderID:    leader.ID,
		Name:        fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun()),
		Description: gofakeit.Sentence(8),
		Type:        models.PartyTypeDungeon,
		Size:        1,
		Capacity:    gofakeit.Number(2, 10),
	}

	for _, override := range overrides {
		override(party)
	}

	if f.opts.DryRun {
		f.nextID++
		party.ID = f.nextID
		leader.CurrentPartyID = &party.ID
		log.Printf("[dry-run] CreateParty: %q led by %d", party.Name, leader.ID)
		return party, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(party).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", leader.ID).
			Update("current_party_id", party.ID).Error
	})
	if err != nil {
		return nil, err
	}
	leader.CurrentPartyID = &party.ID
	return party, nil
}

// AddMember places a user into a party, bumping Size alongside the
// membership pointer. Returns an error when the party is full or the user
// already belongs to one.
func (f *Factory) AddMember(party *models.Party, user *models.User) error {
	if user.CurrentPartyID != nil {
		return fmt.Errorf("user %d already belongs to party %d", user.ID, *user.CurrentPartyID)
	}
	if party.IsFull() {
		return fmt.Errorf("party %d is full (%d/%d)", party.ID, party.Size, party.Capacity)
	}

	if f.opts.DryRun {
		party.Size++
		user.CurrentPartyID = &party.ID
		log.Printf("[dry-run] AddMember: user %d -> party %d", user.ID, party.ID)
		return nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Party{}).Where("id = ?", party.ID).
			Update("size", gorm.Expr("size + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("current_party_id", party.ID).Error
	})
	if err != nil {
		return err
	}
	party.Size++
	user.CurrentPartyID = &party.ID
	return nil
}
