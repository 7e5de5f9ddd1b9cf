package seed

import (
	"fmt"
	"os"

	"partyforge/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// FixtureSet is a declarative description of seed data, loaded from YAML.
// Users are referenced by username in the friendship and party sections.
type FixtureSet struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Bio      string `yaml:"bio"`
		GamerTag string `yaml:"gamer_tag"`
	} `yaml:"users"`
	Friendships []struct {
		Requester string `yaml:"requester"`
		Addressee string `yaml:"addressee"`
		Status    string `yaml:"status"`
	} `yaml:"friendships"`
	Parties []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Type        string   `yaml:"type"`
		Capacity    int      `yaml:"capacity"`
		Leader      string   `yaml:"leader"`
		Members     []string `yaml:"members"`
	} `yaml:"parties"`
}

// LoadFixtures parses a YAML fixture file and applies it to the database.
func LoadFixtures(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- fixture path comes from the operator
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}

	var set FixtureSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}

	return ApplyFixtures(db, &set)
}

// ApplyFixtures writes a FixtureSet to the database. Party membership is
// applied through the same pointer+size discipline as the live code paths.
func ApplyFixtures(db *gorm.DB, set *FixtureSet) error {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	byName := make(map[string]*models.User, len(set.Users))
	for _, fu := range set.Users {
		email := fu.Email
		if email == "" {
			email = fu.Username + "@example.com"
		}
		user := &models.User{
			Username: fu.Username,
			Email:    email,
			Password: string(hashed),
			Bio:      fu.Bio,
			GamerTag: fu.GamerTag,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		byName[fu.Username] = user
	}

	for _, ff := range set.Friendships {
		requester, ok := byName[ff.Requester]
		if !ok {
			return fmt.Errorf("fixture friendship: unknown requester %q", ff.Requester)
		}
		addressee, ok := byName[ff.Addressee]
		if !ok {
			return fmt.Errorf("fixture friendship: unknown addressee %q", ff.Addressee)
		}
		edge := &models.Friendship{
			RequesterID: requester.ID,
			AddresseeID: addressee.ID,
			Status:      models.FriendshipStatus(ff.Status),
		}
		if err := db.Create(edge).Error; err != nil {
			return fmt.Errorf("fixture friendship %q->%q: %w", ff.Requester, ff.Addressee, err)
		}
	}

	for _, fp := range set.Parties {
		leader, ok := byName[fp.Leader]
		if !ok {
			return fmt.Errorf("fixture party %q: unknown leader %q", fp.Name, fp.Leader)
		}
		if leader.CurrentPartyID != nil {
			return fmt.Errorf("fixture party %q: leader %q already in a party", fp.Name, fp.Leader)
		}

		party := &models.Party{
			LeaderID:    leader.ID,
			Name:        fp.Name,
			Description: fp.Description,
			Type:        models.PartyType(fp.Type),
			Size:        1,
			Capacity:    fp.Capacity,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(party).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", leader.ID).
				Update("current_party_id", party.ID).Error; err != nil {
				return err
			}
			leader.CurrentPartyID = &party.ID

			for _, name := range fp.Members {
				member, ok := byName[name]
				if !ok {
					return fmt.Errorf("unknown member %q", name)
				}
				if member.CurrentPartyID != nil {
					return fmt.Errorf("member %q already in a party", name)
				}
				if party.Size >= party.Capacity {
					return fmt.Errorf("over capacity (%d)", party.Capacity)
				}
				if err := tx.Model(&models.Party{}).Where("id = ?", party.ID).
					Update("size", gorm.Expr("size + 1")).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.User{}).Where("id = ?", member.ID).
					Update("current_party_id", party.ID).Error; err != nil {
					return err
				}
				party.Size++
				member.CurrentPartyID = &party.ID
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("fixture party %q: %w", fp.Name, err)
		}
	}

	return nil
}
