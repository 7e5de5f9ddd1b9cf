// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a player account in PartyForge.
//
// CurrentPartyID is the single-valued membership pointer: a user belongs to
// at most one party at a time. It is only ever written inside the same
// transaction that adjusts the party's Size, so the two never diverge.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"unique;not null" json:"username"`
	Email          string         `gorm:"unique;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	Bio            string         `json:"bio"`
	GamerTag       string         `json:"gamer_tag"`
	CurrentPartyID *uint          `gorm:"index" json:"current_party_id"`
	CurrentParty   *Party         `gorm:"foreignKey:CurrentPartyID" json:"current_party,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
