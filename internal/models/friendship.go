// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus represents the status of a friendship edge.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a friend request awaiting a response.
	FriendshipStatusPending FriendshipStatus = "pending"
	// FriendshipStatusFriends indicates an accepted friendship.
	FriendshipStatusFriends FriendshipStatus = "friends"
	// FriendshipStatusGoodFriends indicates an upgraded friendship tier.
	FriendshipStatusGoodFriends FriendshipStatus = "good_friends"
	// FriendshipStatusBestFriends indicates the highest friendship tier.
	FriendshipStatusBestFriends FriendshipStatus = "best_friends"
)

// AcceptedStatuses are the statuses an addressee may set when responding to
// a request. Pending is deliberately absent: an accepted edge can never be
// demoted back to pending.
var AcceptedStatuses = map[FriendshipStatus]struct{}{
	FriendshipStatusFriends:     {},
	FriendshipStatusGoodFriends: {},
	FriendshipStatusBestFriends: {},
}

// Friendship represents a directed friendship edge between two users.
//
// The record is directed (requester sent the request, addressee responds)
// but at most one edge may exist per unordered user pair. Lookups go through
// the direction-agnostic repository query; authorization is always keyed off
// the stored RequesterID/AddresseeID, never off call order.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;index" json:"addressee_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);default:'pending';index:idx_friendships_status" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Canonical unordered pair: the smaller and larger of the two user IDs,
	// derived in BeforeCreate. The unique index over the pair is what makes
	// "one edge per unordered pair" hold even when two opposite-direction
	// inserts race — a directed index on (requester, addressee) would let
	// A→B and B→A both commit.
	UserLowID  uint `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	UserHighID uint `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// BeforeCreate derives the canonical pair columns from the directed edge.
// Direction never changes after creation, so no update hook is needed.
func (f *Friendship) BeforeCreate(*gorm.DB) error {
	f.UserLowID, f.UserHighID = f.RequesterID, f.AddresseeID
	if f.UserLowID > f.UserHighID {
		f.UserLowID, f.UserHighID = f.UserHighID, f.UserLowID
	}
	return nil
}

// Accepted reports whether the edge is in any post-pending tier.
func (f *Friendship) Accepted() bool {
	_, ok := AcceptedStatuses[f.Status]
	return ok
}

// OtherUserID returns the counterpart of userID on this edge.
func (f *Friendship) OtherUserID(userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}
