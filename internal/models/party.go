package models

import "time"

// PartyType categorizes what a party is organized around. The canonical
// allow-list is supplied by configuration; these constants cover the default
// set used by validation and seeding.
type PartyType string

const (
	// PartyTypeRaid is a raid group.
	PartyTypeRaid PartyType = "raid"
	// PartyTypeDungeon is a dungeon-run group.
	PartyTypeDungeon PartyType = "dungeon"
	// PartyTypePvP is a player-versus-player group.
	PartyTypePvP PartyType = "pvp"
	// PartyTypeQuest is a questing group.
	PartyTypeQuest PartyType = "quest"
	// PartyTypeSocial is a hang-out group with no activity goal.
	PartyTypeSocial PartyType = "social"
)

// MaxPartyDescriptionLen bounds the stored description column.
const MaxPartyDescriptionLen = 255

// Party represents a capacity-bounded group of users led by one leader.
//
// Size is a denormalized member count, leader included. The invariant
// Size == |{u : u.CurrentPartyID == ID}| holds at every commit point because
// Size and the membership pointers are only written together inside one
// transaction, with the party row locked for the capacity check.
type Party struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LeaderID    uint      `gorm:"not null;index" json:"leader_id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Type        PartyType `gorm:"type:varchar(20);not null;index" json:"type"`
	Size        int       `gorm:"not null;default:1" json:"size"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Leader *User `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

// TableName specifies the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// IsFull reports whether no slot remains.
func (p *Party) IsFull() bool {
	return p.Size >= p.Capacity
}

// PartyUpdate carries the editable fields for a party. Nil pointers mean
// "leave unchanged".
type PartyUpdate struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Type        *PartyType `json:"type"`
	Capacity    *int       `json:"capacity"`
}
