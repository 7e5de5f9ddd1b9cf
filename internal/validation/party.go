// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"

	"partyforge/internal/models"
)

// DefaultPartyTypes is the built-in activity allow-list used when the
// deployment does not supply one. The list is externally configurable
// (PARTY_TYPES) because different games ship different activity categories.
var DefaultPartyTypes = []models.PartyType{
	models.PartyTypeRaid,
	models.PartyTypeDungeon,
	models.PartyTypePvP,
	models.PartyTypeQuest,
	models.PartyTypeSocial,
}

// PartyTypeSet is a configured allow-list of party types.
type PartyTypeSet map[models.PartyType]struct{}

// NewPartyTypeSet builds an allow-list from a comma-separated config value.
// An empty value yields the default set.
func NewPartyTypeSet(csv string) PartyTypeSet {
	set := make(PartyTypeSet)
	for _, raw := range strings.Split(csv, ",") {
		t := models.PartyType(strings.ToLower(strings.TrimSpace(raw)))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		for _, t := range DefaultPartyTypes {
			set[t] = struct{}{}
		}
	}
	return set
}

// ValidatePartyType checks type membership against the allow-list.
func (s PartyTypeSet) ValidatePartyType(t models.PartyType) error {
	if _, ok := s[t]; !ok {
		return models.NewValidationError(fmt.Sprintf("party type %q is not allowed", t))
	}
	return nil
}

// Values returns the allowed types in no particular order.
func (s PartyTypeSet) Values() []models.PartyType {
	out := make([]models.PartyType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	return out
}

// ValidatePartyName checks party name length and content.
func ValidatePartyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.NewValidationError("party name is required")
	}
	if len(trimmed) > 120 {
		return models.NewValidationError("party name must not exceed 120 characters")
	}
	return nil
}

// ValidatePartyDescription enforces the stored column bound.
func ValidatePartyDescription(description string) error {
	if len(description) > models.MaxPartyDescriptionLen {
		return models.NewValidationError(fmt.Sprintf("description must not exceed %d characters", models.MaxPartyDescriptionLen))
	}
	return nil
}

// ValidatePartyCapacity checks that a requested capacity is usable at all.
// Capacity-vs-size is re-checked transactionally by the store; this only
// rejects values that could never be valid.
func ValidatePartyCapacity(capacity int) error {
	if capacity < 1 {
		return models.NewValidationError("capacity must be at least 1")
	}
	if capacity > 100 {
		return models.NewValidationError("capacity must not exceed 100")
	}
	return nil
}
