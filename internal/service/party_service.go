package service

import (
	"context"

	"partyforge/internal/models"
	"partyforge/internal/repository"
	"partyforge/internal/validation"
)

// PartyService provides party lifecycle business logic. Field validation
// happens here; the membership and capacity invariants are enforced inside
// the repository transactions.
type PartyService struct {
	partyRepo  repository.PartyRepository
	userRepo   repository.UserRepository
	partyTypes validation.PartyTypeSet
}

// CreatePartyInput carries the fields for a new party.
type CreatePartyInput struct {
	Name        string
	Description string
	Type        models.PartyType
	Capacity    int
}

// NewPartyService returns a new PartyService using the given activity type
// allow-list.
func NewPartyService(partyRepo repository.PartyRepository, userRepo repository.UserRepository, partyTypes validation.PartyTypeSet) *PartyService {
	return &PartyService{
		partyRepo:  partyRepo,
		userRepo:   userRepo,
		partyTypes: partyTypes,
	}
}

// Create validates the input and creates a party led by leaderID. The leader
// occupies the first slot.
func (s *PartyService) Create(ctx context.Context, leaderID uint, in CreatePartyInput) (*models.Party, error) {
	if err := validation.ValidatePartyName(in.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidatePartyDescription(in.Description); err != nil {
		return nil, err
	}
	if err := s.partyTypes.ValidatePartyType(in.Type); err != nil {
		return nil, err
	}
	if err := validation.ValidatePartyCapacity(in.Capacity); err != nil {
		return nil, err
	}

	return s.partyRepo.Create(ctx, leaderID, &models.Party{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		Capacity:    in.Capacity,
	})
}

// Join adds the user to the party when a slot is free and the user is not
// already in a party.
func (s *PartyService) Join(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	return s.partyRepo.Join(ctx, userID, partyID)
}

// Leave removes the user from the party. The leader cannot leave.
func (s *PartyService) Leave(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	return s.partyRepo.Leave(ctx, userID, partyID)
}

// Update applies leader-initiated changes after validating the provided
// fields. Capacity can never drop below the current size.
func (s *PartyService) Update(ctx context.Context, callerID, partyID uint, update models.PartyUpdate) (*models.Party, error) {
	if update.Name != nil {
		if err := validation.ValidatePartyName(*update.Name); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		if err := validation.ValidatePartyDescription(*update.Description); err != nil {
			return nil, err
		}
	}
	if update.Type != nil {
		if err := s.partyTypes.ValidatePartyType(*update.Type); err != nil {
			return nil, err
		}
	}
	if update.Capacity != nil {
		if err := validation.ValidatePartyCapacity(*update.Capacity); err != nil {
			return nil, err
		}
	}

	return s.partyRepo.Update(ctx, callerID, partyID, update)
}

// Disband deletes the party and releases every member, leader-only.
func (s *PartyService) Disband(ctx context.Context, callerID, partyID uint) error {
	return s.partyRepo.Delete(ctx, callerID, partyID)
}

// GetByID returns the party or NotFound.
func (s *PartyService) GetByID(ctx context.Context, partyID uint) (*models.Party, error) {
	return s.partyRepo.GetByID(ctx, partyID)
}

// GetByUser returns the party the user currently belongs to, nil when the
// user is unaffiliated.
func (s *PartyService) GetByUser(ctx context.Context, userID uint) (*models.Party, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.partyRepo.GetByUser(ctx, userID)
}

// GetByLeader returns the party led by the user, nil when none.
func (s *PartyService) GetByLeader(ctx context.Context, leaderID uint) (*models.Party, error) {
	return s.partyRepo.GetByLeader(ctx, leaderID)
}

// ListMembers returns the current members of the party, the leader included.
func (s *PartyService) ListMembers(ctx context.Context, partyID uint) ([]models.User, error) {
	if _, err := s.partyRepo.GetByID(ctx, partyID); err != nil {
		return nil, err
	}
	return s.partyRepo.ListMembers(ctx, partyID)
}

// Types returns the configured activity type allow-list.
func (s *PartyService) Types() []models.PartyType {
	return s.partyTypes.Values()
}

// List returns parties newest first. Pagination bounds are the route
// layer's policy (parsePagination); the service forwards them untouched.
func (s *PartyService) List(ctx context.Context, limit, offset int) ([]models.Party, error) {
	return s.partyRepo.List(ctx, limit, offset)
}

// ListByType returns parties of the given activity type, newest first.
func (s *PartyService) ListByType(ctx context.Context, partyType models.PartyType, limit, offset int) ([]models.Party, error) {
	if err := s.partyTypes.ValidatePartyType(partyType); err != nil {
		return nil, err
	}
	return s.partyRepo.ListByType(ctx, partyType, limit, offset)
}

// SearchByName returns parties whose name contains the query.
func (s *PartyService) SearchByName(ctx context.Context, query string, limit, offset int) ([]models.Party, error) {
	if query == "" {
		return []models.Party{}, nil
	}
	return s.partyRepo.SearchByName(ctx, query, limit, offset)
}
