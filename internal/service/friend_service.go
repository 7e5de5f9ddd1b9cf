// Package service holds the business rules layered between the HTTP
// handlers and the repositories.
package service

import (
	"context"

	"partyforge/internal/models"
	"partyforge/internal/repository"
)

// FriendService provides friend-request and friendship business logic.
//
// Authorization is direction-aware: who may respond to a request is decided
// by the stored requester/addressee roles, never by call order. Lookups are
// direction-agnostic: a pair of users holds at most one edge.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendRequest creates a pending friendship edge from the sender to the
// receiver. Exactly one edge may exist per pair, regardless of direction or
// status.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uint) (*models.Friendship, error) {
	if senderID == receiverID {
		return nil, models.NewInvalidOperationError("Cannot send a friend request to yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetBetweenUsers(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Accepted() {
			return nil, models.NewConflictError("You are already friends with this user")
		}
		if existing.RequesterID == senderID {
			return nil, models.NewConflictError("Friend request already sent")
		}
		return nil, models.NewConflictError("This user has already sent you a friend request")
	}

	friendship := &models.Friendship{
		RequesterID: senderID,
		AddresseeID: receiverID,
		Status:      models.FriendshipStatusPending,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// RespondToRequest sets the edge between the caller and the sender to the
// given status. Only the stored addressee may respond, and the status can
// only move between accepted tiers, never back to pending.
func (s *FriendService) RespondToRequest(ctx context.Context, callerID, senderID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	if _, ok := models.AcceptedStatuses[status]; !ok {
		return nil, models.NewInvalidOperationError("Status must be one of: friends, good_friends, best_friends")
	}

	friendship, err := s.friendRepo.GetBetweenUsers(ctx, callerID, senderID)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return nil, models.NewNotFoundError("Friendship", senderID)
	}
	if friendship.AddresseeID != callerID {
		return nil, models.NewForbiddenError("Only the receiver of a friend request can change its status")
	}

	if err := s.friendRepo.UpdateStatus(ctx, friendship.ID, status); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// Remove deletes the edge between the caller and the other user from any
// state. Either side of the edge may remove it.
func (s *FriendService) Remove(ctx context.Context, callerID, otherID uint) error {
	return s.friendRepo.RemoveBetweenUsers(ctx, callerID, otherID)
}

// ListForUser returns every friendship edge touching the user, the edges
// they initiated first.
func (s *FriendService) ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.ListForUser(ctx, userID)
}

// ListFriends returns the users connected to userID by an accepted edge.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.ListFriends(ctx, userID)
}

// ListPendingIncoming returns pending requests addressed to the user.
func (s *FriendService) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.ListPendingIncoming(ctx, userID)
}

// ListPendingSent returns pending requests the user has sent.
func (s *FriendService) ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.ListPendingSent(ctx, userID)
}

// GetBetweenUsers returns the edge between two users, nil when none exists.
func (s *FriendService) GetBetweenUsers(ctx context.Context, userID, otherID uint) (*models.Friendship, error) {
	return s.friendRepo.GetBetweenUsers(ctx, userID, otherID)
}
