package repository

import (
	"context"
	"errors"

	"partyforge/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines persistence operations for friendship edges.
// A pair of users holds at most one edge regardless of direction.
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListFriends(ctx context.Context, userID uint) ([]models.User, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error
	Delete(ctx context.Context, friendshipID uint) error
	RemoveBetweenUsers(ctx context.Context, userID1, userID2 uint) error
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository returns a new FriendRepository implementation.
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A friendship already exists between these users")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := readDB(r.db).WithContext(ctx).
		Preload("Requester").
		Preload("Addressee").
		First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship

	// Match the edge in either direction
	if err := readDB(r.db).WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		Preload("Requester").
		Preload("Addressee").
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No friendship exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// ListForUser returns every edge touching the user: the edges they initiated
// first, then the edges where they are the addressee, each group ordered by
// creation time.
func (r *friendRepository) ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	db := readDB(r.db)

	var sent []models.Friendship
	if err := db.WithContext(ctx).
		Where("requester_id = ?", userID).
		Order("created_at ASC").
		Preload("Requester").
		Preload("Addressee").
		Find(&sent).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var received []models.Friendship
	if err := db.WithContext(ctx).
		Where("addressee_id = ?", userID).
		Order("created_at ASC").
		Preload("Requester").
		Preload("Addressee").
		Find(&received).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return append(sent, received...), nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User

	// Any accepted tier counts as a friend
	if err := readDB(r.db).WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.addressee_id)").
		Where("f.status IN ? AND (f.requester_id = ? OR f.addressee_id = ?) AND users.id != ?",
			[]models.FriendshipStatus{
				models.FriendshipStatusFriends,
				models.FriendshipStatusGoodFriends,
				models.FriendshipStatusBestFriends,
			},
			userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return users, nil
}

func (r *friendRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := readDB(r.db).WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Order("created_at ASC").
		Preload("Requester").
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := readDB(r.db).WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Order("created_at ASC").
		Preload("Requester").
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ?", friendshipID).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Friendship", friendshipID)
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, friendshipID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Friendship{}, friendshipID)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Friendship", friendshipID)
	}
	return nil
}

func (r *friendRepository) RemoveBetweenUsers(ctx context.Context, userID1, userID2 uint) error {
	result := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Friendship", userID2)
	}
	return nil
}
