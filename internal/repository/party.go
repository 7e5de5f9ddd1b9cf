package repository

import (
	"context"
	"errors"
	"strings"

	"partyforge/internal/cache"
	"partyforge/internal/models"
	"partyforge/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartyRepository defines persistence operations for parties.
//
// Every mutation runs in a single transaction and takes row locks on the
// party and user rows it reads before writing, so the size counter, the
// capacity bound and each user's current_party_id pointer stay consistent
// under concurrent joins and leaves. Locks are always taken party first,
// then user.
type PartyRepository interface {
	Create(ctx context.Context, leaderID uint, party *models.Party) (*models.Party, error)
	Join(ctx context.Context, userID, partyID uint) (*models.Party, error)
	Leave(ctx context.Context, userID, partyID uint) (*models.Party, error)
	Update(ctx context.Context, callerID, partyID uint, update models.PartyUpdate) (*models.Party, error)
	Delete(ctx context.Context, callerID, partyID uint) error

	GetByID(ctx context.Context, id uint) (*models.Party, error)
	GetByLeader(ctx context.Context, leaderID uint) (*models.Party, error)
	GetByUser(ctx context.Context, userID uint) (*models.Party, error)
	ListMembers(ctx context.Context, partyID uint) ([]models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.Party, error)
	ListByType(ctx context.Context, partyType models.PartyType, limit, offset int) ([]models.Party, error)
	SearchByName(ctx context.Context, query string, limit, offset int) ([]models.Party, error)
}

type partyRepository struct {
	db *gorm.DB
}

// NewPartyRepository returns a new PartyRepository implementation.
func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, leaderID uint, party *models.Party) (*models.Party, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var leader models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&leader, leaderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", leaderID)
			}
			return err
		}
		if leader.CurrentPartyID != nil {
			return models.NewConflictError("User is already in a party")
		}

		party.LeaderID = leaderID
		party.Size = 1 // the leader counts toward capacity
		if err := tx.Create(party).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", leaderID).
			Update("current_party_id", party.ID).Error
	})
	if err != nil {
		return nil, wrapPartyTxError(err)
	}

	cache.InvalidateUser(ctx, leaderID)
	observability.PartyMembershipEvents.WithLabelValues("create", "success").Inc()
	return party, nil
}

func (r *partyRepository) Join(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Party", partyID)
			}
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", userID)
			}
			return err
		}
		if user.CurrentPartyID != nil {
			if *user.CurrentPartyID == partyID {
				return models.NewConflictError("User is already in this party")
			}
			return models.NewConflictError("User is already in a party")
		}
		if party.IsFull() {
			return models.NewFullError("Party is full")
		}

		if err := tx.Model(&models.Party{}).
			Where("id = ?", partyID).
			Update("size", gorm.Expr("size + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("current_party_id", partyID).Error; err != nil {
			return err
		}

		party.Size++
		return nil
	})
	if err != nil {
		observability.PartyMembershipEvents.WithLabelValues("join", "rejected").Inc()
		return nil, wrapPartyTxError(err)
	}

	cache.InvalidateUser(ctx, userID)
	cache.InvalidateParty(ctx, partyID)
	observability.PartyMembershipEvents.WithLabelValues("join", "success").Inc()
	return &party, nil
}

func (r *partyRepository) Leave(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Party", partyID)
			}
			return err
		}
		if party.LeaderID == userID {
			return models.NewForbiddenError("The leader cannot leave; disband the party instead")
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", userID)
			}
			return err
		}
		if user.CurrentPartyID == nil || *user.CurrentPartyID != partyID {
			return models.NewConflictError("User is not a member of this party")
		}

		if err := tx.Model(&models.Party{}).
			Where("id = ?", partyID).
			Update("size", gorm.Expr("size - 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("current_party_id", nil).Error; err != nil {
			return err
		}

		party.Size--
		return nil
	})
	if err != nil {
		observability.PartyMembershipEvents.WithLabelValues("leave", "rejected").Inc()
		return nil, wrapPartyTxError(err)
	}

	cache.InvalidateUser(ctx, userID)
	cache.InvalidateParty(ctx, partyID)
	observability.PartyMembershipEvents.WithLabelValues("leave", "success").Inc()
	return &party, nil
}

func (r *partyRepository) Update(ctx context.Context, callerID, partyID uint, update models.PartyUpdate) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Party", partyID)
			}
			return err
		}
		if party.LeaderID != callerID {
			return models.NewForbiddenError("Only the party leader can update the party")
		}

		fields := map[string]interface{}{}
		if update.Name != nil {
			fields["name"] = *update.Name
			party.Name = *update.Name
		}
		if update.Description != nil {
			fields["description"] = *update.Description
			party.Description = *update.Description
		}
		if update.Type != nil {
			fields["type"] = *update.Type
			party.Type = *update.Type
		}
		if update.Capacity != nil {
			if *update.Capacity < party.Size {
				return models.NewInvalidOperationError("Capacity cannot be lower than the current party size")
			}
			fields["capacity"] = *update.Capacity
			party.Capacity = *update.Capacity
		}
		if len(fields) == 0 {
			return nil
		}

		return tx.Model(&models.Party{}).Where("id = ?", partyID).Updates(fields).Error
	})
	if err != nil {
		return nil, wrapPartyTxError(err)
	}

	cache.InvalidateParty(ctx, partyID)
	return &party, nil
}

func (r *partyRepository) Delete(ctx context.Context, callerID, partyID uint) error {
	var memberIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Party", partyID)
			}
			return err
		}
		if party.LeaderID != callerID {
			return models.NewForbiddenError("Only the party leader can disband the party")
		}

		// Detach every member (leader included) before removing the party
		if err := tx.Model(&models.User{}).
			Where("current_party_id = ?", partyID).
			Pluck("id", &memberIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("current_party_id = ?", partyID).
			Update("current_party_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Party{}, partyID).Error
	})
	if err != nil {
		observability.PartyMembershipEvents.WithLabelValues("disband", "rejected").Inc()
		return wrapPartyTxError(err)
	}

	for _, id := range memberIDs {
		cache.InvalidateUser(ctx, id)
	}
	cache.InvalidateParty(ctx, partyID)
	observability.PartyMembershipEvents.WithLabelValues("disband", "success").Inc()
	return nil
}

func (r *partyRepository) GetByID(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	key := cache.PartyKey(id)

	err := cache.Aside(ctx, key, &party, cache.PartyTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Preload("Leader").First(&party, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Party", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) GetByLeader(ctx context.Context, leaderID uint) (*models.Party, error) {
	var party models.Party
	if err := readDB(r.db).WithContext(ctx).Where("leader_id = ?", leaderID).First(&party).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &party, nil
}

func (r *partyRepository) GetByUser(ctx context.Context, userID uint) (*models.Party, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	if user.CurrentPartyID == nil {
		return nil, nil
	}
	return r.GetByID(ctx, *user.CurrentPartyID)
}

func (r *partyRepository) ListMembers(ctx context.Context, partyID uint) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).
		Where("current_party_id = ?", partyID).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *partyRepository) List(ctx context.Context, limit, offset int) ([]models.Party, error) {
	var parties []models.Party
	if err := readDB(r.db).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&parties).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return parties, nil
}

func (r *partyRepository) ListByType(ctx context.Context, partyType models.PartyType, limit, offset int) ([]models.Party, error) {
	var parties []models.Party
	if err := readDB(r.db).WithContext(ctx).
		Where("type = ?", partyType).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&parties).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return parties, nil
}

func (r *partyRepository) SearchByName(ctx context.Context, query string, limit, offset int) ([]models.Party, error) {
	var parties []models.Party
	pattern := "%" + strings.ToLower(query) + "%"
	if err := readDB(r.db).WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&parties).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return parties, nil
}

// wrapPartyTxError keeps AppError values intact and wraps raw driver errors.
func wrapPartyTxError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
