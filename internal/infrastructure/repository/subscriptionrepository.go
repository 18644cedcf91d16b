package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tierworks/sellertiers/internal/domain/subscription"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/mappers"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/models"
	"github.com/tierworks/sellertiers/internal/shared/db"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *subscription.Subscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return subscription.ErrConcurrentModification
		}
		r.logger.Errorw("failed to create subscription", "owner_id", s.OwnerID(), "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByOwner(ctx context.Context, ownerID string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	err := db.GetTxFromContext(ctx, r.db).Where("owner_id = ?", ownerID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to get subscription", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// Update writes s only when the stored revision is the one s was read at.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, s *subscription.Subscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("owner_id = ? AND revision = ?", model.OwnerID, model.Revision-1).
		Updates(map[string]any{
			"package_name": model.PackageName,
			"status":       model.Status,
			"start_date":   model.StartDate,
			"end_date":     model.EndDate,
			"features":     model.Features,
			"revision":     model.Revision,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "owner_id", model.OwnerID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrConcurrentModification
	}
	return nil
}
