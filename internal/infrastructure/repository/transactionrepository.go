package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tierworks/sellertiers/internal/domain/ledger"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/mappers"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/models"
	"github.com/tierworks/sellertiers/internal/shared/db"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TransactionMapper
	logger logger.Interface
}

func NewTransactionRepository(db *gorm.DB, logger logger.Interface) ledger.Repository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mappers.NewTransactionMapper(),
		logger: logger,
	}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *ledger.Transaction) error {
	model, err := r.mapper.ToModel(tx)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create transaction", "id", tx.ID(), "owner_id", tx.OwnerID(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id string) (*ledger.Transaction, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TransactionRepositoryImpl) GetByOrderRef(ctx context.Context, orderRef string) (*ledger.Transaction, error) {
	return r.first(ctx, "processor_order_ref = ?", orderRef)
}

func (r *TransactionRepositoryImpl) first(ctx context.Context, query string, arg any) (*ledger.Transaction, error) {
	var model models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *TransactionRepositoryImpl) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*ledger.Transaction, int64, error) {
	var (
		list  []models.TransactionModel
		total int64
	)

	query := db.GetTxFromContext(ctx, r.db).Model(&models.TransactionModel{}).Where("owner_id = ?", ownerID).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// UpdateStatus is a compare-and-swap on status. Immutable columns (owner,
// amount, package, order ref) are never rewritten.
func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, tx *ledger.Transaction, from vo.TransactionStatus) error {
	model, err := r.mapper.ToModel(tx)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", model.ID, from.String()).
		Updates(map[string]any{
			"status":                model.Status,
			"processor_payment_ref": model.ProcessorPaymentRef,
			"signature":             model.Signature,
			"features":              model.Features,
			"failure_reason":        model.FailureReason,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update transaction status", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is no longer %s", ledger.ErrInvalidStatusTransition, model.ID, from)
	}
	return nil
}
