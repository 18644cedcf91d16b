package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/tierworks/sellertiers/internal/domain/ledger"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type ListTransactionsQuery struct {
	SellerID string
	Page     int
	PageSize int
}

type ListTransactionsResult struct {
	Transactions []*ledger.Transaction
	Total        int64
	Page         int
	PageSize     int
}

type ListTransactionsUseCase struct {
	ledgerRepo ledger.Repository
	logger     logger.Interface
}

func NewListTransactionsUseCase(ledgerRepo ledger.Repository, logger logger.Interface) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Execute returns the seller's ledger newest first. Page and PageSize are
// expected to be normalised by the caller.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query ListTransactionsQuery) (*ListTransactionsResult, error) {
	if strings.TrimSpace(query.SellerID) == "" {
		return nil, apperrors.NewValidationError("seller id is required")
	}
	if query.Page < 1 || query.PageSize < 1 {
		return nil, apperrors.NewValidationError("page and page_size must be positive")
	}

	offset := (query.Page - 1) * query.PageSize
	txs, total, err := uc.ledgerRepo.ListByOwner(ctx, query.SellerID, offset, query.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list transactions", "seller_id", query.SellerID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &ListTransactionsResult{
		Transactions: txs,
		Total:        total,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}, nil
}
