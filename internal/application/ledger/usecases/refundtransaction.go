package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	"github.com/tierworks/sellertiers/internal/shared/db"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type RefundTransactionCommand struct {
	TransactionID string
	Reason        string
	RefundedBy    string
}

type RefundTransactionResult struct {
	Original *ledger.Transaction
	Refund   *ledger.Transaction
}

// RefundTransactionUseCase records that money for a completed purchase was
// returned. The seller's subscription is left as it is.
type RefundTransactionUseCase struct {
	ledgerRepo ledger.Repository
	txManager  db.Runner
	metrics    common.Metrics
	clock      biztime.Clock
	logger     logger.Interface
}

func NewRefundTransactionUseCase(ledgerRepo ledger.Repository, txManager db.Runner, logger logger.Interface) *RefundTransactionUseCase {
	return &RefundTransactionUseCase{
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		metrics:    common.NopMetrics{},
		clock:      biztime.NowUTC,
		logger:     logger,
	}
}

func (uc *RefundTransactionUseCase) SetMetrics(m common.Metrics) {
	uc.metrics = m
}

func (uc *RefundTransactionUseCase) SetClock(clock biztime.Clock) {
	uc.clock = clock
}

func (uc *RefundTransactionUseCase) Execute(ctx context.Context, cmd RefundTransactionCommand) (*RefundTransactionResult, error) {
	if strings.TrimSpace(cmd.TransactionID) == "" {
		return nil, apperrors.NewValidationError("transaction id is required")
	}

	var result RefundTransactionResult
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := uc.clock()

		original, err := uc.ledgerRepo.GetByID(txCtx, cmd.TransactionID)
		if err != nil {
			return err
		}
		if err := original.MarkRefunded(now); err != nil {
			return err
		}
		if err := uc.ledgerRepo.UpdateStatus(txCtx, original, vo.StatusCompleted); err != nil {
			return err
		}

		refund, err := ledger.NewRefund(uuid.NewString(), original, cmd.Reason, now)
		if err != nil {
			return err
		}
		if err := uc.ledgerRepo.Create(txCtx, refund); err != nil {
			return err
		}

		result = RefundTransactionResult{Original: original, Refund: refund}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ledger.ErrTransactionNotFound) &&
			!errors.Is(err, ledger.ErrNotRefundable) &&
			!errors.Is(err, ledger.ErrInvalidStatusTransition) {
			uc.logger.Errorw("refund failed", "transaction_id", cmd.TransactionID, "error", err)
		}
		return nil, common.ToAppError(err)
	}

	uc.metrics.RefundRecorded(result.Original.PackageName())
	uc.logger.Infow("refund recorded",
		"transaction_id", cmd.TransactionID,
		"refund_id", result.Refund.ID(),
		"seller_id", result.Original.OwnerID(),
		"amount", result.Original.Amount().String(),
		"refunded_by", cmd.RefundedBy,
	)
	return &result, nil
}
