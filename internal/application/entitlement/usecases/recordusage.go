package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/tierworks/sellertiers/internal/application/entitlement"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type RecordUsageCommand struct {
	SellerID  string
	Metric    entitlement.UsageMetric
	ListingID string
	Delta     int64
}

// RecordUsageUseCase accepts usage deltas from the listing collaborators so
// the gate has counters to compare against.
type RecordUsageUseCase struct {
	recorder entitlement.UsageRecorder
	clock    biztime.Clock
	logger   logger.Interface
}

func NewRecordUsageUseCase(recorder entitlement.UsageRecorder, logger logger.Interface) *RecordUsageUseCase {
	return &RecordUsageUseCase{
		recorder: recorder,
		clock:    biztime.NowUTC,
		logger:   logger,
	}
}

func (uc *RecordUsageUseCase) Execute(ctx context.Context, cmd RecordUsageCommand) error {
	if strings.TrimSpace(cmd.SellerID) == "" {
		return apperrors.NewValidationError("seller id is required")
	}
	if !cmd.Metric.IsValid() {
		return apperrors.NewValidationError("unknown usage metric", string(cmd.Metric))
	}
	if cmd.Delta == 0 {
		return apperrors.NewValidationError("delta must not be zero")
	}
	if cmd.Delta > entitlement.MaxUsageDelta || cmd.Delta < -entitlement.MaxUsageDelta {
		return apperrors.NewValidationError(
			fmt.Sprintf("delta must be between -%d and %d", entitlement.MaxUsageDelta, entitlement.MaxUsageDelta))
	}
	if cmd.Metric == entitlement.MetricListingPhotos && strings.TrimSpace(cmd.ListingID) == "" {
		return apperrors.NewValidationError("listing_id is required for listing_photos")
	}
	if cmd.Metric == entitlement.MetricBoosts && cmd.Delta < 0 {
		return apperrors.NewValidationError("boost usage cannot be reversed")
	}

	if err := uc.recorder.Record(ctx, cmd.SellerID, cmd.Metric, cmd.ListingID, cmd.Delta, uc.clock()); err != nil {
		uc.logger.Errorw("failed to record usage",
			"seller_id", cmd.SellerID,
			"metric", cmd.Metric,
			"error", err,
		)
		return err
	}
	return nil
}
