package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/application/entitlement"
	subscriptionapp "github.com/tierworks/sellertiers/internal/application/subscription"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

// Denial reasons added by the gate on top of the state machine's.
const (
	ReasonQuotaExceeded      subscriptionapp.DenyReason = "quota_exceeded"
	ReasonFeatureNotIncluded subscriptionapp.DenyReason = "feature_not_included"
)

type AuthorizeCommand struct {
	SellerID  string
	Action    entitlement.Action
	ListingID string
}

type AuthorizeResult struct {
	Allowed     bool
	Reason      subscriptionapp.DenyReason
	PackageName string
	Limit       int
	Used        int64
}

// AuthorizeUseCase is the entitlement gate. It has no side effects of its
// own; the only write it can cause is the state machine's expiry downgrade.
type AuthorizeUseCase struct {
	stateMachine *subscriptionapp.StateMachine
	usage        entitlement.UsageProvider
	metrics      common.Metrics
	logger       logger.Interface
}

func NewAuthorizeUseCase(
	stateMachine *subscriptionapp.StateMachine,
	usage entitlement.UsageProvider,
	logger logger.Interface,
) *AuthorizeUseCase {
	return &AuthorizeUseCase{
		stateMachine: stateMachine,
		usage:        usage,
		metrics:      common.NopMetrics{},
		logger:       logger,
	}
}

func (uc *AuthorizeUseCase) SetMetrics(m common.Metrics) {
	uc.metrics = m
}

func (uc *AuthorizeUseCase) Execute(ctx context.Context, cmd AuthorizeCommand) (*AuthorizeResult, error) {
	if strings.TrimSpace(cmd.SellerID) == "" {
		return nil, apperrors.NewValidationError("seller id is required")
	}
	if !cmd.Action.IsValid() {
		return nil, apperrors.NewValidationError("unknown action", string(cmd.Action))
	}
	if cmd.Action == entitlement.ActionUploadPhoto && strings.TrimSpace(cmd.ListingID) == "" {
		return nil, apperrors.NewValidationError("listing_id is required for upload_photo")
	}

	decision, err := uc.stateMachine.CheckAndEnforce(ctx, cmd.SellerID)
	if err != nil {
		uc.logger.Errorw("subscription check failed", "seller_id", cmd.SellerID, "error", err)
		return nil, common.ToAppError(err)
	}
	if !decision.Allowed {
		return uc.decide(cmd, &AuthorizeResult{Reason: decision.Reason, PackageName: packageOf(decision)}), nil
	}

	features := decision.Subscription.Features()
	result := &AuthorizeResult{Allowed: true, PackageName: decision.Subscription.PackageName()}

	switch cmd.Action {
	case entitlement.ActionCreateListing:
		used, err := uc.usage.ActiveListings(ctx, cmd.SellerID)
		if err != nil {
			return nil, fmt.Errorf("failed to read active listings: %w", err)
		}
		withinQuota(result, features.MaxListings, used)
	case entitlement.ActionUploadPhoto:
		used, err := uc.usage.ListingPhotos(ctx, cmd.SellerID, cmd.ListingID)
		if err != nil {
			return nil, fmt.Errorf("failed to read listing photos: %w", err)
		}
		withinQuota(result, features.MaxPhotos, used)
	case entitlement.ActionUseBoost:
		used, err := uc.usage.BoostsSince(ctx, cmd.SellerID, decision.Subscription.StartDate())
		if err != nil {
			return nil, fmt.Errorf("failed to count boosts: %w", err)
		}
		withinQuota(result, features.BoostCount, used)
	case entitlement.ActionViewAnalytics:
		if !features.Analytics {
			result.Allowed = false
			result.Reason = ReasonFeatureNotIncluded
		}
	}

	return uc.decide(cmd, result), nil
}

func (uc *AuthorizeUseCase) decide(cmd AuthorizeCommand, result *AuthorizeResult) *AuthorizeResult {
	uc.metrics.GateDecision(string(cmd.Action), result.Allowed, string(result.Reason))
	if !result.Allowed {
		uc.logger.Debugw("entitlement denied",
			"seller_id", cmd.SellerID,
			"action", cmd.Action,
			"reason", result.Reason,
			"package", result.PackageName,
		)
	}
	return result
}

func withinQuota(result *AuthorizeResult, limit int, used int64) {
	result.Limit = limit
	result.Used = used
	if used >= int64(limit) {
		result.Allowed = false
		result.Reason = ReasonQuotaExceeded
	}
}

func packageOf(d subscriptionapp.Decision) string {
	if d.Subscription == nil {
		return ""
	}
	return d.Subscription.PackageName()
}
