package mappers

import (
	"encoding/json"
	"fmt"

	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	vo "github.com/tierworks/sellertiers/internal/domain/subscription/valueobjects"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	features, err := decodeFeatures(model.Features)
	if err != nil {
		return nil, fmt.Errorf("subscription %s: %w", model.OwnerID, err)
	}

	return subscription.ReconstructSubscription(
		model.OwnerID,
		model.PackageName,
		vo.SubscriptionStatus(model.Status),
		model.StartDate.UTC(),
		model.EndDate.UTC(),
		features,
		model.Revision,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	features, err := json.Marshal(entity.Features())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}

	return &models.SubscriptionModel{
		OwnerID:     entity.OwnerID(),
		PackageName: entity.PackageName(),
		Status:      entity.Status().String(),
		StartDate:   entity.StartDate(),
		EndDate:     entity.EndDate(),
		Features:    features,
		Revision:    entity.Revision(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}

func decodeFeatures(raw []byte) (catalogvo.FeatureBundle, error) {
	var f catalogvo.FeatureBundle
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	return f, nil
}
