package mappers

import (
	"encoding/json"
	"fmt"

	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/infrastructure/persistence/models"
)

type TransactionMapper interface {
	ToEntity(model *models.TransactionModel) (*ledger.Transaction, error)
	ToEntities(list []models.TransactionModel) ([]*ledger.Transaction, error)
	ToModel(entity *ledger.Transaction) (*models.TransactionModel, error)
}

type TransactionMapperImpl struct{}

func NewTransactionMapper() TransactionMapper {
	return &TransactionMapperImpl{}
}

func (m *TransactionMapperImpl) ToEntity(model *models.TransactionModel) (*ledger.Transaction, error) {
	if model == nil {
		return nil, nil
	}

	features, err := decodeFeatures(model.Features)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", model.ID, err)
	}

	orderRef := ""
	if model.ProcessorOrderRef != nil {
		orderRef = *model.ProcessorOrderRef
	}

	return ledger.ReconstructTransaction(
		model.ID,
		model.OwnerID,
		vo.TransactionKind(model.Kind),
		model.PackageName,
		catalogvo.NewMoney(model.Amount, model.Currency),
		vo.TransactionStatus(model.Status),
		orderRef,
		model.ProcessorPaymentRef,
		model.Signature,
		model.Receipt,
		model.CatalogVersion,
		features,
		model.FailureReason,
		model.RefundOf,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *TransactionMapperImpl) ToEntities(list []models.TransactionModel) ([]*ledger.Transaction, error) {
	out := make([]*ledger.Transaction, 0, len(list))
	for i := range list {
		tx, err := m.ToEntity(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *TransactionMapperImpl) ToModel(entity *ledger.Transaction) (*models.TransactionModel, error) {
	if entity == nil {
		return nil, nil
	}

	features, err := json.Marshal(entity.Features())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}

	// NULL keeps entries without an order ref out of the unique index
	var orderRef *string
	if ref := entity.ProcessorOrderRef(); ref != "" {
		orderRef = &ref
	}

	return &models.TransactionModel{
		ID:                  entity.ID(),
		OwnerID:             entity.OwnerID(),
		Kind:                entity.Kind().String(),
		PackageName:         entity.PackageName(),
		Amount:              entity.Amount().Amount(),
		Currency:            entity.Amount().Currency(),
		Status:              entity.Status().String(),
		ProcessorOrderRef:   orderRef,
		ProcessorPaymentRef: entity.ProcessorPaymentRef(),
		Signature:           entity.Signature(),
		Receipt:             entity.Receipt(),
		CatalogVersion:      entity.CatalogVersion(),
		Features:            features,
		FailureReason:       entity.FailureReason(),
		RefundOf:            entity.RefundOf(),
		CreatedAt:           entity.CreatedAt(),
		UpdatedAt:           entity.UpdatedAt(),
	}, nil
}
