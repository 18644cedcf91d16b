package ledger

import (
	"context"

	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
)

// Repository is the append-only transaction ledger. Rows are never deleted.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	GetByOrderRef(ctx context.Context, orderRef string) (*Transaction, error)
	// ListByOwner returns newest first together with the total count.
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*Transaction, int64, error)
	// UpdateStatus writes tx only if the stored status still equals from.
	// A lost race returns ErrInvalidStatusTransition.
	UpdateStatus(ctx context.Context, tx *Transaction, from vo.TransactionStatus) error
}
