package subscription

import "context"

// Repository persists one Subscription per seller. Create fails with
// ErrConcurrentModification when the row already exists. Update is a
// compare-and-swap on the revision the aggregate was loaded at.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByOwner(ctx context.Context, ownerID string) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
}
