package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionExpired  = errors.New("subscription expired")
	// ErrConcurrentModification means the revision moved between read and
	// write. Callers re-read and retry; it never reaches a client.
	ErrConcurrentModification   = errors.New("subscription modified concurrently")
	ErrActiveSubscriptionExists = errors.New("an active subscription already exists")
	ErrInvalidSubscription      = errors.New("invalid subscription")
)
