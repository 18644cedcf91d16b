package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
	ErrInvalidTransaction      = errors.New("invalid transaction")
	ErrNotRefundable           = errors.New("transaction is not refundable")
)

func errTransition(from, to fmt.Stringer) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
}
