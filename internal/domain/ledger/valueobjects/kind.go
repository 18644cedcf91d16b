package valueobjects

type TransactionKind string

const (
	KindPurchase       TransactionKind = "purchase"
	KindFreeActivation TransactionKind = "free_activation"
	KindRefund         TransactionKind = "refund"
)

func (k TransactionKind) String() string {
	return string(k)
}

func (k TransactionKind) IsValid() bool {
	return k == KindPurchase || k == KindFreeActivation || k == KindRefund
}
