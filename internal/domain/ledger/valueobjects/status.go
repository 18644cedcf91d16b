package valueobjects

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusRefunded  TransactionStatus = "refunded"
)

var transitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusRefunded},
}

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo enforces pending -> completed|failed and
// completed -> refunded. Nothing else moves.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s TransactionStatus) IsFinal() bool {
	return s == StatusFailed || s == StatusRefunded
}
