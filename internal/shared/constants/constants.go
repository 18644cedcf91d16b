package constants

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderAuthorization = "Authorization"
	HeaderInternalToken = "X-Internal-Token"
	HeaderXRequestID    = "X-Request-ID"

	// gin context keys set by the auth middleware
	ContextKeyUserID    = "user_id"
	ContextKeySessionID = "session_id"
	ContextKeyUserRole  = "user_role"

	RoleSeller = "seller"
	RoleAdmin  = "admin"

	TableSellerSubscriptions = "seller_subscriptions"
	TableTransactions        = "tier_transactions"
)
