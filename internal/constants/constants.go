package constants

// Reward status
const (
	RewardStatusPending  = "pending"
	RewardStatusSent     = "sent"
	RewardStatusFailed   = "failed"
	RewardStatusVerified = "verified"
)

// RewardStatuses accepted values of the listing filter
var RewardStatuses = []string{RewardStatusPending, RewardStatusSent, RewardStatusFailed, RewardStatusVerified}

// Payment transaction status
const (
	PaymentStatusPending   = "pending"
	PaymentStatusInitiated = "initiated"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment provider
const (
	PaymentProviderMpesa = "mpesa"
)

// M-Pesa B2C command ids
const (
	MpesaCommandBusinessPayment  = "BusinessPayment"
	MpesaCommandSalaryPayment    = "SalaryPayment"
	MpesaCommandPromotionPayment = "PromotionPayment"
)

// Queue names and task types
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskRewardDispatch      = "reward:dispatch"
	TaskPaymentTimeoutGuard = "payment:timeout_guard"
)

// Cache defaults
const (
	RedisPrefixDefault = "sp"
)

// Currency of every payout
const (
	CurrencyDefault = "KES"
)

// QR defaults
const (
	QRTotalCodesDefault = 1680
	QRBatchSizeDefault  = 100
	QRImageSizeDefault  = 300
	QRListPageSize      = 50
	QRListMaxPageSize   = 1000
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)
