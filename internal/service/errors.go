package service

import "errors"

// Validation
var (
	ErrFeedbackMissingFields = errors.New("feedback missing required fields")
	ErrFeedbackFieldTooLong  = errors.New("feedback field too long")
	ErrPhoneInvalid          = errors.New("phone number invalid")
	ErrLocationInvalid       = errors.New("location outside service area")
	ErrRatingInvalid         = errors.New("rating must be an integer between 1 and 5")
	ErrCustomAnswersInvalid  = errors.New("custom answers invalid")
	ErrTokenMismatch         = errors.New("token does not belong to campaign or sku")
	ErrCampaignInactive      = errors.New("campaign is not accepting feedback")
	ErrRewardIDsRequired     = errors.New("reward ids required")
	ErrRewardStatusInvalid   = errors.New("reward status filter invalid")
	ErrExportFormatInvalid   = errors.New("export format invalid")
	ErrQRIDsRequired         = errors.New("qr code ids required")
	ErrBaseURLInvalid        = errors.New("base url invalid")
)

// Conflict
var (
	ErrTokenAlreadyUsed    = errors.New("token already used")
	ErrDuplicateSubmission = errors.New("phone already submitted feedback for campaign")
	ErrPaymentNotQueryable = errors.New("reward has no payment awaiting the gateway")
)

// Not found
var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrSKUNotFound      = errors.New("sku not found")
	ErrRewardNotFound   = errors.New("reward not found")
	ErrNotFound         = errors.New("not found")
)

// Partial batch
var (
	ErrQRNoProducts       = errors.New("campaign has no linked products")
	ErrQRNoVariants       = errors.New("campaign products have no variants")
	ErrQRNothingGenerated = errors.New("no qr codes generated")
)

// Auth
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
)

// Fatal
var (
	ErrRedemptionFailed    = errors.New("redemption failed")
	ErrRewardUpdateFailed  = errors.New("reward update failed")
	ErrRewardFetchFailed   = errors.New("reward fetch failed")
	ErrQRFetchFailed       = errors.New("qr code fetch failed")
	ErrQRRenderFailed      = errors.New("qr code render failed")
	ErrFeedbackFetchFailed = errors.New("feedback fetch failed")
	ErrAnalyticsFailed     = errors.New("analytics summary failed")
	ErrQueueUnavailable    = errors.New("task queue unavailable")
	ErrGatewayUnavailable  = errors.New("payment gateway not configured")
)

// Gateway
var (
	ErrStatusQueryUnavailable = errors.New("payment gateway cannot query status")
	ErrStatusQueryFailed      = errors.New("payment status query failed")
)
