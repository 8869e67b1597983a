package shared

// messages user-facing text per message key
var messages = map[string]string{
	"error.bad_request":                "Invalid request",
	"error.unauthorized":               "Authentication required",
	"error.forbidden":                  "Access denied",
	"error.not_found":                  "Resource not found",
	"error.too_many_requests":          "Too many requests, please try again later",
	"error.rate_limited":               "Too many requests, please try again in %d seconds",
	"error.feedback_too_many":          "Too many submissions, please try again in %d seconds",
	"error.login_too_many":             "Too many login attempts, please try again in %d seconds",
	"error.rate_limit_unavailable":     "Service temporarily unavailable",
	"error.jwt_secret_missing":         "Authentication is not configured",
	"error.auth_header_missing":        "Authorization header is missing",
	"error.auth_header_invalid":        "Authorization header must be a Bearer token",
	"error.internal":                   "Something went wrong, please try again",
	"error.login_invalid":              "Invalid username or password",
	"error.login_failed":               "Login failed",
	"error.token_invalid":              "Session expired, please sign in again",
	"error.feedback_missing_fields":    "Please fill in all required fields",
	"error.feedback_field_too_long":    "One of the fields is too long",
	"error.phone_invalid":              "Please enter a valid Kenyan mobile number",
	"error.location_invalid":           "This offer is only available within Nairobi",
	"error.rating_invalid":             "Rating must be a whole number between 1 and 5",
	"error.custom_answers_invalid":     "Some answers could not be accepted",
	"error.token_mismatch":             "This code does not belong to this product",
	"error.token_not_found":            "This code is not valid",
	"error.token_already_used":         "This code has already been redeemed",
	"error.duplicate_submission":       "You have already submitted feedback for this campaign",
	"error.campaign_not_found":         "Campaign not found",
	"error.campaign_inactive":          "This campaign is not accepting feedback",
	"error.sku_not_found":              "Product variant not found",
	"error.redemption_failed":          "We could not record your feedback, please try again",
	"error.qr_no_products":             "The campaign has no linked products",
	"error.qr_no_variants":             "The campaign products have no variants",
	"error.qr_nothing_generated":       "No QR codes could be generated",
	"error.qr_not_found":               "QR code not found",
	"error.qr_fetch_failed":            "Failed to load QR codes",
	"error.qr_render_failed":           "Failed to render QR code",
	"error.qr_ids_required":            "Select at least one QR code",
	"error.base_url_invalid":           "Base URL must be an http or https origin",
	"error.export_format_invalid":      "Export format must be csv or json",
	"error.feedback_fetch_failed":      "Failed to load feedback",
	"error.reward_ids_required":        "Select at least one reward",
	"error.reward_status_invalid":      "Unknown reward status",
	"error.reward_not_found":           "Reward not found",
	"error.reward_fetch_failed":        "Failed to load rewards",
	"error.reward_update_failed":       "Failed to update reward",
	"error.gateway_unavailable":        "Payouts are not configured",
	"error.queue_unavailable":          "Background queue is not available",
	"error.payment_callback_invalid":   "Invalid callback payload",
	"error.payment_not_queryable":      "This reward has no payment awaiting a result",
	"error.status_query_unavailable":   "Payment status lookups are not available",
	"error.status_query_failed":        "The payment provider did not accept the status lookup",
	"error.reward_status_query_failed": "Failed to query payment status",
	"error.analytics_failed":           "Failed to load analytics",
}

// Message resolves a message key; unknown keys are returned as is
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
