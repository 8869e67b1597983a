package public

import (
	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

var feedbackValidationErrorRules = []handlershared.MappedError{
	{Target: service.ErrFeedbackMissingFields, Code: response.CodeBadRequest, Key: "error.feedback_missing_fields"},
	{Target: service.ErrFeedbackFieldTooLong, Code: response.CodeBadRequest, Key: "error.feedback_field_too_long"},
	{Target: service.ErrPhoneInvalid, Code: response.CodeBadRequest, Key: "error.phone_invalid"},
	{Target: service.ErrLocationInvalid, Code: response.CodeBadRequest, Key: "error.location_invalid"},
	{Target: service.ErrRatingInvalid, Code: response.CodeBadRequest, Key: "error.rating_invalid"},
	{Target: service.ErrCustomAnswersInvalid, Code: response.CodeBadRequest, Key: "error.custom_answers_invalid"},
}

var redemptionErrorRules = []handlershared.MappedError{
	{Target: service.ErrTokenMismatch, Code: response.CodeBadRequest, Key: "error.token_mismatch"},
	{Target: service.ErrCampaignInactive, Code: response.CodeBadRequest, Key: "error.campaign_inactive"},
	{Target: service.ErrTokenAlreadyUsed, Code: response.CodeConflict, Key: "error.token_already_used"},
	{Target: service.ErrDuplicateSubmission, Code: response.CodeConflict, Key: "error.duplicate_submission"},
	{Target: service.ErrTokenNotFound, Code: response.CodeNotFound, Key: "error.token_not_found"},
	{Target: service.ErrCampaignNotFound, Code: response.CodeNotFound, Key: "error.campaign_not_found"},
	{Target: service.ErrSKUNotFound, Code: response.CodeNotFound, Key: "error.sku_not_found"},
}

func concatMappedErrors(groups ...[]handlershared.MappedError) []handlershared.MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]handlershared.MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

func respondFeedbackSubmitError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, concatMappedErrors(feedbackValidationErrorRules, redemptionErrorRules), response.CodeInternal, "error.redemption_failed")
}
