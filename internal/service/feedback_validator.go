package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
)

const (
	customAnswersMaxKeys      = 50
	customAnswerKeyMaxLength  = 64
	customAnswerTextMaxLength = 2000
	customerNameMaxLength     = 100
	commentMaxLength          = 2000
)

// FeedbackSubmission feedback form as received from the scan page
type FeedbackSubmission struct {
	CampaignID    string
	SKUID         string
	CustomerPhone string
	Token         string
	QRID          string
	Location      *models.Location
	Rating        *float64
	CustomerName  *string
	Comment       *string
	CustomAnswers map[string]interface{}
}

// Identifier token or qr id, token first
func (s FeedbackSubmission) Identifier() string {
	if token := strings.TrimSpace(s.Token); token != "" {
		return token
	}
	return strings.TrimSpace(s.QRID)
}

// ValidatedFeedback submission after every pure check passed
type ValidatedFeedback struct {
	CampaignID    string
	SKUID         string
	Phone         string // 254XXXXXXXXX
	Identifier    string
	Location      models.Location
	Rating        int
	CustomerName  *string
	Comment       *string
	CustomAnswers models.CustomAnswers
}

// FeedbackValidator rejects bad submissions before anything is written
type FeedbackValidator struct {
	fence config.GeofenceConfig
}

// NewFeedbackValidator creates the validator
func NewFeedbackValidator(fence config.GeofenceConfig) *FeedbackValidator {
	if strings.TrimSpace(fence.Region) == "" {
		fence.Region = "nairobi"
	}
	return &FeedbackValidator{fence: fence}
}

// Validate runs the pure checks: required fields, phone, geofence, rating, custom answers
func (v *FeedbackValidator) Validate(sub FeedbackSubmission) (*ValidatedFeedback, error) {
	campaignID := strings.TrimSpace(sub.CampaignID)
	skuID := strings.TrimSpace(sub.SKUID)
	identifier := sub.Identifier()
	if campaignID == "" || skuID == "" || strings.TrimSpace(sub.CustomerPhone) == "" || identifier == "" || sub.Location == nil {
		return nil, ErrFeedbackMissingFields
	}

	phone, err := NormalizePhone(sub.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if err := v.CheckLocation(*sub.Location); err != nil {
		return nil, err
	}
	rating, err := validateRating(sub.Rating)
	if err != nil {
		return nil, err
	}
	name, err := optionalText(sub.CustomerName, customerNameMaxLength)
	if err != nil {
		return nil, err
	}
	comment, err := optionalText(sub.Comment, commentMaxLength)
	if err != nil {
		return nil, err
	}
	answers, err := normalizeCustomAnswers(sub.CustomAnswers)
	if err != nil {
		return nil, err
	}

	return &ValidatedFeedback{
		CampaignID:    campaignID,
		SKUID:         skuID,
		Phone:         phone,
		Identifier:    identifier,
		Location:      *sub.Location,
		Rating:        rating,
		CustomerName:  name,
		Comment:       comment,
		CustomAnswers: answers,
	}, nil
}

// CheckLocation bounding box is inclusive on every edge
func (v *FeedbackValidator) CheckLocation(loc models.Location) error {
	if math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) {
		return ErrLocationInvalid
	}
	if loc.Latitude > v.fence.North || loc.Latitude < v.fence.South {
		return ErrLocationInvalid
	}
	if loc.Longitude > v.fence.East || loc.Longitude < v.fence.West {
		return ErrLocationInvalid
	}
	if !strings.Contains(strings.ToLower(loc.Region), strings.ToLower(strings.TrimSpace(v.fence.Region))) {
		return ErrLocationInvalid
	}
	return nil
}

// CheckNotDuplicate read-only anti-abuse checks against the ledger and feedback store
func (v *FeedbackValidator) CheckNotDuplicate(token *models.RedemptionToken, feedbackRepo repository.FeedbackRepository, campaignID, phone string) error {
	if token != nil && token.IsUsed {
		return ErrTokenAlreadyUsed
	}
	exists, err := feedbackRepo.ExistsForPhone(campaignID, phone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedemptionFailed, err)
	}
	if exists {
		return ErrDuplicateSubmission
	}
	return nil
}

func validateRating(raw *float64) (int, error) {
	if raw == nil {
		return 0, ErrRatingInvalid
	}
	value := *raw
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, ErrRatingInvalid
	}
	if value < 1 || value > 5 {
		return 0, ErrRatingInvalid
	}
	return int(value), nil
}

func optionalText(raw *string, max int) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(value) > max {
		return nil, ErrFeedbackFieldTooLong
	}
	return &value, nil
}

func normalizeCustomAnswers(raw map[string]interface{}) (models.CustomAnswers, error) {
	answers := models.CustomAnswers{}
	if len(raw) > customAnswersMaxKeys {
		return nil, fmt.Errorf("%w: more than %d answers", ErrCustomAnswersInvalid, customAnswersMaxKeys)
	}
	for key, value := range raw {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > customAnswerKeyMaxLength {
			return nil, fmt.Errorf("%w: bad key %q", ErrCustomAnswersInvalid, key)
		}
		switch val := value.(type) {
		case nil:
			continue
		case string:
			if utf8.RuneCountInString(val) > customAnswerTextMaxLength {
				return nil, fmt.Errorf("%w: %s too long", ErrCustomAnswersInvalid, trimmed)
			}
			answers[trimmed] = models.NewAnswerValue(val)
		case float64:
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return nil, fmt.Errorf("%w: %s not a number", ErrCustomAnswersInvalid, trimmed)
			}
			answers[trimmed] = models.NewAnswerValue(val)
		case bool:
			answers[trimmed] = models.NewAnswerValue(val)
		case []interface{}:
			items := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok || utf8.RuneCountInString(s) > customAnswerTextMaxLength {
					return nil, fmt.Errorf("%w: %s must be a list of strings", ErrCustomAnswersInvalid, trimmed)
				}
				items = append(items, s)
			}
			answers[trimmed] = models.NewAnswerValue(items)
		case []string:
			answers[trimmed] = models.NewAnswerValue(append([]string(nil), val...))
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type", ErrCustomAnswersInvalid, trimmed)
		}
	}
	return answers, nil
}
