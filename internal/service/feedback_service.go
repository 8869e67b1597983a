package service

import (
	"strings"
	"time"

	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"
)

// FeedbackService admin read access to submitted feedback
type FeedbackService struct {
	repo repository.FeedbackRepository
}

// FeedbackListInput listing input
type FeedbackListInput struct {
	CampaignID  string
	SKUID       string
	Sentiment   string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// NewFeedbackService creates the feedback service
func NewFeedbackService(repo repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// List paginated feedback with rewards attached
func (s *FeedbackService) List(input FeedbackListInput) ([]models.Feedback, int64, error) {
	sentiment := strings.TrimSpace(strings.ToLower(input.Sentiment))
	switch sentiment {
	case "", models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		sentiment = ""
	}
	items, total, err := s.repo.List(repository.FeedbackListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		CampaignID:  input.CampaignID,
		SKUID:       input.SKUID,
		Sentiment:   sentiment,
		Search:      input.Search,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	})
	if err != nil {
		return nil, 0, ErrFeedbackFetchFailed
	}
	return items, total, nil
}

// Get single feedback
func (s *FeedbackService) Get(id string) (*models.Feedback, error) {
	item, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrFeedbackFetchFailed
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}
