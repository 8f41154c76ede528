package service

import (
	"context"
	"fmt"

	"sunbird/internal/apperrors"
	"sunbird/internal/logger"
	"sunbird/internal/models"
	"sunbird/internal/repository"
	"sunbird/internal/search"
)

type ActivityService struct {
	activities  *repository.ActivityRepository
	occurrences *repository.OccurrenceRepository
	operators   *repository.OperatorRepository
	es          *search.ElasticsearchClient
}

func NewActivityService(activities *repository.ActivityRepository, occurrences *repository.OccurrenceRepository, operators *repository.OperatorRepository, es *search.ElasticsearchClient) *ActivityService {
	return &ActivityService{
		activities:  activities,
		occurrences: occurrences,
		operators:   operators,
		es:          es,
	}
}

func (s *ActivityService) Create(ctx context.Context, req *models.CreateActivityRequest) (*models.CreateActivityResponse, error) {
	operator, err := s.operators.GetByID(ctx, req.OperatorID)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, apperrors.ErrNotFound
	}

	activity := &models.Activity{
		OperatorID:  req.OperatorID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.indexActivity(ctx, activity, nil)

	return &models.CreateActivityResponse{ID: activity.ID}, nil
}

func (s *ActivityService) CreateOccurrence(ctx context.Context, req *models.CreateOccurrenceRequest) (*models.CreateOccurrenceResponse, error) {
	verr := apperrors.NewValidationError()
	if !req.BookingDeadline.Before(req.StartsAt) {
		verr.Add("booking_deadline", "deadline must precede the start time")
	}
	if req.AvailableSpots <= 0 {
		verr.Add("available_spots", "capacity must be positive")
	}
	if req.PricePerAdult < 0 || req.PricePerChild < 0 {
		verr.Add("price_per_adult", "prices cannot be negative")
	}
	if verr.HasViolations() {
		return nil, verr
	}

	activity, err := s.activities.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apperrors.ErrNotFound
	}

	occ := &models.Occurrence{
		ActivityID:      req.ActivityID,
		StartsAt:        req.StartsAt,
		BookingDeadline: req.BookingDeadline,
		AvailableSpots:  req.AvailableSpots,
		PricePerAdult:   req.PricePerAdult,
		PricePerChild:   req.PricePerChild,
	}
	if err := s.occurrences.Create(ctx, occ, req.OperatorID); err != nil {
		return nil, fmt.Errorf("failed to create occurrence: %w", err)
	}

	s.indexActivity(ctx, activity, occ)

	return &models.CreateOccurrenceResponse{ID: occ.ID}, nil
}

func (s *ActivityService) ListOccurrences(ctx context.Context, activityID int64) ([]models.ListOccurrencesResponseItem, error) {
	occurrences, err := s.occurrences.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ListOccurrencesResponseItem, len(occurrences))
	for i, occ := range occurrences {
		items[i] = models.ListOccurrencesResponseItem{
			ID:             occ.ID,
			ActivityID:     occ.ActivityID,
			StartsAt:       occ.StartsAt,
			AvailableSpots: occ.AvailableSpots,
			PricePerAdult:  occ.PricePerAdult,
			PricePerChild:  occ.PricePerChild,
		}
	}
	return items, nil
}

// Search queries the discovery index. Postgres is not consulted here; stale
// availability is acceptable for browsing and corrected at booking time.
func (s *ActivityService) Search(ctx context.Context, query, location, date string, page, pageSize int) ([]search.ActivityDocument, error) {
	if s.es == nil {
		return nil, fmt.Errorf("search index is not configured")
	}
	return s.es.Search(ctx, query, location, date, page, pageSize)
}

// Reindex pushes every activity with its nearest upcoming occurrence into the
// search index. Used at startup and by the sync tool.
func (s *ActivityService) Reindex(ctx context.Context) (int, error) {
	const pageSize = 200
	indexed := 0

	for offset := 0; ; offset += pageSize {
		activities, err := s.activities.List(ctx, pageSize, offset)
		if err != nil {
			return indexed, err
		}
		if len(activities) == 0 {
			return indexed, nil
		}

		for i := range activities {
			activity := &activities[i]
			occurrences, err := s.occurrences.ListByActivity(ctx, activity.ID)
			if err != nil {
				return indexed, err
			}

			var next *models.Occurrence
			if len(occurrences) > 0 {
				next = &occurrences[0]
			}
			s.indexActivity(ctx, activity, next)
			indexed++
		}
	}
}

func (s *ActivityService) indexActivity(ctx context.Context, activity *models.Activity, next *models.Occurrence) {
	if s.es == nil {
		return
	}

	doc := &search.ActivityDocument{
		ID:         activity.ID,
		OperatorID: activity.OperatorID,
		Title:      activity.Title,
		Location:   activity.Location,
		CreatedAt:  activity.CreatedAt,
	}
	if activity.Description != nil {
		doc.Description = *activity.Description
	}
	if next != nil {
		startsAt := next.StartsAt
		doc.NextStartsAt = &startsAt
		doc.MinPriceAdult = next.PricePerAdult
		doc.SpotsAvailable = next.AvailableSpots
	}

	// Indexing is best-effort: the search projection lags, never blocks.
	if err := s.es.IndexActivity(ctx, doc); err != nil {
		logger.WithContext(ctx).Error("Failed to index activity",
			"error", err,
			"activity_id", activity.ID)
	}
}
