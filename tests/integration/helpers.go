package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"sunbird/internal/models"
)

const (
	// Demo operator seeded by cmd/seed
	OperatorEmail    = "operator1@example.com"
	OperatorPassword = "operator123"
)

// baseURL returns the API under test, or skips when none is configured.
// These tests need a running stack (Postgres, Redis, NATS, gateway stub).
func baseURL(t *testing.T) string {
	url := os.Getenv("SUNBIRD_API_URL")
	if url == "" {
		t.Skip("SUNBIRD_API_URL not set, skipping integration test")
	}
	return url
}

// uniqueEmail returns an email unlikely to collide between runs
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// setupOccurrence creates a fresh activity with one bookable occurrence and
// returns the occurrence id
func setupOccurrence(t *testing.T, operator *TestClient, spots int, pricePerAdult int64) int64 {
	description := "Integration test activity"
	activity, resp := operator.CreateActivity(t, models.CreateActivityRequest{
		OperatorID:  1,
		Title:       "Integration Test Tour",
		Description: &description,
		Location:    "Lisbon",
	})
	if activity == nil {
		t.Fatalf("Failed to create activity: status %d", resp.StatusCode)
	}

	startsAt := time.Now().Add(96 * time.Hour)
	occurrence, resp := operator.CreateOccurrence(t, models.CreateOccurrenceRequest{
		ActivityID:      activity.ID,
		StartsAt:        startsAt,
		BookingDeadline: startsAt.Add(-24 * time.Hour),
		AvailableSpots:  spots,
		PricePerAdult:   pricePerAdult,
		PricePerChild:   pricePerAdult / 2,
	})
	if occurrence == nil {
		t.Fatalf("Failed to create occurrence: status %d", resp.StatusCode)
	}

	return occurrence.ID
}

// bookingRequest builds a valid booking form for the occurrence
func bookingRequest(occurrenceID int64, email string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		OccurrenceID: occurrenceID,
		FirstName:    "Test",
		LastName:     "Tourist",
		Email:        email,
		EmailConfirm: email,
		Phone:        "+351000000000",
		AdultCount:   2,
		ChildCount:   0,
		CardToken:    "tok_test_visa",
	}
}
