package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"sunbird/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Operator Basic Auth credentials, empty for tourist calls
	OperatorEmail    string
	OperatorPassword string
}

// NewTestClient creates a new test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AsOperator returns a copy of the client that authenticates as the operator
func (c *TestClient) AsOperator(email, password string) *TestClient {
	copied := *c
	copied.OperatorEmail = email
	copied.OperatorPassword = password
	return &copied
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.OperatorEmail != "" {
		req.SetBasicAuth(c.OperatorEmail, c.OperatorPassword)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// CreateBooking creates a booking and returns the response
func (c *TestClient) CreateBooking(t *testing.T, req models.CreateBookingRequest) (*models.CreateBookingResponse, *http.Response) {
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	if resp.StatusCode != http.StatusCreated {
		return nil, resp
	}

	var out models.CreateBookingResponse
	decodeBody(t, resp, &out)
	return &out, resp
}

// GetBooking fetches booking detail by reference
func (c *TestClient) GetBooking(t *testing.T, reference string) (*models.BookingDetailResponse, *http.Response) {
	resp := c.makeRequest(t, "GET", "/api/bookings/"+reference, nil)
	if resp.StatusCode != http.StatusOK {
		return nil, resp
	}

	var out models.BookingDetailResponse
	decodeBody(t, resp, &out)
	return &out, resp
}

// ListBookings lists the tourist's bookings by email
func (c *TestClient) ListBookings(t *testing.T, email string) []models.ListBookingsResponseItem {
	resp := c.makeRequest(t, "GET", "/api/bookings?email="+email, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Failed to list bookings: status %d", resp.StatusCode)
	}

	var out []models.ListBookingsResponseItem
	decodeBody(t, resp, &out)
	return out
}

// BookingAction performs one of the PATCH transitions on a booking
func (c *TestClient) BookingAction(t *testing.T, action, reference, reason string) *http.Response {
	return c.makeRequest(t, "PATCH", fmt.Sprintf("/api/bookings/%s", action), models.BookingActionRequest{
		Reference: reference,
		Reason:    reason,
	})
}

// CreateActivity creates an activity as the authenticated operator
func (c *TestClient) CreateActivity(t *testing.T, req models.CreateActivityRequest) (*models.CreateActivityResponse, *http.Response) {
	resp := c.makeRequest(t, "POST", "/api/activities", req)
	if resp.StatusCode != http.StatusCreated {
		return nil, resp
	}

	var out models.CreateActivityResponse
	decodeBody(t, resp, &out)
	return &out, resp
}

// CreateOccurrence creates an occurrence as the authenticated operator
func (c *TestClient) CreateOccurrence(t *testing.T, req models.CreateOccurrenceRequest) (*models.CreateOccurrenceResponse, *http.Response) {
	resp := c.makeRequest(t, "POST", "/api/occurrences", req)
	if resp.StatusCode != http.StatusCreated {
		return nil, resp
	}

	var out models.CreateOccurrenceResponse
	decodeBody(t, resp, &out)
	return &out, resp
}

// ListOccurrences lists upcoming occurrences for an activity
func (c *TestClient) ListOccurrences(t *testing.T, activityID int64) []models.ListOccurrencesResponseItem {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/activities/%d/occurrences", activityID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Failed to list occurrences: status %d", resp.StatusCode)
	}

	var out []models.ListOccurrencesResponseItem
	decodeBody(t, resp, &out)
	return out
}

// SendPaymentNotification posts a gateway webhook payload
func (c *TestClient) SendPaymentNotification(t *testing.T, payload models.PaymentNotificationPayload) *http.Response {
	return c.makeRequest(t, "POST", "/api/payments/notifications", payload)
}
