package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"omtours/models"
)

const defaultItineraryError = "Failed to fetch itinerary"

// APIError is a non-2xx answer from the itinerary service. Message is what the user sees.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ─── Itinerary Client ─────────────────────────────────────────────────────────

type ItineraryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewItineraryClient returns a client for the itinerary service at baseURL. A zero timeout
// leaves the call bounded only by the caller's context.
func NewItineraryClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ItineraryClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItineraryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Generate asks the itinerary service for a plan. The request is not validated here.
func (c *ItineraryClient) Generate(ctx context.Context, trip models.TripRequest) (*models.ItineraryResponse, error) {
	reqURL := c.baseURL + "/itinerary/?" + itineraryQuery(trip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("itinerary request failed", zap.String("destination", trip.Destination), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read itinerary response: %w", err)
	}

	c.logger.Info("itinerary service responded",
		zap.Int("status", resp.StatusCode),
		zap.String("destination", trip.Destination),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var itinerary models.ItineraryResponse
	if err := json.Unmarshal(body, &itinerary); err != nil {
		return nil, fmt.Errorf("failed to parse itinerary: %w", err)
	}
	return &itinerary, nil
}

// itineraryQuery keeps the parameter order the service documents.
func itineraryQuery(trip models.TripRequest) string {
	return fmt.Sprintf(
		"destination=%s&start_date=%s&end_date=%s&number_of_people=%s&purpose=%s&budget=%s&location=%s&mode_of_transport=%s",
		url.QueryEscape(trip.Destination),
		url.QueryEscape(trip.StartDate),
		url.QueryEscape(trip.EndDate),
		url.QueryEscape(trip.TravelerCount),
		url.QueryEscape(trip.Purpose),
		url.QueryEscape(trip.Budget),
		url.QueryEscape(trip.OriginLocation),
		url.QueryEscape(string(trip.TravelMode)),
	)
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return defaultItineraryError
	}
	return payload.Message
}
