package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// ErrDirectionsNotConfigured is returned when no Google Maps server key is set.
var ErrDirectionsNotConfigured = errors.New("directions: GOOGLE_MAPS_API_KEY not configured")

// RouteStatusError is a Directions answer whose status is not OK.
type RouteStatusError struct {
	Status  string
	Message string
}

func (e *RouteStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("directions status %s: %s", e.Status, e.Message)
	}
	return "directions status " + e.Status
}

// Route is the first driving route between two free-text places.
type Route struct {
	Origin       string
	Destination  string
	StartAddress string
	EndAddress   string
	Summary      string
	Distance     int // metres
	Duration     time.Duration
	Path         orb.LineString
}

func (r *Route) Bound() orb.Bound {
	return r.Path.Bound()
}

// FeatureCollection renders the route as a single LineString feature for the map overlay.
func (r *Route) FeatureCollection() *geojson.FeatureCollection {
	feature := geojson.NewFeature(r.Path)
	feature.Properties["origin"] = r.Origin
	feature.Properties["destination"] = r.Destination
	feature.Properties["summary"] = r.Summary
	feature.Properties["distance_m"] = r.Distance
	feature.Properties["duration_s"] = int(r.Duration.Seconds())

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}

// ─── Directions Client ────────────────────────────────────────────────────────

type DirectionsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewDirectionsClient(apiKey string, logger *zap.Logger) *DirectionsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectionsClient{
		apiKey:     apiKey,
		baseURL:    googleDirectionsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Route requests driving directions from origin to destination.
func (d *DirectionsClient) Route(ctx context.Context, origin, destination string) (*Route, error) {
	if d.apiKey == "" {
		return nil, ErrDirectionsNotConfigured
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", "driving")
	params.Set("key", d.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build directions request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions API returned %s", resp.Status)
	}

	var apiResp directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse directions response: %w", err)
	}

	if apiResp.Status != "OK" {
		return nil, &RouteStatusError{Status: apiResp.Status, Message: apiResp.ErrorMessage}
	}
	if len(apiResp.Routes) == 0 {
		return nil, &RouteStatusError{Status: "ZERO_RESULTS"}
	}

	first := apiResp.Routes[0]
	path, err := decodePath(first.OverviewPolyline.Points)
	if err != nil {
		return nil, err
	}

	route := &Route{
		Origin:      origin,
		Destination: destination,
		Summary:     first.Summary,
		Path:        path,
	}
	for _, l := range first.Legs {
		route.Distance += l.Distance.Value
		route.Duration += time.Duration(l.Duration.Value) * time.Second
	}
	if len(first.Legs) > 0 {
		route.StartAddress = first.Legs[0].StartAddress
		route.EndAddress = first.Legs[len(first.Legs)-1].EndAddress
	}

	d.logger.Debug("route resolved",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Int("points", len(path)),
		zap.Int("distance_m", route.Distance))

	return route, nil
}

// decodePath turns a Google encoded polyline into lng/lat points.
func decodePath(encoded string) (orb.LineString, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode overview polyline: %w", err)
	}
	path := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		path = append(path, orb.Point{c[1], c[0]})
	}
	return path, nil
}

// --- Directions API response ---

type directionsResponse struct {
	Routes       []directionsRoute `json:"routes"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

type directionsRoute struct {
	Summary          string          `json:"summary"`
	Legs             []directionsLeg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type directionsLeg struct {
	StartAddress string     `json:"start_address"`
	EndAddress   string     `json:"end_address"`
	Distance     valueField `json:"distance"`
	Duration     valueField `json:"duration"`
}

type valueField struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
