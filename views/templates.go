package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"omtours/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names rendered by the handlers.
const (
	FormPage      = "form.tmpl"
	ItineraryPage = "itinerary.tmpl"
	RoutePage     = "route.tmpl"
	DocsPage      = "docs.tmpl"
)

// DefaultMapCenter is where the route map opens: the geographic centre of India.
var DefaultMapCenter = LatLng{Lat: 20.5937, Lng: 78.9629}

const DefaultMapZoom = 5

type LatLng struct {
	Lat float64
	Lng float64
}

// FormPageData feeds the trip form.
type FormPageData struct {
	Request models.TripRequest
	Error   string
	Loading bool
	Modes   []models.TravelMode
}

// ItineraryPageData feeds the itinerary page.
type ItineraryPageData struct {
	Itinerary ItineraryView
}

// RoutePageData feeds the route viewer. Route is nil until a route has been resolved.
type RoutePageData struct {
	Source      string
	Destination string
	BrowserKey  string
	Center      LatLng
	Zoom        int
	Route       interface{}
	Summary     string
}

var funcs = template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
}

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
