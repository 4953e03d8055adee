package views

import (
	"encoding/json"
	"fmt"

	"omtours/models"
)

// DocParameter is one query parameter of the itinerary service.
type DocParameter struct {
	Name        string
	Description string
}

// DocsPageData feeds the itinerary service documentation page.
type DocsPageData struct {
	Parameters []DocParameter
	Example    string
}

// ItineraryParameters lists the itinerary service's query parameters in request order.
var ItineraryParameters = []DocParameter{
	{"destination", "Destination city/country (string)"},
	{"start_date", "Trip start date (YYYY-MM-DD)"},
	{"end_date", "Trip end date (YYYY-MM-DD)"},
	{"number_of_people", "Number of travelers (integer)"},
	{"purpose", "Trip purpose (vacation/business/pilgrimage) (string)"},
	{"budget", "Total trip budget (float)"},
	{"location", "Current location of travelers (string)"},
	{"mode_of_transport", "Preferred transport mode (string)"},
}

// ExampleItinerary is a sample response as the itinerary service returns it.
var ExampleItinerary = models.ItineraryResponse{
	TripSummary: models.TripSummary{
		From:        "Mumbai",
		To:          "Goa",
		TravelDates: []string{"2025-04-01", "2025-04-10"},
		TotalBudget: 20000,
		Currency:    "INR",
	},
	Transport: models.Transport{
		Selected: "flight",
		Options:  []models.TransportOption{{Mode: "flight", Cost: 8000, Duration: "1h30m"}},
	},
	Budget: models.BudgetBreakdown{
		{Category: "transport", Amount: 8000},
		{Category: "accommodation", Amount: 6000},
		{Category: "activities", Amount: 4000},
		{Category: "food", Amount: 4000},
		{Category: "contingency", Amount: 2000},
		{Category: "remaining", Amount: 0},
	},
	Itinerary: []models.DayPlan{
		{Day: 1, Date: "2025-04-01", Activities: []string{"Beach exploration", "Museum", "Waterfall"}, TransportUsed: "taxi"},
		{Day: 2, Date: "2025-04-02", Activities: []string{"Beach volleyball", "Snorkeling", "Dinner at a local restaurant"}, TransportUsed: "bus"},
	},
}

func NewDocsPageData() (DocsPageData, error) {
	example, err := json.MarshalIndent(ExampleItinerary, "", "  ")
	if err != nil {
		return DocsPageData{}, fmt.Errorf("encode example itinerary: %w", err)
	}
	return DocsPageData{Parameters: ItineraryParameters, Example: string(example)}, nil
}
