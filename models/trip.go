package models

import (
	"fmt"
	"strings"
)

// TravelMode is the way the traveller wants to reach the destination.
type TravelMode string

const (
	TravelModeCar    TravelMode = "car"
	TravelModeTrain  TravelMode = "train"
	TravelModeFlight TravelMode = "flight"
	TravelModeBus    TravelMode = "bus"
)

// TravelModes lists the modes offered on the trip form, in display order.
var TravelModes = []TravelMode{TravelModeCar, TravelModeTrain, TravelModeFlight, TravelModeBus}

func (m TravelMode) Valid() bool {
	for _, known := range TravelModes {
		if m == known {
			return true
		}
	}
	return false
}

// TripRequest is what the trip form collects. Every value is kept as entered; the itinerary
// service does its own parsing.
type TripRequest struct {
	Destination    string     `json:"destination" form:"destination"`
	Budget         string     `json:"budget" form:"budget"`
	StartDate      string     `json:"start_date" form:"start_date"`
	EndDate        string     `json:"end_date" form:"end_date"`
	TravelerCount  string     `json:"number_of_people" form:"number_of_people"`
	Purpose        string     `json:"purpose" form:"purpose"`
	TravelMode     TravelMode `json:"mode_of_transport" form:"mode_of_transport"`
	OriginLocation string     `json:"location" form:"location"`
}

// NewTripRequest returns an empty form with the default travel mode selected.
func NewTripRequest() TripRequest {
	return TripRequest{TravelMode: TravelModeCar}
}

// ValidationError names the first form field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks that every field is non-empty, in form order, and reports the first gap.
// Values are not trimmed.
// Date order and numeric ranges are left to the itinerary service.
func (r TripRequest) Validate() error {
	required := []struct {
		field   string
		value   string
		message string
	}{
		{"destination", r.Destination, "Destination is required"},
		{"budget", r.Budget, "Budget is required"},
		{"start_date", r.StartDate, "Start date is required"},
		{"end_date", r.EndDate, "End date is required"},
		{"number_of_people", r.TravelerCount, "Number of people is required"},
		{"purpose", r.Purpose, "Purpose is required"},
		{"mode_of_transport", string(r.TravelMode), "Mode of travel is required"},
		{"location", r.OriginLocation, "Your location is required"},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Field: f.field, Message: f.message}
		}
	}

	if !r.TravelMode.Valid() {
		names := make([]string, len(TravelModes))
		for i, m := range TravelModes {
			names[i] = string(m)
		}
		return &ValidationError{
			Field:   "mode_of_transport",
			Message: fmt.Sprintf("Mode of travel must be one of %s", strings.Join(names, ", ")),
		}
	}
	return nil
}
