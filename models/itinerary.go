package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ItineraryResponse is the document returned by the itinerary service.
type ItineraryResponse struct {
	TripSummary TripSummary     `json:"trip_summary"`
	Transport   Transport       `json:"transport"`
	Budget      BudgetBreakdown `json:"budget"`
	Itinerary   []DayPlan       `json:"itinerary"`
}

type TripSummary struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	TravelDates []string `json:"travel_dates"`
	TotalBudget float64  `json:"total_budget"`
	Currency    string   `json:"currency"`
}

type Transport struct {
	Selected string            `json:"selected"`
	Options  []TransportOption `json:"options"`
}

type TransportOption struct {
	Mode     string  `json:"mode"`
	Cost     float64 `json:"cost"`
	Duration string  `json:"duration"`
}

type DayPlan struct {
	Day           int      `json:"day"`
	Date          string   `json:"date"`
	Activities    []string `json:"activities"`
	TransportUsed string   `json:"transport_used"`
}

type BudgetItem struct {
	Category string
	Amount   float64
}

// BudgetBreakdown is the category -> amount object of the response, kept in document order.
type BudgetBreakdown []BudgetItem

func (b *BudgetBreakdown) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("budget: expected object, got %v", tok)
	}

	items := BudgetBreakdown{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("budget: unexpected key %v", tok)
		}
		var amount float64
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("budget %q: %w", category, err)
		}
		items = append(items, BudgetItem{Category: category, Amount: amount})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*b = items
	return nil
}

func (b BudgetBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Category)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
