package views

import (
	"omtours/models"
)

type ItineraryView struct {
	From        string
	To          string
	StartDate   string
	EndDate     string
	TotalBudget string
	Currency    string
	Selected    string
	Options     []TransportOptionView
	Budget      []BudgetRowView
	Days        []DayView
}

type TransportOptionView struct {
	Mode     string
	Icon     string
	Cost     string
	Duration string
	Selected bool
}

type BudgetRowView struct {
	Category string
	Amount   string
	Width    float64
}

type DayView struct {
	Day           int
	Date          string
	TransportUsed string
	TransportIcon string
	Activities    []string
}

// NewItineraryView prepares a response for display. Values pass through unchanged apart from
// currency and date formatting; slices keep their order.
func NewItineraryView(resp *models.ItineraryResponse, f *Formatter) ItineraryView {
	summary := resp.TripSummary
	code := summary.Currency
	if code == "" {
		code = DefaultCurrency
	}

	v := ItineraryView{
		From:        summary.From,
		To:          summary.To,
		TotalBudget: f.Currency(summary.TotalBudget, code),
		Currency:    code,
		Selected:    resp.Transport.Selected,
		Options:     make([]TransportOptionView, 0, len(resp.Transport.Options)),
		Budget:      make([]BudgetRowView, 0, len(resp.Budget)),
		Days:        make([]DayView, 0, len(resp.Itinerary)),
	}
	if len(summary.TravelDates) > 0 {
		v.StartDate = FormatDate(summary.TravelDates[0])
	}
	if len(summary.TravelDates) > 1 {
		v.EndDate = FormatDate(summary.TravelDates[1])
	}

	for _, o := range resp.Transport.Options {
		v.Options = append(v.Options, TransportOptionView{
			Mode:     o.Mode,
			Icon:     TransportIcon(o.Mode),
			Cost:     f.Currency(o.Cost, code),
			Duration: o.Duration,
			Selected: o.Mode == resp.Transport.Selected,
		})
	}

	for _, item := range resp.Budget {
		v.Budget = append(v.Budget, BudgetRowView{
			Category: item.Category,
			Amount:   f.Currency(item.Amount, code),
			Width:    BudgetWidth(item.Amount, summary.TotalBudget),
		})
	}

	for _, d := range resp.Itinerary {
		activities := make([]string, len(d.Activities))
		copy(activities, d.Activities)
		v.Days = append(v.Days, DayView{
			Day:           d.Day,
			Date:          FormatDate(d.Date),
			TransportUsed: d.TransportUsed,
			TransportIcon: TransportIcon(d.TransportUsed),
			Activities:    activities,
		})
	}
	return v
}
