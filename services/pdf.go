package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"omtours/models"
	"omtours/views"
)

// GenerateItineraryPDF renders a printable copy of an itinerary. Amounts use ISO codes because
// the core PDF fonts have no rupee sign.
func GenerateItineraryPDF(resp *models.ItineraryResponse, f *views.Formatter) ([]byte, error) {
	v := views.NewItineraryView(resp, f)
	code := v.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	// ── Footer ────────────────────────────────────────────────
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Generated by Om Tours on %s", time.Now().Format("02 Jan 2006")),
			"", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(194, 65, 12)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Om Tours", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Your Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(194, 65, 12)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	// ── Trip Summary ──────────────────────────────────────────
	sectionHeader("Trip Summary")
	row("From", v.From)
	row("To", v.To)
	row("Travel Dates", v.StartDate+" to "+v.EndDate)
	row("Total Budget", f.CurrencyCode(resp.TripSummary.TotalBudget, code))
	pdf.Ln(4)

	// ── Transport Options ─────────────────────────────────────
	sectionHeader("Transport Options")
	row("Selected", capitalize(v.Selected))
	for _, o := range resp.Transport.Options {
		label := capitalize(o.Mode)
		if o.Mode == resp.Transport.Selected {
			label += " (selected)"
		}
		row(label, fmt.Sprintf("%s, %s", f.CurrencyCode(o.Cost, code), o.Duration))
	}
	pdf.Ln(4)

	// ── Budget Breakdown ──────────────────────────────────────
	sectionHeader("Budget Breakdown")
	for i, item := range resp.Budget {
		row(capitalize(item.Category), fmt.Sprintf("%s (%.0f%%)", f.CurrencyCode(item.Amount, code), v.Budget[i].Width))
	}
	pdf.Ln(4)

	// ── Day-by-Day Itinerary ──────────────────────────────────
	sectionHeader("Day-by-Day Itinerary")
	for _, d := range v.Days {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(154, 52, 18)
		pdf.CellFormat(170, 7, tr(fmt.Sprintf("Day %d - %s", d.Day, d.Date)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(170, 5, tr("Transport: "+capitalize(d.TransportUsed)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		for _, activity := range d.Activities {
			pdf.MultiCell(170, 5, tr("- "+activity), "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
