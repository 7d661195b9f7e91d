package dto

import (
	"time"

	"github.com/bibbank/cardrisk/internal/domain/service"
)

// GetStatisticsRequest is the input DTO for GetStatistics. Window is one of
// "24h", "7d" (default) or "30d".
type GetStatisticsRequest struct {
	Window string `json:"window"`
}

// SummaryResponse mirrors service.Summary.
type SummaryResponse struct {
	FlaggedPercentage string `json:"flagged_percentage"`
	Total             int    `json:"total"`
	Flagged           int    `json:"flagged"`
	ConfirmedFraud    int    `json:"confirmed_fraud"`
}

// CategoryResponse is one category row.
type CategoryResponse struct {
	Category     string `json:"category"`
	TotalAmount  string `json:"total_amount"`
	Count        int    `json:"count"`
	FlaggedCount int    `json:"flagged_count"`
}

// DailyResponse is one day of the time series.
type DailyResponse struct {
	Date         string `json:"date"`
	TotalAmount  string `json:"total_amount"`
	Count        int    `json:"count"`
	FlaggedCount int    `json:"flagged_count"`
}

// StatisticsResponse is the output DTO for GetStatistics.
type StatisticsResponse struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	Window         string             `json:"window"`
	Categories     []CategoryResponse `json:"categories"`
	Daily          []DailyResponse    `json:"daily"`
	Summary        SummaryResponse    `json:"summary"`
	SkippedRecords int                `json:"skipped_records"`
}

// FromStatistics maps aggregator output to the response DTO.
func FromStatistics(s service.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		Window:      s.Window.String(),
		GeneratedAt: s.GeneratedAt,
		Summary: SummaryResponse{
			Total:             s.Summary.Total,
			Flagged:           s.Summary.Flagged,
			ConfirmedFraud:    s.Summary.ConfirmedFraud,
			FlaggedPercentage: s.Summary.FlaggedPercentage.StringFixed(2),
		},
		Categories:     make([]CategoryResponse, 0, len(s.Categories)),
		Daily:          make([]DailyResponse, 0, len(s.Daily)),
		SkippedRecords: s.Skipped,
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, CategoryResponse{
			Category:     c.Category,
			Count:        c.Count,
			TotalAmount:  c.TotalAmount.StringFixed(2),
			FlaggedCount: c.FlaggedCount,
		})
	}
	for _, d := range s.Daily {
		resp.Daily = append(resp.Daily, DailyResponse{
			Date:         d.Date.Format(time.DateOnly),
			Count:        d.Count,
			TotalAmount:  d.SumAmount.StringFixed(2),
			FlaggedCount: d.FlaggedCount,
		})
	}
	return resp
}
