package reports

import (
	"sort"
	"strings"
	"time"

	"cashier-terminal/internal/gameapi"
)

// RecallQuery narrows and orders the recall list. Zero values keep every bet,
// newest first.
type RecallQuery struct {
	Status string `json:"status,omitempty"`
	Date   string `json:"date,omitempty"`
	SortBy string `json:"sort_by,omitempty"`
	Order  string `json:"order,omitempty"`
}

type RecallStats struct {
	TotalTickets           int     `json:"total_tickets"`
	TotalAmount            float64 `json:"total_amount"`
	AverageAmount          float64 `json:"average_amount"`
	FormattedTotalAmount   string  `json:"formatted_total_amount"`
	FormattedAverageAmount string  `json:"formatted_average_amount"`
}

type RecallList struct {
	Bets  []gameapi.RecallBet `json:"bets"`
	Stats RecallStats         `json:"stats"`
}

func filterRecall(bets []gameapi.RecallBet, q RecallQuery, loc *time.Location) []gameapi.RecallBet {
	out := make([]gameapi.RecallBet, 0, len(bets))
	for _, b := range bets {
		if q.Status != "" && !strings.EqualFold(b.Status, q.Status) {
			continue
		}
		if q.Date != "" && b.CreatedAt.In(loc).Format(DateLayout) != q.Date {
			continue
		}
		out = append(out, b)
	}
	return out
}

func sortRecall(bets []gameapi.RecallBet, sortBy, order string) {
	desc := order != "asc"
	less := func(i, j int) bool {
		a, b := bets[i], bets[j]
		switch sortBy {
		case "ticketNumber":
			return a.TicketNumber < b.TicketNumber
		case "amount":
			return a.Amount < b.Amount
		default:
			return a.CreatedAt.Before(b.CreatedAt.Time)
		}
	}
	sort.SliceStable(bets, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

func recallStats(bets []gameapi.RecallBet) RecallStats {
	var total float64
	for _, b := range bets {
		total += b.Amount
	}
	avg := 0.0
	if len(bets) > 0 {
		avg = total / float64(len(bets))
	}
	return RecallStats{
		TotalTickets:           len(bets),
		TotalAmount:            total,
		AverageAmount:          avg,
		FormattedTotalAmount:   FormatCurrency(total),
		FormattedAverageAmount: FormatCurrency(avg),
	}
}
