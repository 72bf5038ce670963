package printer

import (
	"context"
	"strconv"
	"time"

	"cashier-terminal/internal/ids"

	"github.com/skip2/go-qrcode"
)

const (
	TypeSummary = "summary"
	TypeResults = "results"
	TypeTicket  = "ticket"
)

// Submitter is what report and ticket code needs from the print pipeline.
type Submitter interface {
	Submit(ctx context.Context, job Job) (string, error)
}

// Job is the body posted to the print agent. Exactly one data field is set.
type Job struct {
	JobID       string       `json:"jobId"`
	Type        string       `json:"type"`
	SummaryData *SummaryData `json:"summaryData,omitempty"`
	ResultsData *ResultsData `json:"resultsData,omitempty"`
	TicketData  *TicketData  `json:"ticketData,omitempty"`

	attempt int
}

type SummaryData struct {
	CashierFirstName string    `json:"cashierFirstName"`
	CashierUsername  string    `json:"cashierUsername"`
	DateTime         time.Time `json:"dateTime"`
	FromDate         string    `json:"fromDate"`
	ToDate           string    `json:"toDate"`
	Tickets          int       `json:"tickets"`
	Bets             float64   `json:"bets"`
	Redeemed         float64   `json:"redeemed"`
	EndBalance       float64   `json:"endBalance"`
}

type ResultsData struct {
	CashierFirstName string    `json:"cashierFirstName"`
	CashierUsername  string    `json:"cashierUsername"`
	DateTime         time.Time `json:"dateTime"`
	GameID           string    `json:"gameId"`
	ResultNumbers    []int     `json:"resultNumbers"`
}

type TicketData struct {
	TicketNumber  string    `json:"ticketNumber"`
	CartelaNumber int       `json:"cartelaNumber"`
	GameID        string    `json:"gameId"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
	CashierName   string    `json:"cashierName,omitempty"`
	// QRCode is a PNG; encoding/json writes it as base64.
	QRCode []byte `json:"qrCode,omitempty"`
}

func millis(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

func SummaryJob(now time.Time, data SummaryData) Job {
	if data.DateTime.IsZero() {
		data.DateTime = now
	}
	return Job{JobID: "summary-" + millis(now), Type: TypeSummary, SummaryData: &data}
}

func ResultsJob(now time.Time, data ResultsData) Job {
	if data.DateTime.IsZero() {
		data.DateTime = now
	}
	if data.ResultNumbers == nil {
		data.ResultNumbers = []int{}
	}
	return Job{JobID: "results-" + millis(now), Type: TypeResults, ResultsData: &data}
}

// TicketJob attaches a QR code of the ticket number for the scanner at redemption.
func TicketJob(data TicketData) (Job, error) {
	png, err := qrcode.Encode(data.TicketNumber, qrcode.Medium, 256)
	if err != nil {
		return Job{}, err
	}
	data.QRCode = png
	return Job{JobID: "ticket-" + ids.New(), Type: TypeTicket, TicketData: &data}, nil
}
