package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/printer"
	"cashier-terminal/internal/tickets"

	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotFound   = errors.New("game_not_found")
	ErrTicketNotFound = errors.New("ticket_not_in_recall")
)

type Backend interface {
	CashierSummary(ctx context.Context, fromDate, toDate string) (gameapi.Summary, error)
	SearchGames(ctx context.Context, params gameapi.GameSearchParams) (gameapi.GameSearchResult, error)
	RecallBets(ctx context.Context) ([]gameapi.RecallBet, error)
	PrintRecall(ctx context.Context, ticketNumber string) error
}

type Cashier struct {
	ID       string
	Username string
	FullName string
}

func (c Cashier) FirstName() string {
	if f := strings.Fields(c.FullName); len(f) > 0 {
		return f[0]
	}
	return c.Username
}

type Service struct {
	backend Backend
	printer printer.Submitter
	cashier func() Cashier
	now     func() time.Time
}

func NewService(backend Backend, p printer.Submitter, cashier func() Cashier) *Service {
	return &Service{backend: backend, printer: p, cashier: cashier, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, from, to string) (gameapi.Summary, error) {
	from, to, err := ResolveRange(from, to, s.now())
	if err != nil {
		return gameapi.Summary{}, err
	}
	return s.backend.CashierSummary(ctx, from, to)
}

// Games searches completed games for this cashier. Dates are optional here.
func (s *Service) Games(ctx context.Context, params gameapi.GameSearchParams) (gameapi.GameSearchResult, error) {
	if params.StartDate != "" || params.EndDate != "" {
		from, to, err := ResolveRange(params.StartDate, params.EndDate, s.now())
		if err != nil {
			return gameapi.GameSearchResult{}, err
		}
		params.StartDate, params.EndDate = from, to
	}
	params.CashierID = s.cashier().ID
	return s.backend.SearchGames(ctx, params)
}

func (s *Service) Recall(ctx context.Context, q RecallQuery) (RecallList, error) {
	bets, err := s.backend.RecallBets(ctx)
	if err != nil {
		return RecallList{}, err
	}
	bets = filterRecall(bets, q, time.Local)
	sortRecall(bets, q.SortBy, q.Order)
	return RecallList{Bets: bets, Stats: recallStats(bets)}, nil
}

func (s *Service) PrintSummary(ctx context.Context, from, to string) (string, error) {
	sum, err := s.Summary(ctx, from, to)
	if err != nil {
		return "", err
	}
	c := s.cashier()
	job := printer.SummaryJob(s.now(), printer.SummaryData{
		CashierFirstName: c.FirstName(),
		CashierUsername:  c.Username,
		FromDate:         sum.FromDate,
		ToDate:           sum.ToDate,
		Tickets:          sum.Tickets,
		Bets:             sum.Bets,
		Redeemed:         sum.Redeemed,
		EndBalance:       sum.NetBalance,
	})
	return s.printer.Submit(ctx, job)
}

// PrintResults prints the called numbers of one finished game.
func (s *Service) PrintResults(ctx context.Context, gameID string) (string, error) {
	res, err := s.Games(ctx, gameapi.GameSearchParams{GameID: gameID})
	if err != nil {
		return "", err
	}
	var found *gameapi.GameResult
	for i := range res.Results {
		if res.Results[i].GameID.String() == gameID {
			found = &res.Results[i]
			break
		}
	}
	if found == nil {
		return "", ErrGameNotFound
	}
	c := s.cashier()
	job := printer.ResultsJob(s.now(), printer.ResultsData{
		CashierFirstName: c.FirstName(),
		CashierUsername:  c.Username,
		GameID:           gameID,
		ResultNumbers:    found.FinalCalledNumbers,
	})
	return s.printer.Submit(ctx, job)
}

// Reprint records the reprint with the server, then prints the ticket again.
func (s *Service) Reprint(ctx context.Context, ticketNumber string) (string, error) {
	if !tickets.ValidTicketNumber(ticketNumber) {
		return "", tickets.ErrInvalidTicketNumber
	}
	bets, err := s.backend.RecallBets(ctx)
	if err != nil {
		return "", err
	}
	var bet *gameapi.RecallBet
	for i := range bets {
		if bets[i].TicketNumber.String() == ticketNumber {
			bet = &bets[i]
			break
		}
	}
	if bet == nil {
		return "", ErrTicketNotFound
	}
	if err := s.backend.PrintRecall(ctx, ticketNumber); err != nil {
		return "", err
	}
	job, err := printer.TicketJob(printer.TicketData{
		TicketNumber:  ticketNumber,
		CartelaNumber: bet.CartelaNumber,
		GameID:        bet.GameID.String(),
		Amount:        bet.Amount,
		CreatedAt:     bet.CreatedAt.Time,
		CashierName:   s.cashier().Username,
	})
	if err != nil {
		return "", err
	}
	id, err := s.printer.Submit(ctx, job)
	if err != nil {
		return "", err
	}
	log.Info().Str("ticket", ticketNumber).Str("job_id", id).Msg("ticket_reprint_queued")
	return id, nil
}
