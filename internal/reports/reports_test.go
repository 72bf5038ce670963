package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/printer"
	"cashier-terminal/internal/protocol"
	"cashier-terminal/internal/tickets"
)

var today = time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)

func TestResolveRange(t *testing.T) {
	from, to, err := ResolveRange("", "", today)
	if err != nil || from != "2025-03-10" || to != "2025-03-10" {
		t.Fatalf("default range: %q %q %v", from, to, err)
	}
	cases := []struct {
		from, to, want string
	}{
		{"2025-13-01", "", "Invalid date format"},
		{"2025-03-11", "2025-03-10", "From date cannot be after to date"},
		{"2025-03-01", "2026-03-11", "Date range cannot exceed 1 year"},
	}
	for _, tc := range cases {
		_, _, err := ResolveRange(tc.from, tc.to, today)
		if !errors.Is(err, ErrInvalidRange) || err.Error() != tc.want {
			t.Fatalf("%s..%s: expected %q, got %v", tc.from, tc.to, tc.want, err)
		}
	}
}

type fakeBackend struct {
	summaryFrom, summaryTo string
	params                 gameapi.GameSearchParams
	games                  gameapi.GameSearchResult
	bets                   []gameapi.RecallBet
	printed                []string
}

func (f *fakeBackend) CashierSummary(_ context.Context, from, to string) (gameapi.Summary, error) {
	f.summaryFrom, f.summaryTo = from, to
	return gameapi.Summary{FromDate: from, ToDate: to, Tickets: 4, Bets: 40, Redeemed: 10, NetBalance: 30}, nil
}

func (f *fakeBackend) SearchGames(_ context.Context, p gameapi.GameSearchParams) (gameapi.GameSearchResult, error) {
	f.params = p
	return f.games, nil
}

func (f *fakeBackend) RecallBets(context.Context) ([]gameapi.RecallBet, error) {
	return append([]gameapi.RecallBet(nil), f.bets...), nil
}

func (f *fakeBackend) PrintRecall(_ context.Context, ticket string) error {
	f.printed = append(f.printed, ticket)
	return nil
}

type fakePrinter struct{ jobs []printer.Job }

func (p *fakePrinter) Submit(_ context.Context, job printer.Job) (string, error) {
	p.jobs = append(p.jobs, job)
	return job.JobID, nil
}

func newService(b *fakeBackend, p *fakePrinter) *Service {
	s := NewService(b, p, func() Cashier { return Cashier{ID: "c1", Username: "cash1", FullName: "Abebe Kebede"} })
	s.now = func() time.Time { return today }
	return s
}

func bet(ticket string, amount float64, at time.Time, status string) gameapi.RecallBet {
	return gameapi.RecallBet{
		TicketNumber:  protocol.FlexString(ticket),
		CartelaNumber: 7,
		Amount:        amount,
		CreatedAt:     protocol.FlexTime{Time: at},
		GameID:        "G1",
		Status:        status,
	}
}

func TestSummaryDefaultsToToday(t *testing.T) {
	b := &fakeBackend{}
	if _, err := newService(b, &fakePrinter{}).Summary(context.Background(), "", ""); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if b.summaryFrom != "2025-03-10" || b.summaryTo != "2025-03-10" {
		t.Fatalf("unexpected range %s..%s", b.summaryFrom, b.summaryTo)
	}
}

func TestPrintSummaryUsesNetBalance(t *testing.T) {
	p := &fakePrinter{}
	if _, err := newService(&fakeBackend{}, p).PrintSummary(context.Background(), "2025-03-01", "2025-03-10"); err != nil {
		t.Fatalf("print summary: %v", err)
	}
	d := p.jobs[0].SummaryData
	if d.CashierFirstName != "Abebe" || d.EndBalance != 30 || d.FromDate != "2025-03-01" {
		t.Fatalf("unexpected summary data %#v", d)
	}
}

func TestGamesScopesToCashier(t *testing.T) {
	b := &fakeBackend{}
	if _, err := newService(b, &fakePrinter{}).Games(context.Background(), gameapi.GameSearchParams{GameID: "G9"}); err != nil {
		t.Fatalf("games: %v", err)
	}
	if b.params.CashierID != "c1" || b.params.StartDate != "" {
		t.Fatalf("unexpected params %#v", b.params)
	}
}

func TestPrintResults(t *testing.T) {
	b := &fakeBackend{games: gameapi.GameSearchResult{Results: []gameapi.GameResult{{GameID: "G1", FinalCalledNumbers: []int{3, 9}}}}}
	p := &fakePrinter{}
	svc := newService(b, p)
	if _, err := svc.PrintResults(context.Background(), "G2"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.PrintResults(context.Background(), "G1"); err != nil {
		t.Fatalf("print results: %v", err)
	}
	if got := p.jobs[0].ResultsData.ResultNumbers; len(got) != 2 || got[1] != 9 {
		t.Fatalf("unexpected numbers %v", got)
	}
}

func TestRecallFilterSortStats(t *testing.T) {
	b := &fakeBackend{bets: []gameapi.RecallBet{
		bet("1000000000001", 10, today.Add(-2*time.Hour), "Active"),
		bet("1000000000002", 30, today.Add(-time.Hour), "Completed"),
		bet("1000000000003", 20, today.Add(-26*time.Hour), "Active"),
	}}
	svc := newService(b, &fakePrinter{})

	all, err := svc.Recall(context.Background(), RecallQuery{})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if all.Bets[0].TicketNumber != "1000000000002" || all.Bets[2].TicketNumber != "1000000000003" {
		t.Fatalf("expected newest first, got %v", all.Bets)
	}
	if all.Stats.TotalTickets != 3 || all.Stats.TotalAmount != 60 || all.Stats.FormattedAverageAmount != "Br. 20.00" {
		t.Fatalf("unexpected stats %#v", all.Stats)
	}

	active, _ := svc.Recall(context.Background(), RecallQuery{Status: "active", SortBy: "amount", Order: "asc", Date: "2025-03-10"})
	if len(active.Bets) != 1 || active.Bets[0].Amount != 10 {
		t.Fatalf("unexpected filtered list %v", active.Bets)
	}

	empty, _ := svc.Recall(context.Background(), RecallQuery{Status: "Pending"})
	if empty.Stats.AverageAmount != 0 || empty.Bets == nil {
		t.Fatalf("empty list should have zero stats and a non-nil slice")
	}
}

func TestReprint(t *testing.T) {
	b := &fakeBackend{bets: []gameapi.RecallBet{bet("1000000000001", 10, today, "Active")}}
	p := &fakePrinter{}
	svc := newService(b, p)

	if _, err := svc.Reprint(context.Background(), "12"); !errors.Is(err, tickets.ErrInvalidTicketNumber) {
		t.Fatalf("expected invalid ticket, got %v", err)
	}
	if _, err := svc.Reprint(context.Background(), "1000000000009"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Reprint(context.Background(), "1000000000001"); err != nil {
		t.Fatalf("reprint: %v", err)
	}
	if len(b.printed) != 1 || len(p.jobs) != 1 || p.jobs[0].TicketData.CartelaNumber != 7 {
		t.Fatalf("unexpected reprint %v %#v", b.printed, p.jobs)
	}
}
