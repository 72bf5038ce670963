package gameapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	err := c.do(ctx, "login", http.MethodPost, "/api/cashier-auth/login", body, &out)
	return out, err
}

func (c *Client) Verify(ctx context.Context) (User, error) {
	// verify answers either {user: {...}} or the bare user record
	var out struct {
		Wrapped *User `json:"user"`
	}
	var raw json.RawMessage
	if err := c.do(ctx, "verify", http.MethodGet, "/api/cashier-auth/verify", nil, &raw); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return User{}, err
	}
	if out.Wrapped != nil {
		return *out.Wrapped, nil
	}
	var u User
	err := json.Unmarshal(raw, &u)
	return u, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/cashier-auth/logout", nil, nil)
}

func (c *Client) CurrentGame(ctx context.Context) (CurrentGame, error) {
	var out CurrentGame
	err := c.do(ctx, "current_game", http.MethodGet, "/api/cashier/game/current", nil, &out)
	return out, err
}

func (c *Client) PlacedBetCartelas(ctx context.Context) ([]int, error) {
	var out []int
	if err := c.do(ctx, "placed_bets", http.MethodGet, "/api/cashier/game/placed-bet-cartelas", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func (c *Client) EndGame(ctx context.Context) (EndGameResult, error) {
	var out EndGameResult
	err := c.do(ctx, "end_game", http.MethodPost, "/api/cashier/game/end", nil, &out)
	return out, err
}

func (c *Client) SearchTicket(ctx context.Context, ticketNumber string) (TicketInfo, error) {
	var out TicketInfo
	err := c.do(ctx, "ticket_search", http.MethodGet, "/api/bets/search/"+url.PathEscape(ticketNumber), nil, &out)
	return out, err
}

func (c *Client) CancelTicket(ctx context.Context, ticketNumber, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, "ticket_cancel", http.MethodPost, "/api/bets/cancel/"+url.PathEscape(ticketNumber), body, nil)
}

func (c *Client) RedeemTicket(ctx context.Context, ticketNumber string) (RedeemResult, error) {
	var out RedeemResult
	err := c.do(ctx, "ticket_redeem", http.MethodPost, "/api/bets/redeem/"+url.PathEscape(ticketNumber), nil, &out)
	return out, err
}

func (c *Client) RecallBets(ctx context.Context) ([]RecallBet, error) {
	var out []RecallBet
	err := c.do(ctx, "recall_bets", http.MethodGet, "/api/bets/recall", nil, &out)
	return out, err
}

func (c *Client) PrintRecall(ctx context.Context, ticketNumber string) error {
	return c.do(ctx, "print_recall", http.MethodPost, "/api/bets/print-recall/"+url.PathEscape(ticketNumber), nil, nil)
}

func (c *Client) CashierSummary(ctx context.Context, fromDate, toDate string) (Summary, error) {
	q := url.Values{}
	q.Set("fromDate", fromDate)
	q.Set("toDate", toDate)
	var out Summary
	err := c.do(ctx, "summary", http.MethodGet, "/api/cashier-dashboard/summary?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) SearchGames(ctx context.Context, params GameSearchParams) (GameSearchResult, error) {
	var out GameSearchResult
	err := c.do(ctx, "game_search", http.MethodPost, "/api/game-results/search", params, &out)
	return out, err
}

func (c *Client) Cartelas(ctx context.Context, cashierID string) ([]Cartela, error) {
	var out []Cartela
	err := c.do(ctx, "cartelas_list", http.MethodGet, "/api/cartelas?cashierId="+url.QueryEscape(cashierID), nil, &out)
	return out, err
}

func (c *Client) CreateCartela(ctx context.Context, in CartelaInput) (Cartela, error) {
	var out Cartela
	err := c.do(ctx, "cartela_create", http.MethodPost, "/api/cartelas", in, &out)
	return out, err
}

func (c *Client) UpdateCartela(ctx context.Context, id string, in CartelaInput) (Cartela, error) {
	var out Cartela
	err := c.do(ctx, "cartela_update", http.MethodPut, "/api/cartelas/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteCartela(ctx context.Context, id string) error {
	return c.do(ctx, "cartela_delete", http.MethodDelete, "/api/cartelas/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ToggleCartela(ctx context.Context, id string, active bool) (Cartela, error) {
	var out Cartela
	body := map[string]bool{"isActive": active}
	err := c.do(ctx, "cartela_toggle", http.MethodPatch, "/api/cartelas/"+url.PathEscape(id)+"/toggle-status", body, &out)
	return out, err
}

func (c *Client) WinPatterns(ctx context.Context, cashierID string) ([]WinPattern, error) {
	var out []WinPattern
	err := c.do(ctx, "patterns_list", http.MethodGet, "/api/win-patterns?cashierId="+url.QueryEscape(cashierID), nil, &out)
	return out, err
}

func (c *Client) CreateWinPattern(ctx context.Context, in WinPatternInput) (WinPattern, error) {
	var out WinPattern
	err := c.do(ctx, "pattern_create", http.MethodPost, "/api/win-patterns", in, &out)
	return out, err
}

func (c *Client) UpdateWinPattern(ctx context.Context, id string, in WinPatternInput) (WinPattern, error) {
	var out WinPattern
	err := c.do(ctx, "pattern_update", http.MethodPut, "/api/win-patterns/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteWinPattern(ctx context.Context, id string) error {
	return c.do(ctx, "pattern_delete", http.MethodDelete, "/api/win-patterns/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ToggleWinPattern(ctx context.Context, id string, active bool) (WinPattern, error) {
	var out WinPattern
	body := map[string]bool{"isActive": active}
	err := c.do(ctx, "pattern_toggle", http.MethodPatch, "/api/win-patterns/"+url.PathEscape(id)+"/status", body, &out)
	return out, err
}

func (c *Client) VerifyCartela(ctx context.Context, in VerifyRequest) (Verification, error) {
	var out Verification
	err := c.do(ctx, "verify_cartela", http.MethodPost, "/api/verification/verify-cartela", in, &out)
	return out, err
}

func (c *Client) LockVerification(ctx context.Context, in VerifyRequest) (Verification, error) {
	var out Verification
	err := c.do(ctx, "lock_verification", http.MethodPost, "/api/verification/lock-verification", in, &out)
	return out, err
}
