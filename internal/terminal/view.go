package terminal

import (
	"slices"

	"cashier-terminal/internal/protocol"
)

// View is the JSON shape published to the UI.
type View struct {
	Version      uint64                  `json:"version"`
	CashierID    string                  `json:"cashier_id"`
	SessionID    string                  `json:"session_id"`
	Connected    bool                    `json:"connected"`
	Selected     []int                   `json:"selected_cartelas"`
	Pending      []int                   `json:"pending_cartelas"`
	SingleMode   bool                    `json:"single_mode"`
	PlacedBets   map[int]PlacedBetRecord `json:"placed_bets"`
	PlacedCount  int                     `json:"placed_count"`
	Game         GameView                `json:"game"`
	Bet          BetView                 `json:"bet"`
	Stake        int                     `json:"stake"`
	StakeOptions []int                   `json:"stake_options"`
	AutoDraw     AutoDrawView            `json:"auto_draw"`
	Notices      []Notice                `json:"notices"`
	Actions      Actions                 `json:"actions"`
}

type GameView struct {
	GameID           string `json:"game_id"`
	Status           Status `json:"status"`
	DisplayConnected bool   `json:"display_connected"`
	LastNumber       int    `json:"last_number,omitempty"`
	DrawnCount       int    `json:"drawn_count"`
}

type BetView struct {
	Phase       BetPhase `json:"phase"`
	RequestID   string   `json:"request_id,omitempty"`
	CartelaIDs  []int    `json:"cartela_ids,omitempty"`
	Stake       int      `json:"stake,omitempty"`
	LastOutcome string   `json:"last_outcome,omitempty"`
}

type AutoDrawView struct {
	Active    bool                       `json:"active"`
	Countdown int                        `json:"countdown"`
	Stats     protocol.AutoDrawStatsData `json:"stats"`
	Pool      protocol.PoolStatsData     `json:"pool"`
}

type Actions struct {
	CanStart    bool `json:"can_start"`
	CanEnd      bool `json:"can_end"`
	CanPlaceBet bool `json:"can_place_bet"`
	CanDraw     bool `json:"can_draw"`
}

func (s State) View() View {
	placed := map[int]PlacedBetRecord{}
	if s.Ledger.GameID == s.Game.GameID {
		placed = cloneMap(s.Ledger.Records)
	}
	pending := make([]int, 0, len(s.Selection.pending))
	for id := range s.Selection.pending {
		pending = append(pending, id)
	}
	slices.Sort(pending)
	selected := slices.Clone(s.Selection.IDs)
	if selected == nil {
		selected = []int{}
	}
	notices := slices.Clone(s.Notices)
	if notices == nil {
		notices = []Notice{}
	}
	return View{
		Version:     s.Version,
		CashierID:   s.Identity.CashierID,
		SessionID:   s.Identity.SessionID,
		Connected:   s.Connected,
		Selected:    selected,
		Pending:     pending,
		SingleMode:  s.Selection.SingleMode,
		PlacedBets:  placed,
		PlacedCount: s.PlacedCount(),
		Game: GameView{
			GameID:           s.Game.GameID,
			Status:           s.Game.Status,
			DisplayConnected: s.Game.DisplayConnected,
			LastNumber:       s.Game.LastNumber,
			DrawnCount:       s.Game.DrawnCount,
		},
		Bet: BetView{
			Phase:       s.Bet.Phase,
			RequestID:   s.Bet.RequestID,
			CartelaIDs:  slices.Clone(s.Bet.CartelaIDs),
			Stake:       s.Bet.Stake,
			LastOutcome: s.Bet.LastOutcome,
		},
		Stake:        s.Stake,
		StakeOptions: StakeOptions,
		AutoDraw: AutoDrawView{
			Active:    s.AutoDraw.Active,
			Countdown: s.AutoDraw.Countdown,
			Stats:     s.AutoDraw.Stats,
			Pool:      s.AutoDraw.Pool,
		},
		Notices: notices,
		Actions: Actions{
			CanStart:    s.CanStart(),
			CanEnd:      s.CanEnd(),
			CanPlaceBet: s.CanPlaceBet(),
			CanDraw:     s.CanDraw(),
		},
	}
}
