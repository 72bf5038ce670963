package terminal

import (
	"slices"
	"time"

	"cashier-terminal/internal/protocol"
)

const (
	MinCartelaID = 1
	MaxCartelaID = 210

	MinStake     = 5
	MaxStake     = 1000
	DefaultStake = 5

	// MinBetsToStart is a UX gate only; the server decides for itself.
	MinBetsToStart = 3
)

var StakeOptions = []int{5, 10, 20, 50, 100, 200, 500, 1000}

// Status is whatever the server last asserted; the terminal never computes transitions.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

type Identity struct {
	CashierID string
	SessionID string
}

type intent int

const (
	intentSelect intent = iota + 1
	intentDeselect
)

// Selection is the server-confirmed set in server order plus the intents still in flight.
type Selection struct {
	IDs        []int
	SingleMode bool

	pending     map[int]intent
	broadcastAt map[int]time.Time
	snapshotAt  time.Time
}

func (s Selection) Contains(id int) bool { return slices.Contains(s.IDs, id) }

func (s Selection) Pending(id int) bool {
	_, ok := s.pending[id]
	return ok
}

type PlacedBetRecord struct {
	PlacedAt     time.Time `json:"placed_at"`
	Status       string    `json:"status"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	Stake        int       `json:"stake,omitempty"`
}

// PlacedBets mirrors the server's placed-bet cartelas for one game.
type PlacedBets struct {
	GameID  string
	Records map[int]PlacedBetRecord
}

func (p PlacedBets) Has(id int) bool {
	_, ok := p.Records[id]
	return ok
}

type Game struct {
	GameID           string
	Status           Status
	DisplayConnected bool
	LastNumber       int
	DrawnCount       int

	syncedAt time.Time
	retired  map[string]struct{}
}

func (g Game) Retired(id string) bool {
	_, ok := g.retired[id]
	return ok
}

type AutoDraw struct {
	Active    bool
	Stats     protocol.AutoDrawStatsData
	Pool      protocol.PoolStatsData
	Countdown int
}

type BetPhase string

const (
	BetIdle      BetPhase = "idle"
	BetPending   BetPhase = "pending"
	BetConfirmed BetPhase = "confirmed"
)

// BetSlot is the one placement exchange that may be outstanding.
type BetSlot struct {
	Phase       BetPhase
	RequestID   string
	GameID      string
	CartelaIDs  []int
	Stake       int
	StartedAt   time.Time
	LastOutcome string
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	ID    string      `json:"id"`
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
	At    time.Time   `json:"at"`
}

// State is owned by the loop goroutine. Reducers take it by value and copy any
// collection before changing it, so published snapshots are never mutated.
type State struct {
	Identity  Identity
	Connected bool
	Selection Selection
	Ledger    PlacedBets
	Game      Game
	Bet       BetSlot
	Stake     int
	AutoDraw  AutoDraw
	Notices   []Notice
	Version   uint64
}

func NewState(singleMode bool, stake int) State {
	if !ValidStake(stake) {
		stake = DefaultStake
	}
	return State{
		Selection: Selection{SingleMode: singleMode},
		Ledger:    PlacedBets{Records: map[int]PlacedBetRecord{}},
		Game:      Game{Status: StatusWaiting},
		Bet:       BetSlot{Phase: BetIdle},
		Stake:     stake,
	}
}

func ValidStake(stake int) bool { return stake >= MinStake && stake <= MaxStake }

func ValidCartela(id int) bool { return id >= MinCartelaID && id <= MaxCartelaID }

// PlacedCount counts bets that belong to the tracked game.
func (s State) PlacedCount() int {
	if s.Ledger.GameID != s.Game.GameID {
		return 0
	}
	return len(s.Ledger.Records)
}

func (s State) CanStart() bool {
	return s.Game.Status == StatusWaiting &&
		s.Game.DisplayConnected &&
		s.Connected &&
		s.PlacedCount() >= MinBetsToStart
}

func (s State) CanEnd() bool {
	switch s.Game.Status {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

func (s State) CanPlaceBet() bool {
	return s.Connected &&
		s.Identity.CashierID != "" &&
		s.Identity.SessionID != "" &&
		s.Game.Status == StatusWaiting &&
		len(s.Selection.IDs) > 0 &&
		s.Bet.Phase != BetPending
}

func (s State) CanDraw() bool { return s.Connected && s.Game.Status == StatusActive }

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// normalize drops any selected or pending id that already has a bet in the tracked game.
func normalize(s State) State {
	if s.Ledger.GameID != s.Game.GameID || len(s.Ledger.Records) == 0 {
		return s
	}
	var kept []int
	dirty := false
	for _, id := range s.Selection.IDs {
		if s.Ledger.Has(id) {
			dirty = true
			continue
		}
		kept = append(kept, id)
	}
	if dirty {
		if kept == nil {
			kept = []int{}
		}
		s.Selection.IDs = kept
	}
	for id := range s.Selection.pending {
		if s.Ledger.Has(id) {
			s.Selection.pending = cloneMap(s.Selection.pending)
			for pid := range s.Selection.pending {
				if s.Ledger.Has(pid) {
					delete(s.Selection.pending, pid)
				}
			}
			break
		}
	}
	return s
}
