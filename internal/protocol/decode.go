package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownEvent = errors.New("unknown_event")

// Event is the closed set of inbound messages. Only this package can add variants.
type Event interface {
	Name() string
	isEvent()
}

type meta struct{ name string }

func (m meta) Name() string { return m.name }
func (meta) isEvent() {}

// SelectionConfirmed is the server's authoritative selection after one of our intents.
type SelectionConfirmed struct {
	meta
	CartelaID int
	Selected  []int
	Deselect  bool
	At        time.Time
}

type SelectionRejected struct {
	meta
	CartelaID int
	Message   string
	Deselect  bool
}

// SelectionBroadcast reports a single cartela toggled by any actor.
type SelectionBroadcast struct {
	meta
	CartelaID int
	Selected  bool
	SessionID string
	At        time.Time
}

type BetConfirmed struct {
	meta
	CartelaIDs    []int
	TicketNumbers []string
	Stake         int
	TotalStake    float64
	GameID        string
	RequestID     string
}

type BetRejected struct {
	meta
	Message string
}

type PrintStatus struct {
	meta
	Successful int
	Failed     int
	Message    string
}

// PlacementBroadcast is a placement announced to every terminal of the session.
type PlacementBroadcast struct {
	meta
	CartelaIDs    []int
	TicketNumbers []string
	Stake         int
	GameID        string
	SessionID     string
}

// GameSnapshot is a full or partial game record. Empty fields were not sent.
type GameSnapshot struct {
	meta
	GameID           string
	Status           string
	SessionID        string
	At               time.Time
	DisplayConnected *bool
}

type LifecycleKind string

const (
	LifecycleReset          LifecycleKind = "comprehensive_reset"
	LifecycleEnded          LifecycleKind = "ended"
	LifecycleNewReady       LifecycleKind = "new_ready"
	LifecycleIDUpdated      LifecycleKind = "id_updated"
	LifecycleRefreshRequire LifecycleKind = "refresh_required"
)

// GameLifecycle invalidates the whole game context and names the game that follows.
type GameLifecycle struct {
	meta
	Kind      LifecycleKind
	GameID    string
	SessionID string
	Message   string
}

type GameStartedEvent struct {
	meta
	GameID    string
	SessionID string
}

type GameStartFailed struct {
	meta
	Message   string
	SessionID string
}

type NumberDrawnEvent struct {
	meta
	Number    int
	SessionID string
}

type DrawRejectedEvent struct {
	meta
	Reason string
}

type TicketCancelledEvent struct {
	meta
	TicketNumber string
	CartelaID    int
	GameID       string
	SessionID    string
	At           time.Time
}

type DisplayStatus struct {
	meta
	Connected bool
	SessionID string
}

type AutoDrawAckKind string

const (
	AckInitialized     AutoDrawAckKind = "initialized"
	AckStarted         AutoDrawAckKind = "started"
	AckStopped         AutoDrawAckKind = "stopped"
	AckPoolShuffled    AutoDrawAckKind = "pool_shuffled"
	AckShuffleComplete AutoDrawAckKind = "shuffle_completed"
)

type AutoDrawAck struct {
	meta
	Kind      AutoDrawAckKind
	Success   bool
	CashierID string
	Message   string
	Config    json.RawMessage
}

type AutoDrawTelemetry struct {
	meta
	CashierID string
	Stats     AutoDrawStatsData
	Pool      PoolStatsData
}

type CatalogChanged struct {
	meta
	CashierID string
	CartelaID string
	Cartela   json.RawMessage
}

// PlacedBetsChanged says the server's placed-bet list moved without naming the change.
type PlacedBetsChanged struct {
	meta
	GameID    string
	SessionID string
}

// RefreshRequested asks for a full re-fetch without changing the game id.
type RefreshRequested struct {
	meta
	SessionID string
}

type RoomJoinedEvent struct{ meta }

type Unauthorized struct{ meta }

// Decode maps one wire event to its variant. It is the only place that looks at event names.
func Decode(name string, raw json.RawMessage) (Event, error) {
	m := meta{name: name}
	switch name {
	case CartelaSelectionSuccess, CartelaDeselectionSuccess:
		var w selectionWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		selected := w.SelectedCartelas
		if selected == nil {
			selected = []int{}
		}
		return SelectionConfirmed{meta: m, CartelaID: w.CartelaID, Selected: selected, Deselect: name == CartelaDeselectionSuccess, At: w.Timestamp.Time}, nil
	case CartelaSelectionError, CartelaDeselectionError:
		var w selectionWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return SelectionRejected{meta: m, CartelaID: w.CartelaID, Message: w.Message, Deselect: name == CartelaDeselectionError}, nil
	case CartelaSelected, CartelaDeselected:
		var w selectionWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return SelectionBroadcast{meta: m, CartelaID: w.CartelaID, Selected: name == CartelaSelected, SessionID: w.SessionID.String(), At: w.Timestamp.Time}, nil

	case BetPlacedSuccess:
		var w betWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return BetConfirmed{meta: m, CartelaIDs: w.CartelaIDs, TicketNumbers: flexStrings(w.TicketNumbers), Stake: int(w.Stake), TotalStake: w.TotalStake, GameID: w.GameID.String(), RequestID: w.RequestID}, nil
	case BetError:
		var w betWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return BetRejected{meta: m, Message: w.Message}, nil
	case TicketPrintStatus:
		var w printWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return PrintStatus{meta: m, Successful: w.SuccessfulPrints, Failed: w.FailedPrints, Message: w.Message}, nil
	case BetPlaced, BetsPlaced:
		var w betWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return PlacementBroadcast{meta: m, CartelaIDs: w.CartelaIDs, TicketNumbers: flexStrings(w.TicketNumbers), Stake: int(w.Stake), GameID: w.GameID.String(), SessionID: w.SessionID.String()}, nil
	case PlacedBetsUpdated:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return PlacedBetsChanged{meta: m, GameID: firstNonEmpty(w.GameID, w.ID), SessionID: w.SessionID.String()}, nil

	case GameDataUpdated, GameDataSync, GameSessionInfo, GameStatusSync, GameStatusUpdated:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		ev := GameSnapshot{meta: m, GameID: firstNonEmpty(w.GameID, w.ID), Status: w.Status, SessionID: w.SessionID.String(), At: w.Timestamp.Time}
		if w.ConnectionStatus != nil {
			ev.DisplayConnected = w.ConnectionStatus.DisplayConnected
		}
		return ev, nil
	case GameComprehensiveReset, GameEnded, GameNewReady, GameIDUpdated, CashierRefreshRequired:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return GameLifecycle{
			meta:      m,
			Kind:      lifecycleKinds[name],
			GameID:    firstNonEmpty(w.NewGameID, w.NextGameID, w.GameID, w.ID),
			SessionID: w.SessionID.String(),
			Message:   firstNonEmpty(FlexString(w.Message), FlexString(w.Reason)),
		}, nil
	case GameStart, GameStarted:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return GameStartedEvent{meta: m, GameID: firstNonEmpty(w.GameID, w.ID), SessionID: w.SessionID.String()}, nil
	case GameStartError:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return GameStartFailed{meta: m, Message: w.Message, SessionID: w.SessionID.String()}, nil
	case NumberDrawn:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return NumberDrawnEvent{meta: m, Number: w.Number, SessionID: w.SessionID.String()}, nil
	case DrawRejected:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return DrawRejectedEvent{meta: m, Reason: firstNonEmpty(FlexString(w.Reason), FlexString(w.Message))}, nil

	case TicketCancelled:
		var w ticketWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return TicketCancelledEvent{meta: m, TicketNumber: w.TicketNumber.String(), CartelaID: w.CartelaID, GameID: w.GameID.String(), SessionID: w.SessionID.String(), At: w.Timestamp.Time}, nil

	case DisplayConnectionStatus, DisplayStatusResponse, ConnectionStatusUpdate:
		var w displayWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		connected := false
		switch {
		case w.Connected != nil:
			connected = *w.Connected
		case w.DisplayConnected != nil:
			connected = *w.DisplayConnected
		}
		return DisplayStatus{meta: m, Connected: connected, SessionID: w.SessionID.String()}, nil
	case DisplayConnected, DisplayJoinedRoom, DisplayWaitingCashier, DisplayWaitingGame, DisplayError:
		var w displayWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		up := name == DisplayConnected || name == DisplayJoinedRoom
		return DisplayStatus{meta: m, Connected: up, SessionID: w.SessionID.String()}, nil

	case AutoDrawInitialized, AutoDrawStarted, AutoDrawStopped, NumberPoolShuffled, ShuffleCompleted:
		var w autoDrawWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return AutoDrawAck{meta: m, Kind: ackKinds[name], Success: w.Success, CashierID: w.CashierID.String(), Message: w.Message, Config: w.Config}, nil
	case AutoDrawStats:
		var w autoDrawWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return AutoDrawTelemetry{meta: m, CashierID: w.CashierID.String(), Stats: w.AutoDrawStats, Pool: w.PoolStats}, nil

	case CartelaCreated, CartelaUpdated, CartelaDeleted, CartelaStatusChanged:
		var w catalogWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return CatalogChanged{meta: m, CashierID: w.CashierID.String(), CartelaID: w.CartelaID.String(), Cartela: w.Cartela}, nil

	case RefreshPages, RefreshGameData, DisplayRefreshReq, GameRefreshRequired, GameReset:
		var w gameWire
		if err := unmarshal(name, raw, &w); err != nil {
			return nil, err
		}
		return RefreshRequested{meta: m, SessionID: w.SessionID.String()}, nil
	case RoomJoined:
		return RoomJoinedEvent{meta: m}, nil
	case CashierUnauthorized:
		return Unauthorized{meta: m}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
}

var lifecycleKinds = map[string]LifecycleKind{
	GameComprehensiveReset: LifecycleReset,
	GameEnded:              LifecycleEnded,
	GameNewReady:           LifecycleNewReady,
	GameIDUpdated:          LifecycleIDUpdated,
	CashierRefreshRequired: LifecycleRefreshRequire,
}

var ackKinds = map[string]AutoDrawAckKind{
	AutoDrawInitialized: AckInitialized,
	AutoDrawStarted:     AckStarted,
	AutoDrawStopped:     AckStopped,
	NumberPoolShuffled:  AckPoolShuffled,
	ShuffleCompleted:    AckShuffleComplete,
}

func unmarshal(name string, raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func flexStrings(in []FlexString) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.String()
	}
	return out
}

func firstNonEmpty(vals ...FlexString) string {
	for _, v := range vals {
		if v != "" {
			return v.String()
		}
	}
	return ""
}
