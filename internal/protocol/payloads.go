package protocol

import "encoding/json"

// Envelope is one websocket text frame in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SelectIntent struct {
	SessionID string `json:"sessionId"`
	CartelaID int    `json:"cartelaId"`
}

type PlaceBetIntent struct {
	SessionID  string `json:"sessionId"`
	CartelaIDs []int  `json:"cartelaIds"`
	Stake      int    `json:"stake"`
	CashierID  string `json:"cashierId"`
	RequestID  string `json:"requestId,omitempty"`
}

// SessionCommand is the payload of every command that only names its session.
type SessionCommand struct {
	SessionID string `json:"sessionId"`
	CashierID string `json:"cashierId,omitempty"`
}

type AutoDrawError struct {
	Timestamp FlexTime `json:"timestamp"`
	Error     string   `json:"error"`
}

type AutoDrawStatsData struct {
	IsActive         bool            `json:"isActive"`
	TotalDraws       int             `json:"totalDraws"`
	SuccessfulDraws  int             `json:"successfulDraws"`
	FailedDraws      int             `json:"failedDraws"`
	AverageDrawTime  float64         `json:"averageDrawTime"`
	LastDrawTime     FlexTime        `json:"lastDrawTime"`
	NextDrawTime     FlexTime        `json:"nextDrawTime"`
	PerformanceScore float64         `json:"performanceScore"`
	Errors           []AutoDrawError `json:"errors"`
}

type PoolStatsData struct {
	TotalNumbers     int      `json:"totalNumbers"`
	DrawnNumbers     int      `json:"drawnNumbers"`
	RemainingNumbers int      `json:"remainingNumbers"`
	DrawCount        int      `json:"drawCount"`
	LastDrawTime     FlexTime `json:"lastDrawTime"`
}

// wire shapes, decoded once and folded into the exported variants

type selectionWire struct {
	CartelaID        int        `json:"cartelaId"`
	SelectedCartelas []int      `json:"selectedCartelas"`
	Message          string     `json:"message"`
	SessionID        FlexString `json:"sessionId"`
	Timestamp        FlexTime   `json:"timestamp"`
}

type betWire struct {
	CartelaIDs    []int        `json:"cartelaIds"`
	TicketNumbers []FlexString `json:"ticketNumbers"`
	Stake         float64      `json:"stake"`
	TotalStake    float64      `json:"totalStake"`
	GameID        FlexString   `json:"gameId"`
	SessionID     FlexString   `json:"sessionId"`
	RequestID     string       `json:"requestId"`
	Message       string       `json:"message"`
}

type printWire struct {
	SuccessfulPrints int    `json:"successfulPrints"`
	FailedPrints     int    `json:"failedPrints"`
	Message          string `json:"message"`
}

type gameWire struct {
	ID               FlexString `json:"id"`
	GameID           FlexString `json:"gameId"`
	NewGameID        FlexString `json:"newGameId"`
	NextGameID       FlexString `json:"nextGameId"`
	Status           string     `json:"status"`
	SessionID        FlexString `json:"sessionId"`
	Timestamp        FlexTime   `json:"timestamp"`
	Message          string     `json:"message"`
	Reason           string     `json:"reason"`
	Number           int        `json:"number"`
	ConnectionStatus *struct {
		DisplayConnected *bool `json:"displayConnected"`
	} `json:"connectionStatus"`
}

type ticketWire struct {
	TicketNumber FlexString `json:"ticketNumber"`
	CartelaID    int        `json:"cartelaId"`
	GameID       FlexString `json:"gameId"`
	SessionID    FlexString `json:"sessionId"`
	Timestamp    FlexTime   `json:"timestamp"`
}

type displayWire struct {
	Connected        *bool      `json:"connected"`
	DisplayConnected *bool      `json:"displayConnected"`
	SessionID        FlexString `json:"sessionId"`
}

type autoDrawWire struct {
	Success       bool              `json:"success"`
	CashierID     FlexString        `json:"cashierId"`
	Message       string            `json:"message"`
	Config        json.RawMessage   `json:"config"`
	AutoDrawStats AutoDrawStatsData `json:"autoDrawStats"`
	PoolStats     PoolStatsData     `json:"poolStats"`
}

type catalogWire struct {
	CashierID FlexString      `json:"cashierId"`
	CartelaID FlexString      `json:"cartelaId"`
	Cartela   json.RawMessage `json:"cartela"`
}
