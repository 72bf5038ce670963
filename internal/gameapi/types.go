package gameapi

import (
	"encoding/json"

	"cashier-terminal/internal/protocol"
)

type User struct {
	ID         protocol.FlexString `json:"id"`
	Username   string              `json:"username"`
	FullName   string              `json:"fullName"`
	Role       string              `json:"role"`
	SessionID  string              `json:"sessionId"`
	DisplayURL string              `json:"displayUrl"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CurrentGame struct {
	ID               protocol.FlexString `json:"id"`
	GameID           protocol.FlexString `json:"gameId"`
	Status           string              `json:"status"`
	GameStatus       string              `json:"gameStatus"`
	CalledNumbers    []int               `json:"calledNumbers"`
	DrawnNumbers     []int               `json:"drawnNumbers"`
	ConnectionStatus struct {
		DisplayConnected bool `json:"displayConnected"`
	} `json:"connectionStatus"`
}

// Identifier prefers gameId over the record id; servers send either.
func (g CurrentGame) Identifier() string {
	if g.GameID != "" {
		return g.GameID.String()
	}
	return g.ID.String()
}

func (g CurrentGame) CurrentStatus() string {
	if g.Status != "" {
		return g.Status
	}
	return g.GameStatus
}

type EndGameResult struct {
	GameID     protocol.FlexString `json:"gameId"`
	NextGameID protocol.FlexString `json:"nextGameId"`
	Status     string              `json:"status"`
	Message    string              `json:"message"`
}

type TicketInfo struct {
	BetID            protocol.FlexString `json:"betId"`
	TicketNumber     protocol.FlexString `json:"ticketNumber"`
	Stake            float64             `json:"stake"`
	BetStatus        string              `json:"betStatus"`
	PlacedAt         protocol.FlexTime   `json:"placedAt"`
	CartelaID        int                 `json:"cartelaId"`
	GameID           protocol.FlexString `json:"gameId"`
	GameStatus       string              `json:"gameStatus"`
	CanCancel        bool                `json:"canCancel"`
	CanRedeem        bool                `json:"canRedeem"`
	RedemptionStatus string              `json:"redemptionStatus"`
	PrizeAmount      float64             `json:"prizeAmount"`
	WinningNumbers   []int               `json:"winningNumbers"`
	CartelaPattern   json.RawMessage     `json:"cartelaPattern,omitempty"`
}

type RedeemResult struct {
	IsWinner    bool    `json:"isWinner"`
	PrizeAmount float64 `json:"prizeAmount"`
	Message     string  `json:"message"`
}

type Cartela struct {
	ID        string              `json:"id"`
	CartelaID int                 `json:"cartelaId"`
	Pattern   [][]int             `json:"pattern"`
	IsActive  bool                `json:"isActive"`
	CashierID protocol.FlexString `json:"cashierId"`
	CreatedAt protocol.FlexTime   `json:"createdAt"`
	UpdatedAt protocol.FlexTime   `json:"updatedAt"`
}

type CartelaInput struct {
	CartelaID int     `json:"cartelaId"`
	Pattern   [][]int `json:"pattern"`
	IsActive  bool    `json:"isActive"`
	CashierID string  `json:"cashierId,omitempty"`
}

type WinPattern struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Pattern   [][]bool            `json:"pattern"`
	IsActive  bool                `json:"isActive"`
	CashierID protocol.FlexString `json:"cashierId"`
	CreatedAt protocol.FlexTime   `json:"createdAt"`
	UpdatedAt protocol.FlexTime   `json:"updatedAt"`
}

type WinPatternInput struct {
	Name      string   `json:"name"`
	Pattern   [][]bool `json:"pattern"`
	IsActive  bool     `json:"isActive"`
	CashierID string   `json:"cashierId,omitempty"`
}

type Summary struct {
	CashierName string  `json:"cashierName"`
	ShopName    string  `json:"shopName"`
	FromDate    string  `json:"fromDate"`
	ToDate      string  `json:"toDate"`
	Tickets     int     `json:"tickets"`
	Bets        float64 `json:"bets"`
	Unclaimed   float64 `json:"unclaimed"`
	Redeemed    float64 `json:"redeemed"`
	NetBalance  float64 `json:"netBalance"`
}

type GameSearchParams struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	GameID    string `json:"gameId,omitempty"`
	CashierID string `json:"cashierId,omitempty"`
}

type GameResult struct {
	GameID               protocol.FlexString `json:"gameId"`
	Status               string              `json:"status"`
	GameStartTime        protocol.FlexTime   `json:"gameStartTime"`
	GameEndTime          protocol.FlexTime   `json:"gameEndTime"`
	FinalProgress        int                 `json:"finalProgress"`
	FinalCalledNumbers   []int               `json:"finalCalledNumbers"`
	FinalCartelas        int                 `json:"finalCartelas"`
	FinalTotalStack      float64             `json:"finalTotalStack"`
	FinalTotalWinStack   float64             `json:"finalTotalWinStack"`
	FinalTotalShopMargin float64             `json:"finalTotalShopMargin"`
	FinalTotalSystemFee  float64             `json:"finalTotalSystemFee"`
	FinalNetPrizePool    float64             `json:"finalNetPrizePool"`
}

type GameSearchResult struct {
	Results        []GameResult `json:"results"`
	Total          int          `json:"total"`
	ActiveGames    int          `json:"activeGames"`
	CompletedGames int          `json:"completedGames"`
}

type RecallBet struct {
	ID            string              `json:"_id,omitempty"`
	TicketNumber  protocol.FlexString `json:"ticketNumber"`
	CartelaNumber int                 `json:"cartelaNumber"`
	Amount        float64             `json:"amount"`
	CreatedAt     protocol.FlexTime   `json:"createdAt"`
	GameID        protocol.FlexString `json:"gameId"`
	WinAmount     float64             `json:"winAmount"`
	SessionID     string              `json:"sessionId,omitempty"`
	Status        string              `json:"status,omitempty"`
}

type VerifyRequest struct {
	CartelaID int    `json:"cartelaId"`
	GameID    string `json:"gameId"`
}

type Verification struct {
	CartelaID             int                 `json:"cartelaId"`
	TicketNumber          protocol.FlexString `json:"ticketNumber"`
	GameID                protocol.FlexString `json:"gameId"`
	Status                string              `json:"status"`
	CartelaGrid           [][]int             `json:"cartelaGrid"`
	MatchedNumbers        []int               `json:"matchedNumbers"`
	DrawnNumbers          []int               `json:"drawnNumbers"`
	WinningPatternDetails json.RawMessage     `json:"winningPatternDetails,omitempty"`
}
