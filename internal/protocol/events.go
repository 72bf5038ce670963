package protocol

// Outbound commands.
const (
	SelectCartela      = "select_cartela"
	DeselectCartela    = "deselect_cartela"
	PlaceBet           = "place_bet"
	StartGame          = "start_game"
	DrawNumber         = "draw_number"
	ShuffleNumberPool  = "shuffle_number_pool"
	AutoDrawInitialize = "auto_draw_initialize"
	AutoDrawStart      = "auto_draw_start"
	AutoDrawStop       = "auto_draw_stop"
	GetAutoDrawStats   = "get_auto_draw_stats"
	GetDisplayStatus   = "get_display_status"
)

// Inbound events.
const (
	CartelaSelectionSuccess   = "cartela_selection_success"
	CartelaSelectionError     = "cartela_selection_error"
	CartelaDeselectionSuccess = "cartela_deselection_success"
	CartelaDeselectionError   = "cartela_deselection_error"
	CartelaSelected           = "cartela_selected"
	CartelaDeselected         = "cartela_deselected"

	BetPlacedSuccess  = "bet_placed_success"
	BetError          = "bet_error"
	TicketPrintStatus = "ticket_print_status"
	BetPlaced         = "bet_placed"
	BetsPlaced        = "bets_placed"
	PlacedBetsUpdated = "placed_bets_updated"

	GameDataUpdated   = "game_data_updated"
	GameDataSync      = "game_data_sync"
	GameSessionInfo   = "game_session_info"
	GameStatusSync    = "game:status_sync"
	GameStatusUpdated = "game_status_updated"

	GameComprehensiveReset = "game_comprehensive_reset"
	GameEnded              = "game_ended"
	GameNewReady           = "game:new_ready"
	GameIDUpdated          = "game:game_id_updated"
	CashierRefreshRequired = "cashier:refresh_required"

	GameStart      = "game_start"
	GameStarted    = "game_started"
	GameStartError = "game_start_error"
	NumberDrawn    = "number_drawn"
	DrawRejected   = "draw_rejected"

	TicketCancelled = "ticket_cancelled"

	DisplayConnectionStatus = "display:connection_status"
	DisplayStatusResponse   = "display_status_response"
	DisplayConnected        = "display:connected"
	DisplayJoinedRoom       = "display_joined_room"
	DisplayWaitingCashier   = "display:waiting_for_cashier"
	DisplayWaitingGame      = "display:waiting_for_game"
	DisplayError            = "display:error"
	ConnectionStatusUpdate  = "connection_status_update"

	AutoDrawInitialized = "auto_draw_initialized"
	AutoDrawStarted     = "auto_draw_started"
	AutoDrawStopped     = "auto_draw_stopped"
	AutoDrawStats       = "auto_draw_stats"
	NumberPoolShuffled  = "number_pool_shuffled"
	ShuffleCompleted    = "shuffle_completed"

	CartelaCreated       = "cartela:created"
	CartelaUpdated       = "cartela:updated"
	CartelaDeleted       = "cartela:deleted"
	CartelaStatusChanged = "cartela:status-changed"

	RefreshPages        = "refresh_pages"
	RefreshGameData     = "refresh_game_data"
	DisplayRefreshReq   = "display:refresh_request"
	GameRefreshRequired = "game:refresh_required"
	GameReset           = "game_reset"
	RoomJoined          = "room_joined"
	CashierUnauthorized = "cashier:unauthorized"
)

// Inbound lists every event name Decode understands, in catalog order.
var Inbound = []string{
	CartelaSelectionSuccess, CartelaSelectionError, CartelaDeselectionSuccess, CartelaDeselectionError,
	CartelaSelected, CartelaDeselected,
	BetPlacedSuccess, BetError, TicketPrintStatus, BetPlaced, BetsPlaced, PlacedBetsUpdated,
	GameDataUpdated, GameDataSync, GameSessionInfo, GameStatusSync, GameStatusUpdated,
	GameComprehensiveReset, GameEnded, GameNewReady, GameIDUpdated, CashierRefreshRequired,
	GameStart, GameStarted, GameStartError, NumberDrawn, DrawRejected,
	TicketCancelled,
	DisplayConnectionStatus, DisplayStatusResponse, DisplayConnected, DisplayJoinedRoom,
	DisplayWaitingCashier, DisplayWaitingGame, DisplayError, ConnectionStatusUpdate,
	AutoDrawInitialized, AutoDrawStarted, AutoDrawStopped, AutoDrawStats, NumberPoolShuffled, ShuffleCompleted,
	CartelaCreated, CartelaUpdated, CartelaDeleted, CartelaStatusChanged,
	RefreshPages, RefreshGameData, DisplayRefreshReq, GameRefreshRequired, GameReset,
	RoomJoined, CashierUnauthorized,
}
