package terminal

import "time"

// Effect is work a reducer asks the loop to perform. Reducers never do I/O.
type Effect interface{ isEffect() }

type sendEffect struct {
	Event   string
	Payload any
	Delay   time.Duration
}

// fetchLedger pulls placed-bet cartelas; the result is tagged with GameID.
type fetchLedger struct {
	GameID string
	Delay  time.Duration
}

// fetchGame pulls the current game; RequestedFor is the id tracked when asked.
type fetchGame struct {
	RequestedFor string
	Delay        time.Duration
}

type endGameCall struct{}

type armBetTimer struct {
	RequestID string
}

type notify struct {
	Level NoticeLevel
	Text  string
}

type persistPref struct {
	Key   string
	Value string
}

type autoDrawTickers struct {
	On bool
}

type betOutcome struct {
	Outcome string
}

func (sendEffect) isEffect()      {}
func (fetchLedger) isEffect()     {}
func (fetchGame) isEffect()       {}
func (endGameCall) isEffect()     {}
func (armBetTimer) isEffect()     {}
func (notify) isEffect()          {}
func (persistPref) isEffect()     {}
func (autoDrawTickers) isEffect() {}
func (betOutcome) isEffect()      {}

const (
	betTimeout          = 10 * time.Second
	countdownInterval   = time.Second
	statsInterval       = 3 * time.Second
	ledgerAfterStart    = 500 * time.Millisecond
	displayAfterStart   = 500 * time.Millisecond
	refreshAfterEndGame = 1500 * time.Millisecond
	noticeTTL           = 5 * time.Second
	maxNotices          = 20
)

const (
	PrefSingleMode = "bingo_single_mode_enabled"
	PrefStake      = "lastSelectedStake"
)

func info(text string) notify    { return notify{Level: NoticeInfo, Text: text} }
func success(text string) notify { return notify{Level: NoticeSuccess, Text: text} }
func warning(text string) notify { return notify{Level: NoticeWarning, Text: text} }
func failure(text string) notify { return notify{Level: NoticeError, Text: text} }
