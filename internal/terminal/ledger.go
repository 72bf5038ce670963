package terminal

import (
	"time"

	"cashier-terminal/internal/protocol"
)

const betStatusActive = "active"

// adopt points the ledger at gameID, starting empty when it belonged to another game.
func (p PlacedBets) adopt(gameID string) PlacedBets {
	if p.GameID == gameID && p.Records != nil {
		return p
	}
	return PlacedBets{GameID: gameID, Records: map[int]PlacedBetRecord{}}
}

func (p PlacedBets) add(ids []int, tickets []string, stake int, at time.Time) PlacedBets {
	p.Records = cloneMap(p.Records)
	for i, id := range ids {
		if !ValidCartela(id) {
			continue
		}
		rec := PlacedBetRecord{PlacedAt: at, Status: betStatusActive, Stake: stake}
		if i < len(tickets) {
			rec.TicketNumber = tickets[i]
		}
		if prev, ok := p.Records[id]; ok {
			rec.PlacedAt = prev.PlacedAt
			if rec.TicketNumber == "" {
				rec.TicketNumber = prev.TicketNumber
			}
			if rec.Stake == 0 {
				rec.Stake = prev.Stake
			}
		}
		p.Records[id] = rec
	}
	return p
}

// refreshFromServer replaces the key set wholesale. Details of ids that survive
// in the same game are kept since the snapshot carries ids only.
func refreshFromServer(s State, gameID string, ids []int, now time.Time) (State, bool) {
	if gameID != s.Game.GameID {
		return s, false
	}
	prev := s.Ledger
	next := PlacedBets{GameID: gameID, Records: make(map[int]PlacedBetRecord, len(ids))}
	for _, id := range ids {
		if !ValidCartela(id) {
			continue
		}
		if rec, ok := prev.Records[id]; ok && prev.GameID == gameID {
			next.Records[id] = rec
			continue
		}
		next.Records[id] = PlacedBetRecord{PlacedAt: now, Status: betStatusActive}
	}
	s.Ledger = next
	return normalize(s), true
}

// applyLocalPlacement runs only after the server acknowledged this terminal's bet.
func applyLocalPlacement(s State, gameID string, ids []int, tickets []string, stake int, now time.Time) State {
	s.Ledger = s.Ledger.adopt(gameID).add(ids, tickets, stake, now)
	return normalize(s)
}

// applyPushedPlacement covers our own bet echoing back and bets placed by a paired device.
func applyPushedPlacement(s State, ev protocol.PlacementBroadcast, now time.Time) (State, bool) {
	if foreignSession(s, ev.SessionID) {
		return s, false
	}
	gameID := ev.GameID
	if gameID == "" {
		gameID = s.Game.GameID
	}
	if gameID != s.Game.GameID {
		return s, false
	}
	s.Ledger = s.Ledger.adopt(gameID).add(ev.CartelaIDs, ev.TicketNumbers, ev.Stake, now)
	return normalize(s), true
}

func removeOnCancellation(s State, cartelaID int) State {
	if !s.Ledger.Has(cartelaID) {
		return s
	}
	s.Ledger.Records = cloneMap(s.Ledger.Records)
	delete(s.Ledger.Records, cartelaID)
	return s
}
