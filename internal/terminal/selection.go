package terminal

import (
	"slices"
	"time"

	"cashier-terminal/internal/protocol"
)

func checkSelectable(s State) error {
	switch {
	case !s.Connected:
		return ErrNotConnected
	case s.Identity.SessionID == "":
		return ErrNoSession
	}
	return nil
}

// requestSelect emits a select intent. The set itself only changes on confirmation.
func requestSelect(s State, id int) (State, []Effect, error) {
	if err := checkSelectable(s); err != nil {
		return s, nil, err
	}
	switch {
	case !ValidCartela(id):
		return s, nil, ErrInvalidCartela
	case s.Ledger.Has(id) && s.Ledger.GameID == s.Game.GameID:
		return s, nil, ErrCartelaPlaced
	case s.Selection.Contains(id):
		return s, nil, ErrAlreadySelected
	case s.Selection.Pending(id):
		return s, nil, ErrIntentPending
	}

	var effects []Effect
	pending := cloneMap(s.Selection.pending)
	if s.Selection.SingleMode {
		// single mode swaps: release the current pick before asking for the new one
		for _, cur := range s.Selection.IDs {
			if _, busy := pending[cur]; busy {
				continue
			}
			pending[cur] = intentDeselect
			effects = append(effects, sendEffect{
				Event:   protocol.DeselectCartela,
				Payload: protocol.SelectIntent{SessionID: s.Identity.SessionID, CartelaID: cur},
			})
		}
	}
	pending[id] = intentSelect
	s.Selection.pending = pending
	effects = append(effects, sendEffect{
		Event:   protocol.SelectCartela,
		Payload: protocol.SelectIntent{SessionID: s.Identity.SessionID, CartelaID: id},
	})
	return s, effects, nil
}

func requestDeselect(s State, id int) (State, []Effect, error) {
	if err := checkSelectable(s); err != nil {
		return s, nil, err
	}
	switch {
	case !ValidCartela(id):
		return s, nil, ErrInvalidCartela
	case !s.Selection.Contains(id):
		return s, nil, ErrNotSelected
	case s.Selection.Pending(id):
		return s, nil, ErrIntentPending
	}
	s.Selection.pending = cloneMap(s.Selection.pending)
	s.Selection.pending[id] = intentDeselect
	return s, []Effect{sendEffect{
		Event:   protocol.DeselectCartela,
		Payload: protocol.SelectIntent{SessionID: s.Identity.SessionID, CartelaID: id},
	}}, nil
}

// onServerSelectionSnapshot replaces the set verbatim. Its timestamp becomes the
// floor below which broadcasts are stale.
func onServerSelectionSnapshot(s State, ev protocol.SelectionConfirmed) (State, []Effect) {
	if ev.At.After(s.Selection.snapshotAt) {
		s.Selection.snapshotAt = ev.At
	}
	s.Selection.IDs = slices.Clone(ev.Selected)
	if s.Selection.IDs == nil {
		s.Selection.IDs = []int{}
	}
	s.Selection = clearPending(s.Selection, ev.CartelaID)
	return normalize(s), nil
}

func onSelectionRejected(s State, ev protocol.SelectionRejected) (State, []Effect) {
	s.Selection = clearPending(s.Selection, ev.CartelaID)
	msg := ev.Message
	if msg == "" {
		if ev.Deselect {
			msg = "Failed to deselect cartela."
		} else {
			msg = "Failed to select cartela."
		}
	}
	return s, []Effect{failure(msg)}
}

// onSelectionBroadcast merges one toggle from any actor. A broadcast older than
// the last snapshot, or than the last one applied for the same cartela, arrived
// out of order and is dropped.
func onSelectionBroadcast(s State, ev protocol.SelectionBroadcast) (State, []Effect, bool) {
	if foreignSession(s, ev.SessionID) || !ValidCartela(ev.CartelaID) {
		return s, nil, false
	}
	if !ev.At.IsZero() {
		if ev.At.Before(s.Selection.snapshotAt) {
			return s, nil, false
		}
		if last, ok := s.Selection.broadcastAt[ev.CartelaID]; ok && ev.At.Before(last) {
			return s, nil, false
		}
		s.Selection.broadcastAt = cloneMap(s.Selection.broadcastAt)
		s.Selection.broadcastAt[ev.CartelaID] = ev.At
	}

	has := s.Selection.Contains(ev.CartelaID)
	switch {
	case ev.Selected && !has:
		s.Selection.IDs = append(slices.Clone(s.Selection.IDs), ev.CartelaID)
	case !ev.Selected && has:
		s.Selection.IDs = slices.DeleteFunc(slices.Clone(s.Selection.IDs), func(v int) bool { return v == ev.CartelaID })
	}
	if want, ok := s.Selection.pending[ev.CartelaID]; ok && (want == intentSelect) == ev.Selected {
		s.Selection = clearPending(s.Selection, ev.CartelaID)
	}
	return normalize(s), nil, true
}

// onComprehensiveReset empties the selection and leaves the ledger alone.
func onComprehensiveReset(s State) State {
	s.Selection.IDs = []int{}
	s.Selection.pending = nil
	s.Selection.broadcastAt = nil
	s.Selection.snapshotAt = time.Time{}
	return s
}

// onTicketCancelled frees the cartela in both the ledger and the selection, and
// tells the server's selection record when the id was selected.
func onTicketCancelled(s State, cartelaID int) (State, []Effect) {
	s = removeOnCancellation(s, cartelaID)
	if !s.Selection.Contains(cartelaID) {
		return s, nil
	}
	s.Selection.IDs = slices.DeleteFunc(slices.Clone(s.Selection.IDs), func(v int) bool { return v == cartelaID })
	if s.Identity.SessionID == "" {
		return s, nil
	}
	return s, []Effect{sendEffect{
		Event:   protocol.DeselectCartela,
		Payload: protocol.SelectIntent{SessionID: s.Identity.SessionID, CartelaID: cartelaID},
	}}
}

// setSingleMode is local policy only; turning it on keeps the first selection.
func setSingleMode(s State, on bool) (State, []Effect) {
	effects := []Effect{persistPref{Key: PrefSingleMode, Value: boolPref(on)}}
	s.Selection.SingleMode = on
	if on && len(s.Selection.IDs) > 1 {
		s.Selection.IDs = []int{s.Selection.IDs[0]}
		effects = append(effects, info("Single mode enabled - keeping only first cartela"))
	}
	return s, effects
}

func clearPending(sel Selection, id int) Selection {
	if _, ok := sel.pending[id]; !ok {
		return sel
	}
	sel.pending = cloneMap(sel.pending)
	delete(sel.pending, id)
	return sel
}

func foreignSession(s State, sessionID string) bool {
	return sessionID != "" && s.Identity.SessionID != "" && sessionID != s.Identity.SessionID
}

func boolPref(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
