package ledger

import (
	"encoding/json"
	"sort"

	"paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// snapshotLocked captures the ledger state for persistence. Positions are
// ordered by symbol so repeated snapshots of the same state serialize
// identically. The trade log is trimmed to the retention cap, newest kept,
// so persisted state stays bounded while the in-memory log preserves full
// insertion order for the session.
func (l *Ledger) snapshotLocked() models.Snapshot {
	positions := make([]*models.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		positions = append(positions, pos.Clone())
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	trades := l.trades
	if l.retention > 0 && len(trades) > l.retention {
		trades = trades[len(trades)-l.retention:]
	}
	copied := make([]*models.Trade, len(trades))
	for i, t := range trades {
		c := *t
		copied[i] = &c
	}

	return models.Snapshot{
		Balance:        l.balance,
		InitialBalance: l.initialBalance,
		Positions:      positions,
		Trades:         copied,
	}
}

// Snapshot returns the current persistable state.
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Restore hydrates the ledger from a persisted snapshot, replacing any
// in-memory state. Positions with non-positive shares or cost basis are
// dropped rather than resurrected.
func (l *Ledger) Restore(snap models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance = snap.Balance
	l.initialBalance = snap.InitialBalance

	l.positions = make(map[string]*models.Position, len(snap.Positions))
	for _, pos := range snap.Positions {
		if pos == nil || pos.Shares <= 0 || pos.AvgPrice <= 0 {
			continue
		}
		l.positions[pos.Symbol] = pos.Clone()
	}

	l.trades = make([]*models.Trade, 0, len(snap.Trades))
	for _, t := range snap.Trades {
		if t == nil {
			continue
		}
		c := *t
		l.trades = append(l.trades, &c)
	}
}

// EncodeSnapshot serializes a snapshot as JSON. Timestamps render as
// RFC 3339 strings.
func EncodeSnapshot(snap models.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "encoding snapshot")
	}
	return data, nil
}

// DecodeSnapshot parses a JSON snapshot.
func DecodeSnapshot(data []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, errors.Wrap(err, "decoding snapshot")
	}
	return snap, nil
}
