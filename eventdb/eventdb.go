// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package eventdb

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
)

// EventDB indexes committed contract events in sqlite.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Insert writes events in a single transaction. Events are keyed by sequence,
// so re-inserting a committed batch is idempotent.
func (db *EventDB) Insert(ctx context.Context, evs []*events.Event) (err error) {
	if len(evs) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO event(sequence, period, contract, kind, participant, amount, modelID) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range evs {
		amount := "0"
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		if _, err = stmt.ExecContext(ctx,
			ev.Sequence,
			ev.Period,
			ev.Contract.Bytes(),
			string(ev.Kind),
			ev.Participant.Bytes(),
			amount,
			ev.ModelID,
		); err != nil {
			return errors.Wrapf(err, "insert event %d", ev.Sequence)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	metricEventsInserted().Add(int64(len(evs)))
	return nil
}

// LastSequence returns the highest stored sequence, 0 if empty.
func (db *EventDB) LastSequence(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(sequence) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Filter returns events matching the filter.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*events.Event, error) {
	const sel = "SELECT sequence, period, contract, kind, participant, amount, modelID FROM event"
	if filter == nil {
		return db.query(ctx, sel+" ORDER BY sequence ASC")
	}
	var args []any
	stmt := sel + " WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND period >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND period <= ?"
		}
	}
	if filter.Contract != nil {
		args = append(args, filter.Contract.Bytes())
		stmt += " AND contract = ?"
	}
	if filter.Participant != nil {
		args = append(args, filter.Participant.Bytes())
		stmt += " AND participant = ?"
	}
	if filter.ModelID != nil {
		args = append(args, *filter.ModelID)
		stmt += " AND modelID = ?"
	}
	if len(filter.Kinds) > 0 {
		marks := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			marks = append(marks, "?")
			args = append(args, k)
		}
		stmt += " AND kind IN (" + strings.Join(marks, ",") + ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY sequence DESC"
	} else {
		stmt += " ORDER BY sequence ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*events.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evs []*events.Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			sequence    uint64
			period      uint64
			contract    []byte
			kind        string
			participant []byte
			amount      string
			modelID     uint64
		)
		if err := rows.Scan(
			&sequence,
			&period,
			&contract,
			&kind,
			&participant,
			&amount,
			&modelID,
		); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, errors.Errorf("event %d: malformed amount %q", sequence, amount)
		}
		evs = append(evs, &events.Event{
			Contract:    cgfy.BytesToAddress(contract),
			Kind:        events.Kind(kind),
			Participant: cgfy.BytesToAddress(participant),
			Amount:      value,
			ModelID:     modelID,
			Period:      period,
			Sequence:    sequence,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evs, nil
}
