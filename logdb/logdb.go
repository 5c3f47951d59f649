// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/tx"
)

// LogDB stores published records (transfers, events) in sqlite,
// so monitoring and clients can query and subscribe to them.
// It implements tx.Sink.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	wlock         sync.Mutex
}

var _ tx.Sink = (*LogDB)(nil)

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(transferTableSchema + eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	if err := db.db.Close(); err != nil {
		fmt.Println("could not close logdb error:", err)
	}
}

// Path returns the db file path.
func (db *LogDB) Path() string {
	return db.path
}

// LogTransfer stores a transfer record at the given log position.
func (db *LogDB) LogTransfer(blockNum uint32, t *tx.Transfer) error {
	db.wlock.Lock()
	defer db.wlock.Unlock()

	rec := newTransfer(blockNum, t)
	_, err := db.db.Exec(
		"INSERT INTO transfers(blockNumber, sender, recipient, amount) VALUES (?,?,?,?)",
		rec.BlockNumber, rec.Sender.Bytes(), rec.Recipient.Bytes(), rec.Amount.Bytes())
	return err
}

// LogEvent stores an event record at the given log position.
func (db *LogDB) LogEvent(blockNum uint32, e *tx.Event) error {
	db.wlock.Lock()
	defer db.wlock.Unlock()

	rec := newEvent(blockNum, e)
	var amount []byte
	if rec.Amount != nil {
		amount = rec.Amount.Bytes()
	}
	sealed := 0
	if rec.Sealed {
		sealed = 1
	}
	_, err := db.db.Exec(
		"INSERT INTO events(blockNumber, name, auction, account, counterparty, amount, duration, sealed) VALUES (?,?,?,?,?,?,?,?)",
		rec.BlockNumber, rec.Name, rec.Auction.Bytes(), rec.Account.Bytes(), rec.Counterparty.Bytes(), amount, rec.Duration, sealed)
	return err
}

// FilterTransfers query transfer records with the given filter.
func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	stmt := "SELECT blockNumber, sender, recipient, amount FROM transfers WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Address != nil {
			stmt += " AND (sender = ? OR recipient = ?)"
			args = append(args, filter.Address.Bytes(), filter.Address.Bytes())
		}
		if filter.Range != nil {
			stmt += " AND blockNumber >= ? AND blockNumber <= ?"
			args = append(args, filter.Range.From, filter.Range.To)
		}
	}
	stmt += " ORDER BY rowid"
	if filter != nil && filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			blockNumber uint32
			sender      []byte
			recipient   []byte
			amount      []byte
		)
		if err := rows.Scan(&blockNumber, &sender, &recipient, &amount); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			BlockNumber: blockNumber,
			Sender:      skillme.BytesToAddress(sender),
			Recipient:   skillme.BytesToAddress(recipient),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	return transfers, rows.Err()
}

// FilterEvents query event records with the given filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	stmt := "SELECT blockNumber, name, auction, account, counterparty, amount, duration, sealed FROM events WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Name != "" {
			stmt += " AND name = ?"
			args = append(args, filter.Name)
		}
		if filter.Auction != nil {
			stmt += " AND auction = ?"
			args = append(args, filter.Auction.Bytes())
		}
		if filter.Range != nil {
			stmt += " AND blockNumber >= ? AND blockNumber <= ?"
			args = append(args, filter.Range.From, filter.Range.To)
		}
	}
	stmt += " ORDER BY rowid"
	if filter != nil && filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			blockNumber  uint32
			name         string
			auction      []byte
			account      []byte
			counterparty []byte
			amount       []byte
			duration     uint32
			sealed       int
		)
		if err := rows.Scan(&blockNumber, &name, &auction, &account, &counterparty, &amount, &duration, &sealed); err != nil {
			return nil, err
		}
		ev := &Event{
			BlockNumber:  blockNumber,
			Name:         name,
			Auction:      skillme.BytesToBytes32(auction),
			Account:      skillme.BytesToAddress(account),
			Counterparty: skillme.BytesToAddress(counterparty),
			Duration:     duration,
			Sealed:       sealed != 0,
		}
		if len(amount) > 0 || !ev.Sealed {
			ev.Amount = new(big.Int).SetBytes(amount)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
