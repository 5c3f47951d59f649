// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/tx"
)

const transferTableSchema = `CREATE TABLE IF NOT EXISTS transfers (
	blockNumber INTEGER NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS transfers_block ON transfers(blockNumber);`

const eventTableSchema = `CREATE TABLE IF NOT EXISTS events (
	blockNumber INTEGER NOT NULL,
	name TEXT NOT NULL,
	auction BLOB(32),
	account BLOB(20),
	counterparty BLOB(20),
	amount BLOB,
	duration INTEGER NOT NULL,
	sealed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS events_block ON events(blockNumber);
CREATE INDEX IF NOT EXISTS events_name ON events(name);`

// Transfer represents a tx.Transfer stamped with its log position.
type Transfer struct {
	BlockNumber uint32
	Sender      skillme.Address
	Recipient   skillme.Address
	Amount      *big.Int
}

func newTransfer(blockNum uint32, t *tx.Transfer) *Transfer {
	return &Transfer{
		BlockNumber: blockNum,
		Sender:      t.Sender,
		Recipient:   t.Recipient,
		Amount:      t.Amount,
	}
}

// Event represents a tx.Event stamped with its log position.
type Event struct {
	BlockNumber  uint32
	Name         string
	Auction      skillme.Bytes32
	Account      skillme.Address
	Counterparty skillme.Address
	Amount       *big.Int
	Duration     uint32
	Sealed       bool
}

func newEvent(blockNum uint32, e *tx.Event) *Event {
	ev := &Event{
		BlockNumber:  blockNum,
		Name:         e.Name,
		Auction:      e.Auction,
		Account:      e.Account,
		Counterparty: e.Counterparty,
		Amount:       e.Amount,
		Duration:     e.Duration,
		Sealed:       e.Sealed,
	}
	return ev
}

// Range filters records by log position.
type Range struct {
	From uint32
	To   uint32
}

// Options paging options.
type Options struct {
	Offset uint64
	Limit  uint64
}

// TransferFilter filter for transfer records.
type TransferFilter struct {
	Address *skillme.Address // matches sender or recipient
	Range   *Range
	Options *Options
}

// EventFilter filter for event records.
type EventFilter struct {
	Name    string
	Auction *skillme.Bytes32
	Range   *Range
	Options *Options
}
