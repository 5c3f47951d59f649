// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/skillme"
)

// Transfer a transfer record as exposed by the api.
type Transfer struct {
	BlockNumber uint32          `json:"blockNumber"`
	Sender      skillme.Address `json:"sender"`
	Recipient   skillme.Address `json:"recipient"`
	Amount      string          `json:"amount"`
}

// Event an event record as exposed by the api.
// Amount is omitted for redacted (sealed-bid) records.
type Event struct {
	BlockNumber  uint32           `json:"blockNumber"`
	Name         string           `json:"name"`
	Auction      *skillme.Bytes32 `json:"auction,omitempty"`
	Account      *skillme.Address `json:"account,omitempty"`
	Counterparty *skillme.Address `json:"counterparty,omitempty"`
	Amount       *string          `json:"amount,omitempty"`
	Duration     uint32           `json:"duration,omitempty"`
	Sealed       bool             `json:"sealed"`
}

func convertTransfers(records []*logdb.Transfer) []*Transfer {
	transfers := make([]*Transfer, 0, len(records))
	for _, r := range records {
		transfers = append(transfers, &Transfer{
			BlockNumber: r.BlockNumber,
			Sender:      r.Sender,
			Recipient:   r.Recipient,
			Amount:      r.Amount.String(),
		})
	}
	return transfers
}

func convertEvent(r *logdb.Event) *Event {
	ev := &Event{
		BlockNumber: r.BlockNumber,
		Name:        r.Name,
		Duration:    r.Duration,
		Sealed:      r.Sealed,
	}
	if !r.Auction.IsZero() {
		auction := r.Auction
		ev.Auction = &auction
	}
	if !r.Account.IsZero() {
		account := r.Account
		ev.Account = &account
	}
	if !r.Counterparty.IsZero() {
		counterparty := r.Counterparty
		ev.Counterparty = &counterparty
	}
	if r.Amount != nil {
		amount := r.Amount.String()
		ev.Amount = &amount
	}
	return ev
}

func convertEvents(records []*logdb.Event) []*Event {
	events := make([]*Event, 0, len(records))
	for _, r := range records {
		events = append(events, convertEvent(r))
	}
	return events
}
