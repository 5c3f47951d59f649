// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/skillme"
)

// EventMessage one event record pushed over a subscription.
type EventMessage struct {
	BlockNumber  uint32           `json:"blockNumber"`
	Name         string           `json:"name"`
	Auction      *skillme.Bytes32 `json:"auction,omitempty"`
	Account      *skillme.Address `json:"account,omitempty"`
	Counterparty *skillme.Address `json:"counterparty,omitempty"`
	Amount       *string          `json:"amount,omitempty"`
	Duration     uint32           `json:"duration,omitempty"`
	Sealed       bool             `json:"sealed"`
}

func convertEvent(r *logdb.Event) *EventMessage {
	msg := &EventMessage{
		BlockNumber: r.BlockNumber,
		Name:        r.Name,
		Duration:    r.Duration,
		Sealed:      r.Sealed,
	}
	if !r.Auction.IsZero() {
		auction := r.Auction
		msg.Auction = &auction
	}
	if !r.Account.IsZero() {
		account := r.Account
		msg.Account = &account
	}
	if !r.Counterparty.IsZero() {
		counterparty := r.Counterparty
		msg.Counterparty = &counterparty
	}
	if r.Amount != nil {
		amount := r.Amount.String()
		msg.Amount = &amount
	}
	return msg
}
