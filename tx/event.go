// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/meterio/skillme/skillme"
)

// Event names published by the ledger and the auction engine.
const (
	EventApproval       = "Approval"
	EventAuctionCreated = "AuctionCreated"
	EventBidAccepted    = "BidAccepted"
)

// Event a record observable by monitoring/clients.
// Field usage per event name:
//   - Approval: Account is the owner, Counterparty the spender, Amount the allowance.
//   - AuctionCreated: Auction, Account (owner), Duration, Sealed.
//   - BidAccepted: Auction, Account (bidder) and Amount (cumulative escrow) for
//     open auctions; for sealed auctions only Auction and Sealed are set, so the
//     record proves a bid happened without leaking amount or identity.
type Event struct {
	Name         string
	Auction      skillme.Bytes32
	Account      skillme.Address
	Counterparty skillme.Address
	Amount       *big.Int
	Duration     uint32
	Sealed       bool
}

// Events slice of event records.
type Events []*Event

// Sink consumes records as they are produced.
// The block number stamps the position in the global log.
type Sink interface {
	LogTransfer(blockNum uint32, t *Transfer) error
	LogEvent(blockNum uint32, e *Event) error
}
