// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"github.com/meterio/skillme/auction"
	"github.com/meterio/skillme/skillme"
)

// Auction summary of one auction instance.
type Auction struct {
	ID             skillme.Bytes32 `json:"id"`
	Owner          skillme.Address `json:"owner"`
	StartHeight    uint32          `json:"startHeight"`
	EndHeight      uint32          `json:"endHeight"`
	Sealed         bool            `json:"sealed"`
	Phase          string          `json:"phase"`
	CustodyAddress skillme.Address `json:"custodyAddress"`
	CustodyBalance string          `json:"custodyBalance"`
}

func convertAuction(a *auction.Auction, bestNum uint32) *Auction {
	return &Auction{
		ID:             a.ID(),
		Owner:          a.Owner(),
		StartHeight:    a.StartHeight(),
		EndHeight:      a.EndHeight(),
		Sealed:         a.Sealed(),
		Phase:          a.Phase(bestNum).String(),
		CustodyAddress: a.Address(),
		CustodyBalance: a.CustodyBalance().String(),
	}
}

// CreateRequest body of POST /auctions.
type CreateRequest struct {
	Owner       skillme.Address `json:"owner"`
	StartHeight uint32          `json:"startHeight"`
	EndHeight   uint32          `json:"endHeight"`
	Sealed      bool            `json:"sealed"`
}

// BidRequest body of POST /auctions/{id}/bids.
type BidRequest struct {
	Bidder skillme.Address `json:"bidder"`
	Amount uint64          `json:"amount"`
}

// WithdrawRequest body of POST /auctions/{id}/withdrawals.
type WithdrawRequest struct {
	Account skillme.Address `json:"account"`
}

// BidderFunds escrowed amount of one bidder.
type BidderFunds struct {
	Account skillme.Address `json:"account"`
	Amount  string          `json:"amount"`
}

// HighestBidder leading account and amount of an open auction.
type HighestBidder struct {
	Account skillme.Address `json:"account"`
	Amount  string          `json:"amount"`
}

// Withdrawal result of a withdrawal.
type Withdrawal struct {
	Account skillme.Address `json:"account"`
	Amount  string          `json:"amount"`
}
