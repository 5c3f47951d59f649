// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/skillme/skillme"
)

// bidderFund one outstanding escrow entry, kept sorted by address
// so the encoded snapshot is deterministic.
type bidderFund struct {
	Addr   skillme.Address
	Amount *big.Int
}

// auctionData is the persisted form of an Auction.
type auctionData struct {
	ID            skillme.Bytes32
	Owner         skillme.Address
	StartHeight   uint32
	EndHeight     uint32
	Sealed        bool
	HighestBidder skillme.Address
	HighestBid    *big.Int
	Funds         []bidderFund
}

func auctionStorageKey(id skillme.Bytes32) skillme.Bytes32 {
	return skillme.Blake2b([]byte("auction"), id.Bytes())
}

// save writes the auction snapshot under the factory bookkeeping address.
// Encoding errors are absorbed by the state and surface via state.Err().
func (a *Auction) save() {
	data := &auctionData{
		ID:            a.id,
		Owner:         a.owner,
		StartHeight:   a.startHeight,
		EndHeight:     a.endHeight,
		Sealed:        a.sealed,
		HighestBidder: a.highestBidder,
		HighestBid:    a.highestBid,
		Funds:         make([]bidderFund, 0, len(a.funds)),
	}
	for addr, amount := range a.funds {
		data.Funds = append(data.Funds, bidderFund{Addr: addr, Amount: amount})
	}
	sort.Slice(data.Funds, func(i, j int) bool {
		return bytes.Compare(data.Funds[i].Addr.Bytes(), data.Funds[j].Addr.Bytes()) < 0
	})

	a.st.EncodeStorage(skillme.AuctionFactoryAddr, auctionStorageKey(a.id), func() ([]byte, error) {
		return rlp.EncodeToBytes(data)
	})
}

// restore rebuilds the in-memory maps from a decoded snapshot.
func (a *Auction) restore(data *auctionData) {
	a.id = data.ID
	a.owner = data.Owner
	a.startHeight = data.StartHeight
	a.endHeight = data.EndHeight
	a.sealed = data.Sealed
	a.addr = custodyAddress(data.ID)
	a.highestBidder = data.HighestBidder
	a.highestBid = data.HighestBid
	if a.highestBid == nil {
		a.highestBid = &big.Int{}
	}
	a.funds = make(map[skillme.Address]*big.Int, len(data.Funds))
	for _, f := range data.Funds {
		a.funds[f.Addr] = f.Amount
	}
}

// custodyAddress derives the escrow account of an auction from its id.
func custodyAddress(id skillme.Bytes32) skillme.Address {
	return skillme.BytesToAddress(skillme.Blake2b([]byte("auction-account"), id.Bytes()).Bytes())
}
