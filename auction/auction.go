// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"log/slog"
	"math/big"
	"sync"

	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/meterio/skillme/tx"
)

var log = slog.With("pkg", "auction")

// Phase of an auction, derived from the chain height on every call.
// It is never stored, so it can not desynchronize from the clock.
type Phase int

const (
	Accepting Phase = iota
	Closed
)

func (p Phase) String() string {
	switch p {
	case Accepting:
		return "accepting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Auction is one bidding instance over the shared token ledger.
// Escrowed funds are held by a custody account derived from the auction id;
// at all times the custody balance on the ledger equals the sum of
// outstanding bidder funds. A single mutex serializes bids and withdrawals
// per instance.
type Auction struct {
	id          skillme.Bytes32
	owner       skillme.Address
	startHeight uint32
	endHeight   uint32
	sealed      bool
	addr        skillme.Address

	ledger *ledger.Ledger
	chain  *chain.Chain
	st     *state.State
	sink   tx.Sink

	lock          sync.Mutex
	funds         map[skillme.Address]*big.Int
	highestBidder skillme.Address
	highestBid    *big.Int
}

// ID returns the auction reference.
func (a *Auction) ID() skillme.Bytes32 { return a.id }

// Owner returns the account that created the auction.
func (a *Auction) Owner() skillme.Address { return a.owner }

// StartHeight returns the lower height bound.
func (a *Auction) StartHeight() uint32 { return a.startHeight }

// EndHeight returns the height at and after which the auction is closed.
func (a *Auction) EndHeight() uint32 { return a.endHeight }

// Sealed returns whether the auction hides bid details.
func (a *Auction) Sealed() bool { return a.sealed }

// Address returns the custody account holding the escrowed funds.
func (a *Auction) Address() skillme.Address { return a.addr }

// Phase evaluates the auction phase at the given height.
func (a *Auction) Phase(num uint32) Phase {
	if num >= a.endHeight {
		return Closed
	}
	return Accepting
}

// CustodyBalance returns the ledger balance held by the auction.
func (a *Auction) CustodyBalance() *big.Int {
	return a.ledger.BalanceOf(a.addr)
}

// PlaceBid draws amount from the bidder's ledger balance into custody and
// credits the bidder's escrow. The bidder must have approved the custody
// account beforehand; the draw and the accounting update are atomic, an
// insufficient balance or allowance aborts the whole call.
func (a *Auction) PlaceBid(bidder skillme.Address, amount *big.Int) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	num := a.chain.BestNumber()
	if a.Phase(num) == Closed {
		return ErrAuctionClosed
	}

	var (
		transfer *tx.Transfer
		total    *big.Int
	)
	if err := a.st.Transact(func() error {
		t, err := a.ledger.TransferFrom(a.addr, bidder, a.addr, amount)
		if err != nil {
			return err
		}
		transfer = t

		prev, ok := a.funds[bidder]
		if !ok {
			prev = &big.Int{}
		}
		total = new(big.Int).Add(prev, amount)
		a.funds[bidder] = total

		if !a.sealed && total.Cmp(a.highestBid) > 0 {
			a.highestBidder = bidder
			a.highestBid = total
		}

		a.save()
		return nil
	}); err != nil {
		log.Warn("bid rejected", "auction", a.id.AbbrevString(), "bidder", bidder, "err", err)
		return err
	}

	bidsCounter.Inc()
	if a.sealed {
		log.Info("bid accepted", "auction", a.id.AbbrevString(), "sealed", true)
	} else {
		log.Info("bid accepted", "auction", a.id.AbbrevString(), "bidder", bidder, "total", total)
	}
	a.emit(num, transfer, a.bidEvent(bidder, total))
	return nil
}

// GetBidderFunds returns the escrowed amount of the given account.
// Readable by anyone for open auctions; sealed auctions reject outright.
func (a *Auction) GetBidderFunds(account skillme.Address) (*big.Int, error) {
	if a.sealed {
		return nil, ErrSealedAuction
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if amount, ok := a.funds[account]; ok {
		return new(big.Int).Set(amount), nil
	}
	return &big.Int{}, nil
}

// GetHighestBidderDetails returns the leading account and its cumulative bid.
// Sealed auctions reject outright; there is no well-defined highest to disclose.
func (a *Auction) GetHighestBidderDetails() (skillme.Address, *big.Int, error) {
	if a.sealed {
		return skillme.Address{}, nil, ErrSealedAuction
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.highestBidder, new(big.Int).Set(a.highestBid), nil
}

// Withdraw returns the caller's entire escrowed balance after the auction
// closed. Withdrawing twice is safe: the second call transfers zero.
func (a *Auction) Withdraw(account skillme.Address) (*big.Int, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	num := a.chain.BestNumber()
	if a.Phase(num) != Closed {
		return nil, ErrAuctionNotClosed
	}

	amount, ok := a.funds[account]
	if !ok || amount.Sign() == 0 {
		return &big.Int{}, nil
	}

	var transfer *tx.Transfer
	if err := a.st.Transact(func() error {
		t, err := a.ledger.Transfer(a.addr, account, amount)
		if err != nil {
			return err
		}
		transfer = t
		delete(a.funds, account)
		a.save()
		return nil
	}); err != nil {
		return nil, err
	}

	withdrawalsCounter.Inc()
	log.Info("funds withdrawn", "auction", a.id.AbbrevString(), "account", account, "amount", amount)
	a.emit(num, transfer, nil)
	return amount, nil
}

func (a *Auction) bidEvent(bidder skillme.Address, total *big.Int) *tx.Event {
	if a.sealed {
		// record that a bid happened, nothing else
		return &tx.Event{Name: tx.EventBidAccepted, Auction: a.id, Sealed: true}
	}
	return &tx.Event{
		Name:    tx.EventBidAccepted,
		Auction: a.id,
		Account: bidder,
		Amount:  new(big.Int).Set(total),
	}
}

func (a *Auction) emit(num uint32, transfer *tx.Transfer, event *tx.Event) {
	if a.sink == nil {
		return
	}
	if transfer != nil {
		if err := a.sink.LogTransfer(num, transfer); err != nil {
			log.Warn("log transfer failed", "err", err)
		}
	}
	if event != nil {
		if err := a.sink.LogEvent(num, event); err != nil {
			log.Warn("log event failed", "err", err)
		}
	}
}
