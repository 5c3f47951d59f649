// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/meterio/skillme/tx"
	"github.com/prometheus/client_golang/prometheus"
)

// Factory creates auction instances bound to the shared ledger and keeps
// a resolvable registry of them. Apart from the persisted id list it holds
// no auction state of its own.
type Factory struct {
	ledger *ledger.Ledger
	chain  *chain.Chain
	st     *state.State
	sink   tx.Sink

	lock     sync.Mutex
	auctions map[skillme.Bytes32]*Auction
	custody  map[skillme.Address]skillme.Bytes32
	ids      []skillme.Bytes32
}

// NewFactory creates a factory and restores previously created auctions.
// sink may be nil, in which case no records are published.
func NewFactory(l *ledger.Ledger, c *chain.Chain, st *state.State, sink tx.Sink) (*Factory, error) {
	prometheus.Register(auctionsCreatedCounter)
	prometheus.Register(bidsCounter)
	prometheus.Register(withdrawalsCounter)

	f := &Factory{
		ledger:   l,
		chain:    c,
		st:       st,
		sink:     sink,
		auctions: make(map[skillme.Bytes32]*Auction),
		custody:  make(map[skillme.Address]skillme.Bytes32),
	}

	st.DecodeStorage(skillme.AuctionFactoryAddr, skillme.KeyAuctionIDs, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &f.ids)
	})
	for _, id := range f.ids {
		a := &Auction{ledger: l, chain: c, st: st, sink: sink}
		var data auctionData
		st.DecodeStorage(skillme.AuctionFactoryAddr, auctionStorageKey(id), func(raw []byte) error {
			return rlp.DecodeBytes(raw, &data)
		})
		a.restore(&data)
		f.auctions[id] = a
		f.custody[a.addr] = id
	}
	if err := st.Err(); err != nil {
		return nil, err
	}
	log.Info("auction factory ready", "auctions", len(f.ids))
	return f, nil
}

// CreateAuction instantiates a new auction owned by the given account.
// The end height must be greater than the start height. Exactly one
// creation record is published; on failure nothing is created.
func (f *Factory) CreateAuction(owner skillme.Address, startHeight, endHeight uint32, sealed bool) (*Auction, error) {
	if endHeight <= startHeight {
		return nil, ErrInvalidPeriod
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	id := deriveAuctionID(owner, startHeight, endHeight, sealed, uint64(len(f.ids)))
	a := &Auction{
		id:          id,
		owner:       owner,
		startHeight: startHeight,
		endHeight:   endHeight,
		sealed:      sealed,
		addr:        custodyAddress(id),
		ledger:      f.ledger,
		chain:       f.chain,
		st:          f.st,
		sink:        f.sink,
		funds:       make(map[skillme.Address]*big.Int),
		highestBid:  &big.Int{},
	}

	if err := f.st.Transact(func() error {
		a.save()
		f.st.EncodeStorage(skillme.AuctionFactoryAddr, skillme.KeyAuctionIDs, func() ([]byte, error) {
			return rlp.EncodeToBytes(append(f.ids, id))
		})
		return nil
	}); err != nil {
		return nil, err
	}

	f.ids = append(f.ids, id)
	f.auctions[id] = a
	f.custody[a.addr] = id
	auctionsCreatedCounter.Inc()

	duration := endHeight - startHeight
	log.Info("auction created",
		"id", id.AbbrevString(), "owner", owner, "duration", duration, "sealed", sealed)
	if f.sink != nil {
		event := &tx.Event{
			Name:     tx.EventAuctionCreated,
			Auction:  id,
			Account:  owner,
			Duration: duration,
			Sealed:   sealed,
		}
		if err := f.sink.LogEvent(f.chain.BestNumber(), event); err != nil {
			log.Warn("log event failed", "err", err)
		}
	}
	return a, nil
}

// Get resolves an auction reference.
func (f *Factory) Get(id skillme.Bytes32) (*Auction, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if a, ok := f.auctions[id]; ok {
		return a, nil
	}
	return nil, ErrUnknownAuction
}

// IsCustody reports whether addr is the custody account of a created
// auction. Custody accounts move funds only through their auction, never
// through plain ledger transfers.
func (f *Factory) IsCustody(addr skillme.Address) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	_, ok := f.custody[addr]
	return ok
}

// List returns all auctions in creation order.
func (f *Factory) List() []*Auction {
	f.lock.Lock()
	defer f.lock.Unlock()
	list := make([]*Auction, 0, len(f.ids))
	for _, id := range f.ids {
		list = append(list, f.auctions[id])
	}
	return list
}

func deriveAuctionID(owner skillme.Address, startHeight, endHeight uint32, sealed bool, seq uint64) skillme.Bytes32 {
	var buf [17]byte
	binary.BigEndian.PutUint32(buf[0:], startHeight)
	binary.BigEndian.PutUint32(buf[4:], endHeight)
	binary.BigEndian.PutUint64(buf[8:], seq)
	if sealed {
		buf[16] = 1
	}
	return skillme.Blake2b(owner.Bytes(), buf[:])
}
