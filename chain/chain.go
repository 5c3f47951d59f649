// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/meterio/skillme/co"
	"github.com/meterio/skillme/kv"
	"github.com/meterio/skillme/skillme"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var log = slog.With("pkg", "chain")

var bestHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "best_height",
	Help: "Best block height",
})

// Chain is the block-height clock shared by the ledger and the auctions.
// The height only moves forward; the best number survives restarts.
// It's thread-safe.
type Chain struct {
	kv      kv.GetPutter
	bestNum uint32
	rw      sync.RWMutex
	tick    co.Signal
}

// New create an instance of Chain, restoring the persisted best number.
func New(kv kv.GetPutter) (*Chain, error) {
	prometheus.Register(bestHeightGauge)

	c := &Chain{kv: kv}
	raw, err := kv.Get(skillme.KeyBestBlock.Bytes())
	if err != nil {
		if !kv.IsNotFound(err) {
			return nil, errors.Wrap(err, "load best block")
		}
	} else {
		if len(raw) != 4 {
			return nil, errors.New("corrupted best block record")
		}
		c.bestNum = binary.BigEndian.Uint32(raw)
	}
	bestHeightGauge.Set(float64(c.bestNum))
	return c, nil
}

// BestNumber returns the current height.
func (c *Chain) BestNumber() uint32 {
	c.rw.RLock()
	defer c.rw.RUnlock()
	return c.bestNum
}

// NextBlock advances the height by one, persists it and
// broadcasts a tick to subscribers.
func (c *Chain) NextBlock() (uint32, error) {
	c.rw.Lock()
	defer c.rw.Unlock()

	num := c.bestNum + 1
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], num)
	if err := c.kv.Put(skillme.KeyBestBlock.Bytes(), raw[:]); err != nil {
		return c.bestNum, errors.Wrap(err, "persist best block")
	}
	c.bestNum = num
	bestHeightGauge.Set(float64(num))
	log.Debug("sealed block", "number", num)

	c.tick.Broadcast()
	return num, nil
}

// NewTicker create a signal Waiter to receive event of block appended.
func (c *Chain) NewTicker() co.Waiter {
	return c.tick.NewWaiter()
}
