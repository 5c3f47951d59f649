// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/meterio/skillme/auction"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/lvldb"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = skillme.BytesToAddress([]byte("owner"))
	alice = skillme.BytesToAddress([]byte("alice"))
	bob   = skillme.BytesToAddress([]byte("bob"))
)

type testEnv struct {
	kv      *lvldb.LevelDB
	st      *state.State
	ledger  *ledger.Ledger
	chain   *chain.Chain
	factory *auction.Factory
}

func newTestEnv(t *testing.T) *testEnv {
	kv, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	st := state.New(kv)
	l := ledger.New(skillme.LedgerAddr, st)
	l.Mint(alice, big.NewInt(1000))
	l.Mint(bob, big.NewInt(1000))
	require.NoError(t, st.Commit())

	ch, err := chain.New(kv)
	require.NoError(t, err)

	factory, err := auction.NewFactory(l, ch, st, nil)
	require.NoError(t, err)

	return &testEnv{kv: kv, st: st, ledger: l, chain: ch, factory: factory}
}

func (env *testEnv) advanceTo(t *testing.T, num uint32) {
	for env.chain.BestNumber() < num {
		_, err := env.chain.NextBlock()
		require.NoError(t, err)
	}
}

// approve the custody account then bid, the way a client would
func (env *testEnv) bid(t *testing.T, a *auction.Auction, bidder skillme.Address, amount int64) {
	_, err := env.ledger.Approve(bidder, a.Address(), big.NewInt(amount))
	require.NoError(t, err)
	require.NoError(t, a.PlaceBid(bidder, big.NewInt(amount)))
}

func TestCreateAuction(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.factory.CreateAuction(owner, 0, 4, false)
	require.NoError(t, err)
	assert.False(t, a.ID().IsZero())
	assert.Equal(t, owner, a.Owner())
	assert.Equal(t, uint32(0), a.StartHeight())
	assert.Equal(t, uint32(4), a.EndHeight())
	assert.False(t, a.Sealed())
	assert.Equal(t, auction.Accepting, a.Phase(env.chain.BestNumber()))

	got, err := env.factory.Get(a.ID())
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestCreateAuctionInvalidPeriod(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.factory.CreateAuction(owner, 4, 4, false)
	assert.Equal(t, auction.ErrInvalidPeriod, err)

	_, err = env.factory.CreateAuction(owner, 4, 2, false)
	assert.Equal(t, auction.ErrInvalidPeriod, err)

	assert.Len(t, env.factory.List(), 0)
}

func TestUnknownAuction(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.factory.Get(skillme.Blake2b([]byte("no such auction")))
	assert.Equal(t, auction.ErrUnknownAuction, err)
}

func TestOpenAuctionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 4, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 100)

	funds, err := a.GetBidderFunds(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), funds)

	bidder, amount, err := a.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, alice, bidder)
	assert.Equal(t, big.NewInt(100), amount)

	assert.Equal(t, big.NewInt(900), env.ledger.BalanceOf(alice))
	assert.Equal(t, big.NewInt(100), a.CustodyBalance())

	env.advanceTo(t, 4)
	assert.Equal(t, auction.Closed, a.Phase(env.chain.BestNumber()))

	withdrawn, err := a.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), withdrawn)
	assert.Equal(t, big.NewInt(1000), env.ledger.BalanceOf(alice))
	assert.Equal(t, 0, a.CustodyBalance().Sign())
}

func TestBidsAccumulate(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 40)
	env.bid(t, a, alice, 30)

	funds, err := a.GetBidderFunds(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), funds)

	_, amount, err := a.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), amount)
}

func TestHighestBidderOnlyAdvances(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 100)
	// bob's cumulative total stays below alice's, the lead must not move
	env.bid(t, a, bob, 60)

	bidder, amount, err := a.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, alice, bidder)
	assert.Equal(t, big.NewInt(100), amount)

	// a matching total does not take the lead either
	env.bid(t, a, bob, 40)
	bidder, _, err = a.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, alice, bidder)

	env.bid(t, a, bob, 1)
	bidder, amount, err = a.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, bob, bidder)
	assert.Equal(t, big.NewInt(101), amount)
}

func TestBidWithoutApproval(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	err = a.PlaceBid(alice, big.NewInt(50))
	assert.Equal(t, ledger.ErrInsufficientAllowance, err)

	funds, err := a.GetBidderFunds(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, funds.Sign())
	assert.Equal(t, 0, a.CustodyBalance().Sign())
}

func TestBidBeyondBalance(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	_, err = env.ledger.Approve(alice, a.Address(), big.NewInt(5000))
	require.NoError(t, err)

	err = a.PlaceBid(alice, big.NewInt(5000))
	assert.Equal(t, ledger.ErrInsufficientBalance, err)

	// the failed bid left the allowance and balances untouched
	assert.Equal(t, big.NewInt(5000), env.ledger.Allowance(alice, a.Address()))
	assert.Equal(t, big.NewInt(1000), env.ledger.BalanceOf(alice))
}

func TestBidAfterClose(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 2, false)
	require.NoError(t, err)

	env.advanceTo(t, 2)

	_, err = env.ledger.Approve(alice, a.Address(), big.NewInt(10))
	require.NoError(t, err)
	err = a.PlaceBid(alice, big.NewInt(10))
	assert.Equal(t, auction.ErrAuctionClosed, err)
}

func TestWithdrawBeforeClose(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 25)

	_, err = a.Withdraw(alice)
	assert.Equal(t, auction.ErrAuctionNotClosed, err)
	assert.Equal(t, big.NewInt(25), a.CustodyBalance())
}

func TestWithdrawTwice(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 2, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 25)
	env.advanceTo(t, 2)

	withdrawn, err := a.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(25), withdrawn)

	// the second call is a no-op returning zero
	withdrawn, err = a.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, withdrawn.Sign())
	assert.Equal(t, big.NewInt(1000), env.ledger.BalanceOf(alice))
}

func TestWithdrawWithoutBid(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 2, false)
	require.NoError(t, err)

	env.advanceTo(t, 2)
	withdrawn, err := a.Withdraw(bob)
	require.NoError(t, err)
	assert.Equal(t, 0, withdrawn.Sign())
}

func TestEscrowConservation(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	env.bid(t, a, alice, 100)
	env.bid(t, a, bob, 150)
	env.bid(t, a, alice, 50)

	aliceFunds, err := a.GetBidderFunds(alice)
	require.NoError(t, err)
	bobFunds, err := a.GetBidderFunds(bob)
	require.NoError(t, err)

	sum := new(big.Int).Add(aliceFunds, bobFunds)
	assert.Equal(t, a.CustodyBalance(), sum)
}

func TestSealedAuction(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 4, true)
	require.NoError(t, err)
	assert.True(t, a.Sealed())

	env.bid(t, a, alice, 100)

	// sealed auctions disclose nothing while funds still move
	_, err = a.GetBidderFunds(alice)
	assert.Equal(t, auction.ErrSealedAuction, err)

	_, _, err = a.GetHighestBidderDetails()
	assert.Equal(t, auction.ErrSealedAuction, err)

	assert.Equal(t, big.NewInt(100), a.CustodyBalance())

	// recovery works the same as for open auctions
	env.advanceTo(t, 4)
	withdrawn, err := a.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), withdrawn)
}

func TestConcurrentAuctions(t *testing.T) {
	env := newTestEnv(t)
	a1, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)
	a2, err := env.factory.CreateAuction(owner, 0, 10, true)
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID(), a2.ID())
	assert.NotEqual(t, a1.Address(), a2.Address())

	env.bid(t, a1, alice, 100)
	env.bid(t, a2, alice, 200)

	assert.Equal(t, big.NewInt(100), a1.CustodyBalance())
	assert.Equal(t, big.NewInt(200), a2.CustodyBalance())
	assert.Equal(t, big.NewInt(700), env.ledger.BalanceOf(alice))

	assert.Equal(t, []*auction.Auction{a1, a2}, env.factory.List())
}

func TestConcurrentBidsKeepEscrowConserved(t *testing.T) {
	env := newTestEnv(t)
	a1, err := env.factory.CreateAuction(owner, 0, 1000, false)
	require.NoError(t, err)
	a2, err := env.factory.CreateAuction(owner, 0, 1000, false)
	require.NoError(t, err)

	const rounds = 500
	_, err = env.ledger.Approve(alice, a1.Address(), big.NewInt(rounds))
	require.NoError(t, err)
	require.NoError(t, env.st.Commit())

	// alice bids on a1 while bob hammers a2 without any approval; every
	// one of bob's bids fails and is rolled back. The rollbacks must never
	// disturb alice's in-flight bids on the shared state.
	var wg sync.WaitGroup
	var bidErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := a1.PlaceBid(alice, big.NewInt(1)); err != nil && bidErr == nil {
				bidErr = err
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := a2.PlaceBid(bob, big.NewInt(1)); err == nil && rejectErr == nil {
				rejectErr = errors.New("unapproved bid went through")
				return
			}
		}
	}()
	wg.Wait()
	require.NoError(t, bidErr)
	require.NoError(t, rejectErr)

	funds, err := a1.GetBidderFunds(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(rounds), funds)
	assert.Equal(t, big.NewInt(rounds), a1.CustodyBalance())
	assert.Equal(t, 0, a2.CustodyBalance().Sign())
	assert.Equal(t, big.NewInt(1000-rounds), env.ledger.BalanceOf(alice))
	assert.Equal(t, big.NewInt(1000), env.ledger.BalanceOf(bob))
}

func TestIsCustody(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)

	assert.True(t, env.factory.IsCustody(a.Address()))
	assert.False(t, env.factory.IsCustody(alice))

	// restored factories know their custody accounts too
	st := state.New(env.kv)
	l := ledger.New(skillme.LedgerAddr, st)
	restored, err := auction.NewFactory(l, env.chain, st, nil)
	require.NoError(t, err)
	assert.True(t, restored.IsCustody(a.Address()))
}

func TestFactoryRestore(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.factory.CreateAuction(owner, 0, 10, false)
	require.NoError(t, err)
	env.bid(t, a, alice, 100)
	env.bid(t, a, bob, 150)

	// a fresh factory over the same kv sees the persisted auctions
	st := state.New(env.kv)
	l := ledger.New(skillme.LedgerAddr, st)
	restoredFactory, err := auction.NewFactory(l, env.chain, st, nil)
	require.NoError(t, err)

	restored, err := restoredFactory.Get(a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), restored.ID())
	assert.Equal(t, owner, restored.Owner())
	assert.Equal(t, a.Address(), restored.Address())

	funds, err := restored.GetBidderFunds(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), funds)

	bidder, amount, err := restored.GetHighestBidderDetails()
	require.NoError(t, err)
	assert.Equal(t, bob, bidder)
	assert.Equal(t, big.NewInt(150), amount)
}
