// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = skillme.BytesToAddress([]byte("alice"))
	bob   = skillme.BytesToAddress([]byte("bob"))
)

func newTestDB(t *testing.T) *logdb.LogDB {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestLogTransfer(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.LogTransfer(1, &tx.Transfer{
		Sender:    alice,
		Recipient: bob,
		Amount:    big.NewInt(100),
	}))
	require.NoError(t, db.LogTransfer(2, &tx.Transfer{
		Sender:    bob,
		Recipient: alice,
		Amount:    big.NewInt(40),
	}))

	all, err := db.FilterTransfers(context.Background(), &logdb.TransferFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint32(1), all[0].BlockNumber)
	assert.Equal(t, alice, all[0].Sender)
	assert.Equal(t, bob, all[0].Recipient)
	assert.Equal(t, big.NewInt(100), all[0].Amount)
}

func TestFilterTransfersByAddress(t *testing.T) {
	db := newTestDB(t)
	other := skillme.BytesToAddress([]byte("other"))

	require.NoError(t, db.LogTransfer(1, &tx.Transfer{Sender: alice, Recipient: bob, Amount: big.NewInt(1)}))
	require.NoError(t, db.LogTransfer(2, &tx.Transfer{Sender: bob, Recipient: other, Amount: big.NewInt(2)}))

	records, err := db.FilterTransfers(context.Background(), &logdb.TransferFilter{Address: &alice})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, alice, records[0].Sender)

	// sender or recipient matches
	records, err = db.FilterTransfers(context.Background(), &logdb.TransferFilter{Address: &bob})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFilterTransfersByRange(t *testing.T) {
	db := newTestDB(t)
	for i := uint32(1); i <= 5; i++ {
		require.NoError(t, db.LogTransfer(i, &tx.Transfer{Sender: alice, Recipient: bob, Amount: big.NewInt(int64(i))}))
	}

	records, err := db.FilterTransfers(context.Background(), &logdb.TransferFilter{
		Range: &logdb.Range{From: 2, To: 4},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint32(2), records[0].BlockNumber)
	assert.Equal(t, uint32(4), records[2].BlockNumber)

	records, err = db.FilterTransfers(context.Background(), &logdb.TransferFilter{
		Range:   &logdb.Range{From: 1, To: 5},
		Options: &logdb.Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint32(2), records[0].BlockNumber)
}

func TestLogEvent(t *testing.T) {
	db := newTestDB(t)
	auctionID := skillme.Blake2b([]byte("auction1"))

	require.NoError(t, db.LogEvent(1, &tx.Event{
		Name:     tx.EventAuctionCreated,
		Auction:  auctionID,
		Account:  alice,
		Duration: 4,
	}))
	require.NoError(t, db.LogEvent(2, &tx.Event{
		Name:    tx.EventBidAccepted,
		Auction: auctionID,
		Account: bob,
		Amount:  big.NewInt(100),
	}))

	records, err := db.FilterEvents(context.Background(), &logdb.EventFilter{Name: tx.EventBidAccepted})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, bob, records[0].Account)
	assert.Equal(t, big.NewInt(100), records[0].Amount)

	records, err = db.FilterEvents(context.Background(), &logdb.EventFilter{Auction: &auctionID})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSealedEventRedacted(t *testing.T) {
	db := newTestDB(t)
	auctionID := skillme.Blake2b([]byte("auction1"))

	// sealed bid records carry no account and no amount
	require.NoError(t, db.LogEvent(3, &tx.Event{
		Name:    tx.EventBidAccepted,
		Auction: auctionID,
		Sealed:  true,
	}))

	records, err := db.FilterEvents(context.Background(), &logdb.EventFilter{Name: tx.EventBidAccepted})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Sealed)
	assert.Nil(t, records[0].Amount)
	assert.True(t, records[0].Account.IsZero())
}
