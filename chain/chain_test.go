// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain_test

import (
	"testing"
	"time"

	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/lvldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBlock(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()

	c, err := chain.New(kv)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), c.BestNumber())

	num, err := c.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), num)
	assert.Equal(t, uint32(1), c.BestNumber())
}

func TestBestNumberPersisted(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()

	c, err := chain.New(kv)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := c.NextBlock()
		require.NoError(t, err)
	}

	reloaded, err := chain.New(kv)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), reloaded.BestNumber())
}

func TestTicker(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()

	c, err := chain.New(kv)
	require.NoError(t, err)

	ticker := c.NewTicker()
	c.NextBlock()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tick")
	}
}
