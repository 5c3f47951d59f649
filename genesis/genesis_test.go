// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/meterio/skillme/genesis"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/lvldb"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGenesis(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv)
	l := ledger.New(skillme.LedgerAddr, st)

	require.NoError(t, genesis.Default().Build(st, l))

	admin := genesis.DevAccounts()[0]
	assert.Equal(t, skillme.TokenInitialSupply, l.TotalSupply())
	assert.Equal(t, skillme.TokenInitialSupply, l.BalanceOf(admin))
}

func TestGenesisBuildOnce(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv)
	l := ledger.New(skillme.LedgerAddr, st)

	gene := genesis.Default()
	require.NoError(t, gene.Build(st, l))
	// rebuilding over an initialized state must not mint again
	require.NoError(t, gene.Build(st, l))
	assert.Equal(t, skillme.TokenInitialSupply, l.TotalSupply())
}

func TestDevAccounts(t *testing.T) {
	accounts := genesis.DevAccounts()
	assert.Len(t, accounts, 10)
	seen := make(map[skillme.Address]bool)
	for _, a := range accounts {
		assert.False(t, a.IsZero())
		assert.False(t, seen[a])
		seen[a] = true
	}
}

func TestFromYAML(t *testing.T) {
	admin := skillme.BytesToAddress([]byte("admin"))
	alice := skillme.BytesToAddress([]byte("alice"))

	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `
admin: ` + admin.String() + `
initialSupply: 5000
accounts:
  - address: ` + alice.String() + `
    balance: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	gene, err := genesis.FromYAML(path)
	require.NoError(t, err)

	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv)
	l := ledger.New(skillme.LedgerAddr, st)
	require.NoError(t, gene.Build(st, l))

	assert.Equal(t, big.NewInt(5000), l.TotalSupply())
	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(4900), l.BalanceOf(admin))
}
