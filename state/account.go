// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/meterio/skillme/skillme"
)

// Account is the ledger-visible representation of an account.
type Account struct {
	Balance *big.Int
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}}
}

func accountStoreKey(addr skillme.Address) []byte {
	k := skillme.Blake2b([]byte("account"), addr.Bytes())
	return k.Bytes()
}

func storageStoreKey(addr skillme.Address, key skillme.Bytes32) []byte {
	k := skillme.Blake2b([]byte("storage"), addr.Bytes(), key.Bytes())
	return k.Bytes()
}
