// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/binary"
	"sync"

	"github.com/meterio/skillme/skillme"
)

var (
	devAccounts     []skillme.Address
	devAccountsOnce sync.Once
)

// DevAccounts returns a fixed set of well-known development accounts.
// Account 0 is the default genesis admin.
func DevAccounts() []skillme.Address {
	devAccountsOnce.Do(func() {
		for i := uint32(0); i < 10; i++ {
			var seq [4]byte
			binary.BigEndian.PutUint32(seq[:], i)
			hash := skillme.Blake2b([]byte("skillme-dev-account"), seq[:])
			devAccounts = append(devAccounts, skillme.BytesToAddress(hash.Bytes()))
		}
	})
	return devAccounts
}
