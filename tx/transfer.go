// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/meterio/skillme/skillme"
)

// Transfer token transfer log.
type Transfer struct {
	Sender    skillme.Address
	Recipient skillme.Address
	Amount    *big.Int
}

// Transfers slice of transfer logs.
type Transfers []*Transfer
