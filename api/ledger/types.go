// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/meterio/skillme/skillme"
)

// TokenInfo token metadata and supply.
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

// Balance account balance response.
type Balance struct {
	Address skillme.Address `json:"address"`
	Balance string          `json:"balance"`
}

// Allowance remaining delegated-transfer allowance.
type Allowance struct {
	Owner     skillme.Address `json:"owner"`
	Spender   skillme.Address `json:"spender"`
	Remaining string          `json:"remaining"`
}

// TransferRequest body of POST /ledger/transfers.
type TransferRequest struct {
	From   skillme.Address `json:"from"`
	To     skillme.Address `json:"to"`
	Amount uint64          `json:"amount"`
}

// ApprovalRequest body of POST /ledger/approvals.
type ApprovalRequest struct {
	Owner   skillme.Address `json:"owner"`
	Spender skillme.Address `json:"spender"`
	Amount  uint64          `json:"amount"`
}
