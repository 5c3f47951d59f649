// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package skillme

import "math/big"

// Token metadata, fixed at genesis.
const (
	TokenName     = "SkillMeToken"
	TokenSymbol   = "SMT"
	TokenDecimals = uint8(18)
)

var (
	// TokenInitialSupply is minted to the admin account when the genesis state is built.
	TokenInitialSupply = big.NewInt(1000000)

	// LedgerAddr is the account the token ledger keeps its own bookkeeping under.
	LedgerAddr = BytesToAddress([]byte("token-ledger-address"))

	// AuctionFactoryAddr is the account the auction factory keeps its records under.
	AuctionFactoryAddr = BytesToAddress([]byte("auction-factory-address"))

	KeyTotalSupply = Blake2b([]byte("total-supply"))
	KeyAuctionIDs  = Blake2b([]byte("auction-id-list"))
	KeyBestBlock   = Blake2b([]byte("best-block-num"))
)
