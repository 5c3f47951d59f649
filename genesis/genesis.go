// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"log/slog"
	"math/big"

	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/pkg/errors"
)

var log = slog.With("pkg", "genesis")

// Account a pre-funded account besides the admin.
type Account struct {
	Address skillme.Address
	Balance *big.Int
}

// Genesis describes the height-0 ledger state: the whole initial supply
// is minted to the admin account, plus optional extra allocations.
type Genesis struct {
	Admin         skillme.Address
	InitialSupply *big.Int
	Accounts      []Account
}

// Default returns the stock genesis: the full token supply on the
// first dev account.
func Default() *Genesis {
	return &Genesis{
		Admin:         DevAccounts()[0],
		InitialSupply: new(big.Int).Set(skillme.TokenInitialSupply),
	}
}

// Build mints the initial allocations into the given state and commits.
// Building twice is a no-op; the ledger supply tells whether genesis
// already happened.
func (g *Genesis) Build(st *state.State, l *ledger.Ledger) error {
	if l.TotalSupply().Sign() > 0 {
		log.Debug("genesis state already built, skipping")
		return nil
	}
	if g.InitialSupply == nil || g.InitialSupply.Sign() <= 0 {
		return errors.New("genesis: initial supply must be positive")
	}

	l.Mint(g.Admin, g.InitialSupply)
	for _, acc := range g.Accounts {
		if acc.Balance == nil || acc.Balance.Sign() < 0 {
			return errors.New("genesis: account balance must not be negative")
		}
		if _, err := l.Transfer(g.Admin, acc.Address, acc.Balance); err != nil {
			return errors.Wrap(err, "genesis: allocate account")
		}
	}
	if err := st.Err(); err != nil {
		return errors.Wrap(err, "genesis: state")
	}
	if err := st.Commit(); err != nil {
		return errors.Wrap(err, "genesis: commit")
	}
	log.Info("genesis state built",
		"token", skillme.TokenSymbol, "supply", g.InitialSupply, "admin", g.Admin)
	return nil
}
