// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/meterio/skillme/skillme"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type customAccount struct {
	Address string `yaml:"address"`
	Balance uint64 `yaml:"balance"`
}

type customGenesis struct {
	Admin         string          `yaml:"admin"`
	InitialSupply uint64          `yaml:"initialSupply"`
	Accounts      []customAccount `yaml:"accounts"`
}

// FromYAML loads a genesis override file:
//
//	admin: "0x..."
//	initialSupply: 1000000
//	accounts:
//	  - address: "0x..."
//	    balance: 250
func FromYAML(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var custom customGenesis
	if err := yaml.Unmarshal(raw, &custom); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}

	admin, err := skillme.ParseAddress(custom.Admin)
	if err != nil {
		return nil, errors.Wrap(err, "parse admin address")
	}
	g := &Genesis{
		Admin:         admin,
		InitialSupply: new(big.Int).SetUint64(custom.InitialSupply),
	}
	for _, acc := range custom.Accounts {
		addr, err := skillme.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrap(err, "parse account address")
		}
		g.Accounts = append(g.Accounts, Account{
			Address: addr,
			Balance: new(big.Int).SetUint64(acc.Balance),
		})
	}
	return g, nil
}
