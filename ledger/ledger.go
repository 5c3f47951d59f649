// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/meterio/skillme/tx"
	"github.com/pkg/errors"
)

var log = slog.With("pkg", "ledger")

var (
	// ErrInsufficientBalance transfer or draw exceeds the source balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance delegated draw exceeds the granted allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrInvalidAmount amount is nil or negative.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Ledger is the fungible token. Balances live in the account state,
// allowances and supply bookkeeping under the ledger's own address.
// Mutations are serialized by a single lock so a delegated draw can
// never interleave with another movement from the same account.
type Ledger struct {
	addr  skillme.Address
	state *state.State
	lock  sync.Mutex
}

// New creates a ledger instance bound to the given state.
func New(addr skillme.Address, state *state.State) *Ledger {
	return &Ledger{addr: addr, state: state}
}

// Address returns the ledger bookkeeping address.
func (l *Ledger) Address() skillme.Address {
	return l.addr
}

// Name returns token name.
func (l *Ledger) Name() string { return skillme.TokenName }

// Symbol returns token symbol.
func (l *Ledger) Symbol() string { return skillme.TokenSymbol }

// Decimals returns token decimals.
func (l *Ledger) Decimals() uint8 { return skillme.TokenDecimals }

// TotalSupply returns the minted supply.
func (l *Ledger) TotalSupply() (supply *big.Int) {
	supply = &big.Int{}
	l.state.DecodeStorage(l.addr, skillme.KeyTotalSupply, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, supply)
	})
	return
}

// Mint adds amount to addr and to the total supply. Genesis only.
func (l *Ledger) Mint(addr skillme.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()

	supply := new(big.Int).Add(l.TotalSupply(), amount)
	l.state.EncodeStorage(l.addr, skillme.KeyTotalSupply, func() ([]byte, error) {
		return rlp.EncodeToBytes(supply)
	})
	l.state.AddBalance(addr, amount)
	log.Info("minted", "addr", addr, "amount", amount)
}

// BalanceOf returns the token balance of the given account.
func (l *Ledger) BalanceOf(addr skillme.Address) *big.Int {
	return l.state.GetBalance(addr)
}

// Transfer moves amount from sender to recipient.
// The whole call fails with no state change if the balance is not enough.
func (l *Ledger) Transfer(from, to skillme.Address, amount *big.Int) (*tx.Transfer, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	l.lock.Lock()
	defer l.lock.Unlock()

	if !l.state.SubBalance(from, amount) {
		return nil, ErrInsufficientBalance
	}
	l.state.AddBalance(to, amount)
	return &tx.Transfer{Sender: from, Recipient: to, Amount: new(big.Int).Set(amount)}, nil
}

// Approve grants spender the right to draw up to amount from owner.
func (l *Ledger) Approve(owner, spender skillme.Address, amount *big.Int) (*tx.Event, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	l.lock.Lock()
	defer l.lock.Unlock()

	l.setAllowance(owner, spender, amount)
	return &tx.Event{
		Name:         tx.EventApproval,
		Account:      owner,
		Counterparty: spender,
		Amount:       new(big.Int).Set(amount),
	}, nil
}

// Allowance returns the remaining allowance granted by owner to spender.
func (l *Ledger) Allowance(owner, spender skillme.Address) (allowance *big.Int) {
	allowance = &big.Int{}
	l.state.DecodeStorage(l.addr, allowanceKey(owner, spender), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, allowance)
	})
	return
}

// TransferFrom draws amount from `from` into `to`, on behalf of spender.
// Requires allowance(from, spender) >= amount and balance(from) >= amount;
// both are decremented atomically, or the whole call fails with no change.
func (l *Ledger) TransferFrom(spender, from, to skillme.Address, amount *big.Int) (*tx.Transfer, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	l.lock.Lock()
	defer l.lock.Unlock()

	allowance := l.Allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return nil, ErrInsufficientAllowance
	}
	if !l.state.SubBalance(from, amount) {
		return nil, ErrInsufficientBalance
	}
	l.setAllowance(from, spender, new(big.Int).Sub(allowance, amount))
	l.state.AddBalance(to, amount)
	return &tx.Transfer{Sender: from, Recipient: to, Amount: new(big.Int).Set(amount)}, nil
}

func (l *Ledger) setAllowance(owner, spender skillme.Address, amount *big.Int) {
	l.state.EncodeStorage(l.addr, allowanceKey(owner, spender), func() ([]byte, error) {
		if amount.Sign() == 0 {
			// wipe instead of storing zero
			return nil, nil
		}
		return rlp.EncodeToBytes(amount)
	})
}

func allowanceKey(owner, spender skillme.Address) skillme.Bytes32 {
	return skillme.Blake2b([]byte("allowance"), owner.Bytes(), spender.Bytes())
}
