// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"log/slog"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/skillme/api/utils"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/state"
	"github.com/meterio/skillme/tx"
	"github.com/pkg/errors"
)

var log = slog.With("pkg", "api/ledger")

var errRestrictedAccount = errors.New("account moves funds only through its auction")

// CustodyGuard tells which accounts are auction custody accounts.
// Their escrow may only move through the owning auction, so the plain
// transfer endpoint refuses to touch them.
type CustodyGuard interface {
	IsCustody(addr skillme.Address) bool
}

// Ledger exposes the token over HTTP.
type Ledger struct {
	ledger *ledger.Ledger
	st     *state.State
	chain  *chain.Chain
	sink   tx.Sink
	guard  CustodyGuard
}

// New creates the ledger api. guard may be nil.
func New(l *ledger.Ledger, st *state.State, ch *chain.Chain, sink tx.Sink, guard CustodyGuard) *Ledger {
	return &Ledger{ledger: l, st: st, chain: ch, sink: sink, guard: guard}
}

// restricted reports whether addr must not appear in a plain transfer:
// bookkeeping accounts and auction custody accounts.
func (lg *Ledger) restricted(addr skillme.Address) bool {
	if addr == skillme.LedgerAddr || addr == skillme.AuctionFactoryAddr {
		return true
	}
	return lg.guard != nil && lg.guard.IsCustody(addr)
}

func (lg *Ledger) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, &TokenInfo{
		Name:        lg.ledger.Name(),
		Symbol:      lg.ledger.Symbol(),
		Decimals:    lg.ledger.Decimals(),
		TotalSupply: lg.ledger.TotalSupply().String(),
	})
}

func (lg *Ledger) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := skillme.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, &Balance{
		Address: addr,
		Balance: lg.ledger.BalanceOf(addr).String(),
	})
}

func (lg *Ledger) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := skillme.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(err)
	}
	spender, err := skillme.ParseAddress(mux.Vars(req)["spender"])
	if err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, &Allowance{
		Owner:     owner,
		Spender:   spender,
		Remaining: lg.ledger.Allowance(owner, spender).String(),
	})
}

func (lg *Ledger) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}

	if lg.restricted(body.From) || lg.restricted(body.To) {
		return utils.Forbidden(errRestrictedAccount)
	}

	var transfer *tx.Transfer
	if err := lg.st.Transact(func() error {
		t, err := lg.ledger.Transfer(body.From, body.To, new(big.Int).SetUint64(body.Amount))
		if err != nil {
			return err
		}
		transfer = t
		return nil
	}); err != nil {
		return utils.Forbidden(err)
	}
	if lg.sink != nil {
		if err := lg.sink.LogTransfer(lg.chain.BestNumber(), transfer); err != nil {
			log.Warn("log transfer failed", "err", err)
		}
	}
	return utils.WriteJSON(w, utils.M{"success": true})
}

func (lg *Ledger) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApprovalRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}

	var event *tx.Event
	if err := lg.st.Transact(func() error {
		e, err := lg.ledger.Approve(body.Owner, body.Spender, new(big.Int).SetUint64(body.Amount))
		if err != nil {
			return err
		}
		event = e
		return nil
	}); err != nil {
		return utils.Forbidden(err)
	}
	if lg.sink != nil {
		if err := lg.sink.LogEvent(lg.chain.BestNumber(), event); err != nil {
			log.Warn("log event failed", "err", err)
		}
	}
	return utils.WriteJSON(w, utils.M{"success": true})
}

// Mount mounts the ledger endpoints to the given router.
func (lg *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/token").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(lg.handleGetToken))
	sub.Path("/accounts/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(lg.handleGetBalance))
	sub.Path("/accounts/{owner}/allowances/{spender}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(lg.handleGetAllowance))
	sub.Path("/transfers").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(lg.handleTransfer))
	sub.Path("/approvals").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(lg.handleApprove))
}
