// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/skillme/api/utils"
	"github.com/meterio/skillme/auction"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/skillme"
)

// Auctions exposes the auction factory and its instances over HTTP.
type Auctions struct {
	factory *auction.Factory
	chain   *chain.Chain
}

// New creates the auctions api.
func New(factory *auction.Factory, ch *chain.Chain) *Auctions {
	return &Auctions{factory: factory, chain: ch}
}

func (at *Auctions) resolve(req *http.Request) (*auction.Auction, error) {
	id, err := skillme.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return nil, utils.BadRequest(err)
	}
	a, err := at.factory.Get(id)
	if err != nil {
		return nil, utils.NotFound(err)
	}
	return a, nil
}

func (at *Auctions) handleList(w http.ResponseWriter, req *http.Request) error {
	bestNum := at.chain.BestNumber()
	list := make([]*Auction, 0)
	for _, a := range at.factory.List() {
		list = append(list, convertAuction(a, bestNum))
	}
	return utils.WriteJSON(w, list)
}

func (at *Auctions) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body CreateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	a, err := at.factory.CreateAuction(body.Owner, body.StartHeight, body.EndHeight, body.Sealed)
	if err != nil {
		if err == auction.ErrInvalidPeriod {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertAuction(a, at.chain.BestNumber()))
}

func (at *Auctions) handleGet(w http.ResponseWriter, req *http.Request) error {
	a, err := at.resolve(req)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertAuction(a, at.chain.BestNumber()))
}

func (at *Auctions) handleBid(w http.ResponseWriter, req *http.Request) error {
	a, err := at.resolve(req)
	if err != nil {
		return err
	}
	var body BidRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	if err := a.PlaceBid(body.Bidder, new(big.Int).SetUint64(body.Amount)); err != nil {
		return utils.Forbidden(err)
	}
	return utils.WriteJSON(w, utils.M{"success": true})
}

func (at *Auctions) handleGetBidderFunds(w http.ResponseWriter, req *http.Request) error {
	a, err := at.resolve(req)
	if err != nil {
		return err
	}
	account, err := skillme.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(err)
	}
	amount, err := a.GetBidderFunds(account)
	if err != nil {
		return utils.Forbidden(err)
	}
	return utils.WriteJSON(w, &BidderFunds{Account: account, Amount: amount.String()})
}

func (at *Auctions) handleGetHighestBidder(w http.ResponseWriter, req *http.Request) error {
	a, err := at.resolve(req)
	if err != nil {
		return err
	}
	account, amount, err := a.GetHighestBidderDetails()
	if err != nil {
		return utils.Forbidden(err)
	}
	return utils.WriteJSON(w, &HighestBidder{Account: account, Amount: amount.String()})
}

func (at *Auctions) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	a, err := at.resolve(req)
	if err != nil {
		return err
	}
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	amount, err := a.Withdraw(body.Account)
	if err != nil {
		return utils.Forbidden(err)
	}
	return utils.WriteJSON(w, &Withdrawal{Account: body.Account, Amount: amount.String()})
}

// Mount mounts the auction endpoints to the given router.
func (at *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleList))
	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleCreate))
	sub.Path("/{id}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGet))
	sub.Path("/{id}/bids").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleBid))
	sub.Path("/{id}/bidders/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetBidderFunds))
	sub.Path("/{id}/highest").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetHighestBidder))
	sub.Path("/{id}/withdrawals").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleWithdraw))
}
