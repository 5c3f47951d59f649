// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/meterio/skillme/api/utils"
	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/skillme"
)

const defaultLimit = 100

// Events exposes the record log over HTTP.
type Events struct {
	db *logdb.LogDB
}

// New creates the events api.
func New(db *logdb.LogDB) *Events {
	return &Events{db: db}
}

func parseRange(req *http.Request) (*logdb.Range, error) {
	fromStr := req.URL.Query().Get("from")
	toStr := req.URL.Query().Get("to")
	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	r := &logdb.Range{To: ^uint32(0)}
	if fromStr != "" {
		from, err := strconv.ParseUint(fromStr, 10, 32)
		if err != nil {
			return nil, err
		}
		r.From = uint32(from)
	}
	if toStr != "" {
		to, err := strconv.ParseUint(toStr, 10, 32)
		if err != nil {
			return nil, err
		}
		r.To = uint32(to)
	}
	return r, nil
}

func parseOptions(req *http.Request) (*logdb.Options, error) {
	opts := &logdb.Options{Limit: defaultLimit}
	if limitStr := req.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.ParseUint(limitStr, 10, 64)
		if err != nil {
			return nil, err
		}
		opts.Limit = limit
	}
	if offsetStr := req.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.ParseUint(offsetStr, 10, 64)
		if err != nil {
			return nil, err
		}
		opts.Offset = offset
	}
	return opts, nil
}

func (ev *Events) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	filter := &logdb.EventFilter{Name: req.URL.Query().Get("name")}
	if auctionStr := req.URL.Query().Get("auction"); auctionStr != "" {
		id, err := skillme.ParseBytes32(auctionStr)
		if err != nil {
			return utils.BadRequest(err)
		}
		filter.Auction = &id
	}
	var err error
	if filter.Range, err = parseRange(req); err != nil {
		return utils.BadRequest(err)
	}
	if filter.Options, err = parseOptions(req); err != nil {
		return utils.BadRequest(err)
	}

	records, err := ev.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertEvents(records))
}

func (ev *Events) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	filter := &logdb.TransferFilter{}
	if addrStr := req.URL.Query().Get("address"); addrStr != "" {
		addr, err := skillme.ParseAddress(addrStr)
		if err != nil {
			return utils.BadRequest(err)
		}
		filter.Address = &addr
	}
	var err error
	if filter.Range, err = parseRange(req); err != nil {
		return utils.BadRequest(err)
	}
	if filter.Options, err = parseOptions(req); err != nil {
		return utils.BadRequest(err)
	}

	records, err := ev.db.FilterTransfers(req.Context(), filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertTransfers(records))
}

// Mount mounts the record log endpoints to the given router.
func (ev *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/events").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(ev.handleFilterEvents))
	sub.Path("/transfers").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(ev.handleFilterTransfers))
}
