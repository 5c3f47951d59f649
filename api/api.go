// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/skillme/api/auctions"
	"github.com/meterio/skillme/api/events"
	apiledger "github.com/meterio/skillme/api/ledger"
	"github.com/meterio/skillme/api/subscriptions"
	"github.com/meterio/skillme/auction"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/ledger"
	"github.com/meterio/skillme/logdb"
	"github.com/meterio/skillme/state"
	"github.com/meterio/skillme/tx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New return api router
func New(ch *chain.Chain, st *state.State, l *ledger.Ledger, factory *auction.Factory, logDB *logdb.LogDB, sink tx.Sink, allowedOrigins string) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	apiledger.New(l, st, ch, sink, factory).
		Mount(router, "/ledger")
	auctions.New(factory, ch).
		Mount(router, "/auctions")
	events.New(logDB).
		Mount(router, "/logs")
	subs := subscriptions.New(ch, logDB)
	subs.Mount(router, "/subscriptions")
	router.Path("/metrics").Handler(promhttp.Handler())

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type"}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
