// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/prometheus/client_golang/prometheus"

var (
	auctionsCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auctions_created_total",
		Help: "Number of auctions created by the factory",
	})
	bidsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bids_accepted_total",
		Help: "Number of accepted bids across all auctions",
	})
	withdrawalsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "withdrawals_total",
		Help: "Number of completed fund withdrawals",
	})
)
