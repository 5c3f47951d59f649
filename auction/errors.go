// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/pkg/errors"

var (
	// ErrInvalidPeriod creation with non-increasing height bounds.
	ErrInvalidPeriod = errors.New("end height must be greater than start height")

	// ErrAuctionClosed bid arrived at or after the end height.
	ErrAuctionClosed = errors.New("auction already closed")

	// ErrAuctionNotClosed withdraw attempted before the end height.
	ErrAuctionNotClosed = errors.New("auction not closed yet")

	// ErrSealedAuction bid details queried on a sealed auction.
	// This is a hard rejection; a sealed auction never discloses funds or
	// a highest bidder, not even as a zero value.
	ErrSealedAuction = errors.New("sealed auction: bid details are not visible")

	// ErrUnknownAuction the id resolves to no auction created by this factory.
	ErrUnknownAuction = errors.New("unknown auction")
)
