// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Signal a rendezvous point for goroutines waiting for or announcing the
// occurrence of an event.
type Signal struct {
	l       sync.Mutex
	waiters []chan struct{}
}

// Broadcast wakes all goroutines waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()
	for _, w := range s.waiters {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// NewWaiter create a waiter for event.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	defer s.l.Unlock()
	ch := make(chan struct{}, 1)
	s.waiters = append(s.waiters, ch)
	return Waiter{ch}
}

// Waiter provides channel to wait for.
type Waiter struct {
	ch chan struct{}
}

// C returns the channel for waiting.
func (w Waiter) C() <-chan struct{} {
	return w.ch
}
