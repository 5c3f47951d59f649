// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Goes to run and manage life-cycle of goroutines.
type Goes struct {
	wg   sync.WaitGroup
	done chan struct{}
}

// Go run f in a goroutine tracked by g.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait waits for all tracked goroutines done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel that is closed when all tracked goroutines are done.
func (g *Goes) Done() <-chan struct{} {
	if g.done == nil {
		g.done = make(chan struct{})
		go func() {
			g.wg.Wait()
			close(g.done)
		}()
	}
	return g.done
}
