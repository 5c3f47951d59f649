// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/meterio/skillme/co"
	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	defer leaktest.Check(t)()

	var goes co.Goes
	var count int32
	for i := 0; i < 10; i++ {
		goes.Go(func() {
			atomic.AddInt32(&count, 1)
		})
	}
	goes.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestGoesDone(t *testing.T) {
	defer leaktest.Check(t)()

	var goes co.Goes
	goes.Go(func() {})
	select {
	case <-goes.Done():
	}
}

func TestSignalBroadcast(t *testing.T) {
	defer leaktest.Check(t)()

	var sig co.Signal
	w1 := sig.NewWaiter()
	w2 := sig.NewWaiter()
	sig.Broadcast()

	<-w1.C()
	<-w2.C()
}
