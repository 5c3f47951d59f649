// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/meterio/skillme/stackedmap"
	"github.com/stretchr/testify/assert"
)

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["base"] = "from src"

	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		v, ok := src[key.(string)]
		return v, ok
	})

	v, ok := sm.Get("base")
	assert.True(t, ok)
	assert.Equal(t, "from src", v)

	rev := sm.Push()
	sm.Put("k1", "v1")
	sm.Put("base", "shadowed")

	v, ok = sm.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	v, _ = sm.Get("base")
	assert.Equal(t, "shadowed", v)

	sm.PopTo(rev)
	_, ok = sm.Get("k1")
	assert.False(t, ok)
	v, _ = sm.Get("base")
	assert.Equal(t, "from src", v)
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		return nil, false
	})

	sm.Push()
	sm.Put("k1", "v1")
	sm.Push()
	sm.Put("k1", "v2")
	sm.Put("k2", "v3")

	journal := make(map[string]string)
	sm.Journal(func(key, value interface{}) bool {
		journal[key.(string)] = value.(string)
		return true
	})

	// the journal walks bottom-up, later writes win
	assert.Equal(t, map[string]string{"k1": "v2", "k2": "v3"}, journal)
}

func TestStackedMapPop(t *testing.T) {
	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		return nil, false
	})
	assert.Equal(t, 1, sm.Depth())
	sm.Push()
	sm.Push()
	assert.Equal(t, 3, sm.Depth())
	sm.Pop()
	assert.Equal(t, 2, sm.Depth())
}

func TestStackedMapReset(t *testing.T) {
	src := make(map[string]string)
	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		v, ok := src[key.(string)]
		return v, ok
	})

	sm.Put("k1", "v1")
	sm.Push()
	sm.Put("k2", "v2")
	assert.Equal(t, 2, sm.Depth())

	// pretend the journal was flushed to src
	src["k1"] = "v1"
	src["k2"] = "v2"
	sm.Reset()

	assert.Equal(t, 1, sm.Depth())
	entries := 0
	sm.Journal(func(key, value interface{}) bool {
		entries++
		return true
	})
	assert.Equal(t, 0, entries)

	// flushed values are still readable through src
	v, ok := sm.Get("k2")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}
