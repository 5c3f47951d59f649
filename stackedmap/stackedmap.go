// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

// MapGetter defines a function to get value by key from the underlying source.
type MapGetter func(key interface{}) (value interface{}, exist bool)

type journalEntry struct {
	key   interface{}
	value interface{}
}

type level struct {
	kvs     map[interface{}]interface{}
	journal []*journalEntry
}

func newLevel() *level {
	return &level{kvs: make(map[interface{}]interface{})}
}

// StackedMap maintains maps in a stack.
// Each level inherits key/value of the level below it.
// It acts as a map with save-restore/snapshot-revert manner.
type StackedMap struct {
	src    MapGetter
	levels []*level
}

// New create an instance of StackedMap, with src to get underlying values.
func New(src MapGetter) *StackedMap {
	return &StackedMap{src, []*level{newLevel()}}
}

// Depth returns depth of stack.
func (sm *StackedMap) Depth() int {
	return len(sm.levels)
}

// Push pushes a new level and returns its revision,
// to be passed to PopTo to discard levels pushed since.
func (sm *StackedMap) Push() int {
	rev := len(sm.levels)
	sm.levels = append(sm.levels, newLevel())
	return rev
}

// Pop pops the top level.
func (sm *StackedMap) Pop() {
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops levels until the stack depth equals the given revision.
func (sm *StackedMap) PopTo(rev int) {
	sm.levels = sm.levels[:rev]
}

// Reset drops all levels and their journals, leaving a single empty
// base level. Values already flushed to the source stay readable via src.
func (sm *StackedMap) Reset() {
	sm.levels = []*level{newLevel()}
}

// Get gets value for given key.
// The second return value indicates whether the key was found.
func (sm *StackedMap) Get(key interface{}) (interface{}, bool) {
	for i := len(sm.levels) - 1; i >= 0; i-- {
		if v, ok := sm.levels[i].kvs[key]; ok {
			return v, true
		}
	}
	return sm.src(key)
}

// Put sets value for the given key on the top level.
func (sm *StackedMap) Put(key, value interface{}) {
	top := sm.levels[len(sm.levels)-1]
	top.kvs[key] = value
	top.journal = append(top.journal, &journalEntry{key, value})
}

// Journal traverses journal entries of all levels in write order.
// The traversal stops when cb returns false.
func (sm *StackedMap) Journal(cb func(key, value interface{}) bool) {
	for _, l := range sm.levels {
		for _, e := range l.journal {
			if !cb(e.key, e.value) {
				return
			}
		}
	}
}
