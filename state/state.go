// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/skillme/kv"
	"github.com/meterio/skillme/skillme"
	"github.com/meterio/skillme/stackedmap"
)

const readCacheLimit = 2048

type (
	accountKey skillme.Address
	storageKey struct {
		addr skillme.Address
		key  skillme.Bytes32
	}
)

// State manages accounts and raw storage on top of a kv store.
// All mutations are journaled until Commit, so a failed operation
// can be rolled back with checkpoint/revert and nothing partial
// ever reaches the kv.
type State struct {
	kv        kv.GetPutter
	sm        *stackedmap.StackedMap
	readCache *lru.Cache // raw values known to be committed in kv
	err       error
	setError  func(err error)
	lock      sync.RWMutex
	txLock    sync.Mutex // serializes Transact sections
}

// New create a state object backed by the given kv.
func New(kv kv.GetPutter) *State {
	readCache, _ := lru.New(readCacheLimit)
	state := State{kv: kv, readCache: readCache}
	state.setError = func(err error) {
		if state.err == nil {
			state.err = err
		}
	}
	state.sm = stackedmap.New(func(key interface{}) (value interface{}, exist bool) {
		return state.srcGetter(key)
	})
	return &state
}

// implements stackedmap.MapGetter
func (s *State) srcGetter(key interface{}) (value interface{}, exist bool) {
	switch k := key.(type) {
	case accountKey:
		raw := s.readRaw(accountStoreKey(skillme.Address(k)))
		if len(raw) == 0 {
			return emptyAccount(), true
		}
		var acc Account
		if err := rlp.DecodeBytes(raw, &acc); err != nil {
			s.setError(err)
			return emptyAccount(), true
		}
		return &acc, true
	case storageKey:
		raw := s.readRaw(storageStoreKey(k.addr, k.key))
		return rlp.RawValue(raw), true
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) readRaw(storeKey []byte) []byte {
	if v, ok := s.readCache.Get(string(storeKey)); ok {
		return v.([]byte)
	}
	raw, err := s.kv.Get(storeKey)
	if err != nil {
		if !s.kv.IsNotFound(err) {
			s.setError(err)
		}
		return nil
	}
	s.readCache.Add(string(storeKey), raw)
	return raw
}

func (s *State) getAccount(addr skillme.Address) *Account {
	v, _ := s.sm.Get(accountKey(addr))
	return v.(*Account)
}

func (s *State) getAccountCopy(addr skillme.Address) Account {
	return *s.getAccount(addr)
}

func (s *State) updateAccount(addr skillme.Address, acc *Account) {
	s.sm.Put(accountKey(addr), acc)
}

// Err returns first occurred error.
func (s *State) Err() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.err
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr skillme.Address) *big.Int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.getAccount(addr).Balance
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr skillme.Address, balance *big.Int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.setBalance(addr, balance)
}

func (s *State) setBalance(addr skillme.Address, balance *big.Int) {
	cpy := s.getAccountCopy(addr)
	cpy.Balance = balance
	s.updateAccount(addr, &cpy)
}

// AddBalance adds amount to the balance of the given address.
func (s *State) AddBalance(addr skillme.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	balance := s.getAccount(addr).Balance
	s.setBalance(addr, new(big.Int).Add(balance, amount))
}

// SubBalance subtracts amount from the balance of the given address.
// False is returned if the balance is not enough.
func (s *State) SubBalance(addr skillme.Address, amount *big.Int) bool {
	if amount.Sign() == 0 {
		return true
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	balance := s.getAccount(addr).Balance
	if balance.Cmp(amount) < 0 {
		return false
	}
	s.setBalance(addr, new(big.Int).Sub(balance, amount))
	return true
}

// Exists returns whether an account exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr skillme.Address) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return !s.getAccount(addr).IsEmpty()
}

// GetRawStorage returns storage value in rlp raw for the given address and key.
func (s *State) GetRawStorage(addr skillme.Address, key skillme.Bytes32) rlp.RawValue {
	s.lock.RLock()
	defer s.lock.RUnlock()
	data, _ := s.sm.Get(storageKey{addr, key})
	return data.(rlp.RawValue)
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr skillme.Address, key skillme.Bytes32, raw rlp.RawValue) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr skillme.Address, key skillme.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.fail(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr skillme.Address, key skillme.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.fail(err)
	}
}

func (s *State) fail(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.setError(err)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sm.PopTo(revision)
}

// Transact runs fn as a single atomic unit against the journal.
// A checkpoint is taken up front; fn's writes are committed as a whole,
// or rolled back entirely if fn or the state reports an error.
// Transactions are serialized, so one caller's revert can never discard
// journal levels another caller is still writing into.
func (s *State) Transact(fn func() error) error {
	s.txLock.Lock()
	defer s.txLock.Unlock()

	rev := s.NewCheckpoint()
	if err := fn(); err != nil {
		s.RevertTo(rev)
		return err
	}
	if err := s.Err(); err != nil {
		s.RevertTo(rev)
		return err
	}
	return s.Commit()
}

// Commit flushes journaled changes into the kv store.
func (s *State) Commit() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return s.err
	}

	// only the latest value per key matters
	type pending struct {
		storeKey []byte
		raw      []byte
	}
	changes := make(map[interface{}]*pending)
	s.sm.Journal(func(key, value interface{}) bool {
		switch k := key.(type) {
		case accountKey:
			acc := value.(*Account)
			var raw []byte
			if !acc.IsEmpty() {
				encoded, err := rlp.EncodeToBytes(acc)
				if err != nil {
					s.setError(err)
					return false
				}
				raw = encoded
			}
			changes[key] = &pending{accountStoreKey(skillme.Address(k)), raw}
		case storageKey:
			changes[key] = &pending{storageStoreKey(k.addr, k.key), value.(rlp.RawValue)}
		}
		return true
	})
	if s.err != nil {
		return s.err
	}

	for _, p := range changes {
		if len(p.raw) == 0 {
			if err := s.kv.Delete(p.storeKey); err != nil {
				return err
			}
			s.readCache.Remove(string(p.storeKey))
			continue
		}
		if err := s.kv.Put(p.storeKey, p.raw); err != nil {
			return err
		}
		s.readCache.Add(string(p.storeKey), p.raw)
	}

	// everything flushed; drop the journal so it is not replayed
	// and the level stack does not grow over the process lifetime
	s.sm.Reset()
	return nil
}
