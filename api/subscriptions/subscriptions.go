// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/skillme/api/utils"
	"github.com/meterio/skillme/chain"
	"github.com/meterio/skillme/logdb"
)

var log = slog.With("pkg", "api/subscriptions")

// Subscriptions streams new records to websocket clients.
// A client receives every event logged at heights after its position.
type Subscriptions struct {
	chain *chain.Chain
	db    *logdb.LogDB

	upgrader websocket.Upgrader
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// New creates the subscriptions api.
func New(ch *chain.Chain, db *logdb.LogDB) *Subscriptions {
	return &Subscriptions{
		chain: ch,
		db:    db,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
}

// Close stops all running subscriptions.
func (s *Subscriptions) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	position := s.chain.BestNumber()
	if posStr := req.URL.Query().Get("position"); posStr != "" {
		pos, err := strconv.ParseUint(posStr, 10, 32)
		if err != nil {
			return utils.BadRequest(err)
		}
		position = uint32(pos)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}

	subID := uuid.New().String()
	log.Debug("subscription opened", "id", subID, "position", position)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer conn.Close()
		s.pump(conn, subID, position)
	}()
	return nil
}

func (s *Subscriptions) pump(conn *websocket.Conn, subID string, position uint32) {
	closed := make(chan struct{})
	go func() {
		// drain client messages to detect close
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := s.chain.NewTicker()
	for {
		select {
		case <-s.done:
			return
		case <-closed:
			log.Debug("subscription closed by client", "id", subID)
			return
		case <-ticker.C():
			best := s.chain.BestNumber()
			if best <= position {
				continue
			}
			records, err := s.db.FilterEvents(context.Background(), &logdb.EventFilter{
				Range: &logdb.Range{From: position, To: best - 1},
			})
			if err != nil {
				log.Warn("subscription read failed", "id", subID, "err", err)
				return
			}
			for _, rec := range records {
				if err := conn.WriteJSON(convertEvent(rec)); err != nil {
					log.Debug("subscription write failed", "id", subID, "err", err)
					return
				}
			}
			position = best
		}
	}
}

// Mount mounts the subscription endpoints to the given router.
func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/events").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
