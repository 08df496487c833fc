// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams ledger events over websocket.
package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/api/restutil"
	"github.com/archon-network/archon/ledger"
	"github.com/archon-network/archon/log"
)

const (
	eventQueueSize = 512
	pingPeriod     = 2 * time.Second
	writeTimeout   = 10 * time.Second
	pongWait       = 3 * pingPeriod
)

var logger = log.WithContext("pkg", "subscriptions")

type Subscriptions struct {
	led      *ledger.Ledger
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates the subscription endpoint. Connections from the allowed
// origins are accepted; an empty list accepts same-origin requests only.
func New(led *ledger.Ledger, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		led:  led,
		done: make(chan struct{}),
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	select {
	case <-s.done:
		return restutil.HTTPError(errors.New("service shutting down"), http.StatusServiceUnavailable)
	default:
	}

	typeFilter := ledger.EventType(req.URL.Query().Get("type"))

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	s.wg.Add(1)
	defer s.wg.Done()

	events := make(chan ledger.Event, eventQueueSize)
	sub := s.led.SubscribeEvents(events)
	defer sub.Unsubscribe()

	// drain control frames and detect the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-sub.Err():
			return err
		case ev := <-events:
			if typeFilter != "" && ev.Type != typeFilter {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(&ev); err != nil {
				logger.Debug("failed to write event", "err", err)
				return nil
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// Close signals every open subscription to terminate and waits for them.
func (s *Subscriptions) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/events").
		Methods(http.MethodGet).
		Name("GET /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
