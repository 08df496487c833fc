// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/ledger"
)

// EventWrapper carries one streamed ledger event or the error that
// terminated the stream.
type EventWrapper struct {
	Data  *ledger.Event
	Error error
}

// SubscribeEvents streams ledger events over a websocket. eventType
// filters by event type when non-empty. The returned channel closes
// when the connection drops, after delivering the terminating error.
func (c *Client) SubscribeEvents(eventType ledger.EventType) (<-chan EventWrapper, error) {
	scheme := "ws"
	host := c.url
	switch {
	case strings.HasPrefix(host, "https://"):
		scheme = "wss"
		host = strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = strings.TrimPrefix(host, "http://")
	default:
		return nil, errors.New("invalid url")
	}

	u := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   "/subscriptions/events",
	}
	if eventType != "" {
		u.RawQuery = "type=" + url.QueryEscape(string(eventType))
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to connect")
	}

	eventChan := make(chan EventWrapper)
	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var ev ledger.Event
			if err := conn.ReadJSON(&ev); err != nil {
				eventChan <- EventWrapper{Error: err}
				return
			}
			eventChan <- EventWrapper{Data: &ev}
		}
	}()
	return eventChan, nil
}
