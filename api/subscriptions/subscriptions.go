// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package subscriptions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/co"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/node"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 7) / 10
	writeTimeout = 10 * time.Second
)

var logger = log.WithContext("pkg", "subscriptions")

type Subscriptions struct {
	node     *node.Node
	upgrader *websocket.Upgrader
	done     chan struct{}
}

// New creates the websocket endpoints. Origins are checked against
// allowedOrigins, where "*" accepts any origin.
func New(n *node.Node, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		node: n,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

type eventMatcher struct {
	participant *cgfy.Address
	kinds       map[events.Kind]bool
}

func parseMatcher(req *http.Request) (*eventMatcher, error) {
	query := req.URL.Query()
	m := &eventMatcher{}
	if s := query.Get("participant"); s != "" {
		addr, err := cgfy.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "participant")
		}
		m.participant = &addr
	}
	for _, s := range query["kind"] {
		kind := events.Kind(s)
		if !kind.Valid() {
			return nil, errors.Errorf("kind: unknown kind %q", s)
		}
		if m.kinds == nil {
			m.kinds = make(map[events.Kind]bool)
		}
		m.kinds[kind] = true
	}
	return m, nil
}

func (m *eventMatcher) match(ev *events.Event) bool {
	if m.participant != nil && ev.Participant != *m.participant {
		return false
	}
	if m.kinds != nil && !m.kinds[ev.Kind] {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	matcher, err := parseMatcher(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	// subscribe before the handshake completes so no event after it is missed
	cursor := s.node.Subscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has responded already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	var goes co.Goes
	defer goes.Wait()
	defer conn.Close()

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	goes.GoCtx(ctx, cancel, func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
	})
	// reader detects the peer going away
	goes.GoCtx(ctx, cancel, func(context.Context) {
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	goes.GoCtx(ctx, cancel, func(ctx context.Context) {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	})

	err = s.pipe(ctx, conn, cursor, matcher)
	if errors.Is(err, co.ErrLagged) {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber lagged")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		return nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("subscription closed", "err", err)
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, cursor *co.Cursor[*events.Event], matcher *eventMatcher) error {
	for {
		ev, err := cursor.Next(ctx)
		if err != nil {
			return err
		}
		if !matcher.match(ev) {
			continue
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		if err := conn.WriteJSON(types.ConvertEvent(ev)); err != nil {
			return err
		}
	}
}

// Close ends all active subscriptions.
func (s *Subscriptions) Close() {
	close(s.done)
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
