// Package ws is the realtime transport: it upgrades HTTP requests, runs the
// handshake gate once per connection, and pumps events between the socket
// and the session mailbox.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// opTimeout backstops store-bound operations; the original design had
	// no operation-level timeout at all.
	opTimeout = 10 * time.Second
)

type WSHandler struct {
	logger    *slog.Logger
	auther    service.Auther
	messenger service.Messenger
	hub       registry.Hubber
	cfg       config.MessagingConfig
	upgrader  websocket.Upgrader
}

func NewWSHandler(
	logger *slog.Logger,
	auther service.Auther,
	messenger service.Messenger,
	hub registry.Hubber,
	cfg *config.Config,
) *WSHandler {
	return &WSHandler{
		logger:    logger,
		auther:    auther,
		messenger: messenger,
		hub:       hub,
		cfg:       cfg.Messaging,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool { return true }, // same-origin enforced by the fronting proxy
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claimedID, _ := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	claimedRole := r.URL.Query().Get("userRole")

	principal, err := h.auther.Authenticate(r.Context(), claimedID, claimedRole)
	if err != nil {
		// Fatal to this connection attempt only; the client must retry.
		if errors.Is(err, service.ErrUnknownIdentity) {
			http.Error(w, service.ClientMessage(err), http.StatusUnauthorized)
		} else {
			h.logger.Error("handshake lookup failed", "claimed_id", claimedID, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "err", err)
		return
	}

	sess := registry.NewSession(r.Context(), principal.User, h.cfg.MailboxSize)

	h.hub.Attach(sess)
	defer h.hub.Detach(sess.GetID())

	eligible := principal.Class == service.Eligible
	if eligible {
		h.hub.Register(sess)
		defer h.hub.Unregister(sess.GetUserID(), sess.GetID())
	}
	defer sess.Close()

	h.logger.Info("ws opened",
		"conn_id", sess.GetID(),
		"user_id", sess.GetUserID(),
		"class", principal.Class,
	)
	defer h.logger.Info("ws closed", "conn_id", sess.GetID(), "user_id", sess.GetUserID())

	sess.Send(event.NewConnected(sess.GetUserID(), sess.GetUserName()), h.cfg.SendTimeout)
	if eligible {
		// New connections need the presence snapshot even when their own
		// registration did not change the set.
		sess.Send(event.NewOnlineUsers(h.hub.ListOnline()), h.cfg.SendTimeout)
	}

	go h.writePump(conn, sess)
	h.readPump(conn, sess, eligible)
}

// readPump processes inbound frames one at a time; per-connection ordering
// of sends follows from this single loop.
func (h *WSHandler) readPump(conn *websocket.Conn, sess registry.Connector, eligible bool) {
	defer sess.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws read failed", "conn_id", sess.GetID(), "err", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			sess.Send(event.NewError(sess.GetUserID(), "malformed frame"), h.cfg.SendTimeout)
			continue
		}

		h.dispatch(sess, frame, eligible)
	}
}

// dispatch routes one inbound frame. Domain events from public or
// regular-user connections are rejected, never processed.
func (h *WSHandler) dispatch(sess registry.Connector, frame inboundFrame, eligible bool) {
	if !eligible {
		sess.Send(event.NewError(sess.GetUserID(), "messaging requires an admin or coordinator account"), h.cfg.SendTimeout)
		return
	}

	actorID := sess.GetUserID()

	switch frame.Event {
	case frameUpdatePage:
		var p updatePagePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			sess.Send(event.NewError(actorID, "malformed frame"), h.cfg.SendTimeout)
			return
		}
		h.messenger.UpdatePage(actorID, p.Page)

	case frameSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			sess.Send(event.NewError(actorID, "malformed frame"), h.cfg.SendTimeout)
			return
		}
		// Detached from the request context: the send must finish even
		// if the socket drops right after.
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if _, err := h.messenger.Send(ctx, actorID, p.ReceiverID, p.Content); err != nil {
			h.surface(sess, "send_message", err)
		}

	case frameMarkAsRead:
		var p markAsReadPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			sess.Send(event.NewError(actorID, "malformed frame"), h.cfg.SendTimeout)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := h.messenger.MarkAsRead(ctx, actorID, p.MessageID); err != nil {
			h.surface(sess, "mark_as_read", err)
		}

	case frameTyping:
		var p typingPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		h.messenger.Typing(actorID, sess.GetUserName(), p.ReceiverID)

	case frameStopTyping:
		var p typingPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return
		}
		h.messenger.StopTyping(actorID, p.ReceiverID)

	default:
		sess.Send(event.NewError(actorID, "unknown event: "+frame.Event), h.cfg.SendTimeout)
	}
}

// surface reports a failed action to the originating connection and keeps
// store internals in the server log only.
func (h *WSHandler) surface(sess registry.Connector, op string, err error) {
	var ce *service.ClientError
	if !errors.As(err, &ce) {
		h.logger.Error("operation failed", "op", op, "user_id", sess.GetUserID(), "err", err)
	}
	sess.Send(event.NewError(sess.GetUserID(), service.ClientMessage(err)), h.cfg.SendTimeout)
}

func (h *WSHandler) writePump(conn *websocket.Conn, sess registry.Connector) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-sess.Done():
			// Flush whatever is already queued (e.g. the disconnected
			// notice written just before a replacement) then close.
			h.drain(conn, sess)
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case ev := <-sess.Recv():
			if !h.writeEvent(conn, sess, ev) {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}
		}
	}
}

func (h *WSHandler) drain(conn *websocket.Conn, sess registry.Connector) {
	for {
		select {
		case ev := <-sess.Recv():
			if !h.writeEvent(conn, sess, ev) {
				return
			}
		default:
			return
		}
	}
}

func (h *WSHandler) writeEvent(conn *websocket.Conn, sess registry.Connector, ev event.Eventer) bool {
	data, err := marshalEvent(ev)
	if err != nil {
		h.logger.Error("event marshal failed", "event", ev.GetName(), "err", err)
		return true
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		sess.Close()
		return false
	}
	return true
}
