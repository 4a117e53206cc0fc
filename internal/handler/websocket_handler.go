package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// bearerSubprotocol lets browsers pass the token as Sec-WebSocket-Protocol: bearer, <token>
const bearerSubprotocol = "bearer"

// WebSocketHandler upgrades authenticated requests into event streams and answers socket commands
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      middleware.TokenValidator
	ledger         *service.LedgerService
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. With a nil ledger the sockets only stream events.
func NewWebSocketHandler(hub *websocket.Hub, validator middleware.TokenValidator, ledger *service.LedgerService, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		ledger:         ledger,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.allowedOrigins[origin] = true
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Subprotocols:    []string{bearerSubprotocol},
		CheckOrigin:     h.checkOrigin,
	}
	if ledger != nil {
		hub.SetCommandHandler(h.handleCommand)
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// non-browser clients send no Origin
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// socketToken reads the bearer token from ?token=, the Authorization header or the bearer subprotocol
func socketToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get(echo.HeaderAuthorization); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	protocols := ws.Subprotocols(r)
	for i := 0; i+1 < len(protocols); i++ {
		if protocols[i] == bearerSubprotocol {
			return protocols[i+1]
		}
	}
	return ""
}

// HandleWS handles GET /ws
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := socketToken(c.Request())
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	subject, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil || subject == "" {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		log.Warn().Err(err).Str("subject", subject).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, subject, h.hub)
	h.hub.Register(client)
	log.Info().
		Str("subject", subject).
		Str("client_id", client.ID()).
		Int("connections", h.hub.ClientCount(subject)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// handleCommand answers flush and status. A status for a user without an open session carries a null payload.
func (h *WebSocketHandler) handleCommand(subject string, cmd websocket.Command) (*websocket.Event, error) {
	var evt websocket.Event
	switch cmd.Type {
	case websocket.CommandFlush:
		evt = websocket.LedgerFlushed(h.ledger.Flush(domain.Credential{Subject: subject}))
	case websocket.CommandStatus:
		st, _ := h.ledger.OpenStatus(subject)
		evt = websocket.LedgerStatus(st)
	default:
		return nil, websocket.ErrUnknownCommand
	}
	return &evt, nil
}
