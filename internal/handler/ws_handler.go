package handler

import (
	"net/http"

	"boardshoot-server/internal/middleware"
	"boardshoot-server/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	resolver PrincipalResolver
	upgrader ws.Upgrader
	logger   zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, resolver PrincipalResolver, readBuffer, writeBuffer int, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:  manager,
		resolver: resolver,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request. The token comes from the
// Authorization header or the token query parameter.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolver.Resolve(r.Context(), middleware.GetAuthentication(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(uuid.New().String(), userID, conn, h.manager)
	if !h.manager.Attach(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
