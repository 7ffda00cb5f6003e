package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/service"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

var errWSToken = apperror.New(apperror.ErrCodeUnauthorized, "Token không hợp lệ hoặc đã hết hạn")

// WSHandler отвечает за установку WebSocket соединений админки.
type WSHandler struct {
	hub          *ws.Hub
	tokenManager *service.TokenManager
	upgrader     websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Origin проверяется по тому же списку, что и CORS.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &WSHandler{
		hub:          hub,
		tokenManager: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Handle обслуживает GET /api/admin/ws?token=...
// Браузер не умеет слать заголовок Authorization при апгрейде, поэтому токен в query.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	claims, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil {
		response.Error(c, errWSToken)
		return
	}
	adminID, err := claims.UserID()
	if err != nil || adminID <= 0 {
		response.Error(c, errWSToken)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Log.WithError(err).Debug("ws: upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.hub, adminID)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
