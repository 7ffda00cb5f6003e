package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/binhminh-backend/internal/service"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

func TestWSHandler_RejectsMissingOrBadToken(t *testing.T) {
	tokens := service.NewTokenManager("ws-secret", time.Hour)
	r := gin.New()
	r.GET("/ws", NewWSHandler(ws.NewHub(), tokens, []string{"http://localhost:3000"}).Handle)

	w := perform(r, http.MethodGet, "/ws", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/ws?token=garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token không hợp lệ hoặc đã hết hạn", decodeBody(t, w)["message"])
}

func TestWSHandler_ChecksOrigin(t *testing.T) {
	h := NewWSHandler(ws.NewHub(), service.NewTokenManager("ws-secret", time.Hour), []string{"https://binhminh.vn/"})

	req, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://binhminh.vn")
	assert.True(t, h.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, h.upgrader.CheckOrigin(req))
}
