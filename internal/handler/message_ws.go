package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zilconnect/config"
	"zilconnect/internal/auth"
	"zilconnect/internal/domain"
	"zilconnect/internal/repository"
	"zilconnect/internal/service"
	"zilconnect/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var messageUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeMessageWS upgrades to WebSocket for live messaging; query: token,
// connection_id. The caller must be a party of an accepted connection.
// Inbound "message" frames go through the same send path as REST, so the
// messaging gate applies either way.
func UpgradeMessageWS(cfg *config.JWTConfig, hub *ws.Hub, connRepo *repository.ConnectionRepository, messageSvc *service.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		connIDStr := c.Query("connection_id")
		if token == "" || connIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and connection_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		var connectionID uint
		if _, err := fmt.Sscanf(connIDStr, "%d", &connectionID); err != nil || connectionID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid connection_id"})
			return
		}
		connection, err := connRepo.GetByID(connectionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
			return
		}
		if connection.Status != domain.ConnectionStatusAccepted {
			c.JSON(http.StatusForbidden, gin.H{"error": "connection not accepted"})
			return
		}
		if !connection.IsParty(claims.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not part of this connection"})
			return
		}

		conn, err := messageUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &ws.Client{
			UserID: claims.UserID,
			Send:   make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()

		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		go func() {
			ticker := time.NewTicker(wsPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		receiverID := connection.OtherParty(claims.UserID)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var frame struct {
				Type    string `json:"type"`
				Content string `json:"content"`
			}
			if json.Unmarshal(raw, &frame) != nil || frame.Type != "message" {
				continue
			}
			msg, err := messageSvc.Send(c.Request.Context(), claims.UserID, connectionID, receiverID, frame.Content)
			if err != nil {
				data, _ := json.Marshal(gin.H{"type": "error", "error": err.Error()})
				select {
				case client.Send <- data:
				default:
				}
				continue
			}
			hub.BroadcastToUser(receiverID, gin.H{
				"type":       "message",
				"id":         msg.ID,
				"connection": msg.ConnectionID,
				"sender":     msg.SenderID,
				"content":    msg.Content,
				"created":    msg.CreatedAt,
			})
		}
	}
}
