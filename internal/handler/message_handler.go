package handler

import (
	"net/http"
	"strconv"

	"zilconnect/internal/middleware"
	"zilconnect/internal/service"
	"zilconnect/internal/ws"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc *service.MessageService
	hub        *ws.Hub
}

func NewMessageHandler(messageSvc *service.MessageService, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc, hub: hub}
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Connection uint   `json:"connection" binding:"required"`
		Receiver   uint   `json:"receiver" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.messageSvc.Send(c.Request.Context(), userID, req.Connection, req.Receiver, req.Content)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	// Push to the receiver if they hold a live socket.
	h.hub.BroadcastToUser(req.Receiver, gin.H{
		"type":       "message",
		"id":         msg.ID,
		"connection": msg.ConnectionID,
		"sender":     msg.SenderID,
		"content":    msg.Content,
		"created":    msg.CreatedAt,
	})
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	connectionID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.messageSvc.List(userID, uint(connectionID), limit, offset)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

func (h *MessageHandler) Conversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	c.JSON(http.StatusOK, gin.H{"conversations": h.messageSvc.Conversations(userID, limit, offset)})
}

func (h *MessageHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	connectionID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	n, err := h.messageSvc.MarkAllRead(c.Request.Context(), userID, uint(connectionID))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

func (h *MessageHandler) Search(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	c.JSON(http.StatusOK, gin.H{"messages": h.messageSvc.Search(userID, c.Query("q"), limit)})
}

func (h *MessageHandler) UnreadTotal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	c.JSON(http.StatusOK, gin.H{"unread": h.messageSvc.UnreadTotal(c.Request.Context(), userID)})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.messageSvc.Delete(userID, uint(id)); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
