package handler

import (
	"net/http"
	"strconv"

	"zilconnect/internal/middleware"
	"zilconnect/internal/service"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connSvc *service.ConnectionService
}

func NewConnectionHandler(connSvc *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connSvc: connSvc}
}

func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		UserTo     uint   `json:"user_to" binding:"required"`
		BusinessTo uint   `json:"business_to"`
		Message    string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, err := h.connSvc.SendRequest(c.Request.Context(), userID, req.UserTo, req.BusinessTo, req.Message)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *ConnectionHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	conn, err := h.connSvc.Accept(c.Request.Context(), userID, uint(id))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Reject(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	conn, err := h.connSvc.Reject(c.Request.Context(), userID, uint(id))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Block(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	conn, err := h.connSvc.Block(c.Request.Context(), userID, uint(id))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) Remove(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.connSvc.Remove(c.Request.Context(), userID, uint(id)); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ConnectionHandler) ListPending(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	c.JSON(http.StatusOK, gin.H{"requests": h.connSvc.ListPending(userID, limit, offset)})
}

func (h *ConnectionHandler) ListSent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	c.JSON(http.StatusOK, gin.H{"requests": h.connSvc.ListSent(userID, limit, offset)})
}

func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	c.JSON(http.StatusOK, gin.H{"connections": h.connSvc.ListConnections(userID, limit, offset)})
}

// Status never errors: fetch problems intentionally report "none".
func (h *ConnectionHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	targetID, _ := strconv.ParseUint(c.Param("user_id"), 10, 64)
	c.JSON(http.StatusOK, h.connSvc.GetStatus(c.Request.Context(), userID, uint(targetID)))
}
