package handler

import (
	"net/http"
	"strconv"

	"zilconnect/internal/middleware"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"github.com/gin-gonic/gin"
)

type BusinessHandler struct {
	businessRepo *repository.BusinessRepository
}

func NewBusinessHandler(businessRepo *repository.BusinessRepository) *BusinessHandler {
	return &BusinessHandler{businessRepo: businessRepo}
}

type businessRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

// Upsert creates the caller's business profile or updates the existing one.
func (h *BusinessHandler) Upsert(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req businessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		b = &models.Business{OwnerID: userID}
	}
	b.Name = req.Name
	b.Category = req.Category
	b.Description = req.Description
	b.Location = req.Location
	b.Website = req.Website
	if b.ID == 0 {
		if err := h.businessRepo.Create(b); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, b)
		return
	}
	if err := h.businessRepo.Update(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) GetMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	b, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no business profile"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// Get returns a public business profile and bumps its view counter. The
// counter failure never affects the response.
func (h *BusinessHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	b, err := h.businessRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
		return
	}
	_ = h.businessRepo.IncrementViews(b.ID)
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.businessRepo.List(c.Query("q"), c.Query("category"), limit, offset)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"businesses": []models.Business{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": list})
}
