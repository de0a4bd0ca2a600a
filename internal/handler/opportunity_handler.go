package handler

import (
	"net/http"
	"strconv"

	"zilconnect/internal/domain"
	"zilconnect/internal/middleware"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"
	"zilconnect/internal/service"

	"github.com/gin-gonic/gin"
)

type OpportunityHandler struct {
	oppRepo      *repository.OpportunityRepository
	businessRepo *repository.BusinessRepository
	oppSvc       *service.OpportunityService
}

func NewOpportunityHandler(oppRepo *repository.OpportunityRepository, businessRepo *repository.BusinessRepository, oppSvc *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{oppRepo: oppRepo, businessRepo: businessRepo, oppSvc: oppSvc}
}

func (h *OpportunityHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "create a business profile before posting opportunities"})
		return
	}
	opp := &models.Opportunity{
		Title:       req.Title,
		Description: req.Description,
		CreatedByID: userID,
		BusinessID:  business.ID,
		Status:      domain.OpportunityStatusOpen,
	}
	if err := h.oppRepo.Create(opp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create opportunity"})
		return
	}
	c.JSON(http.StatusCreated, opp)
}

func (h *OpportunityHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	opp, err := h.oppRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	if opp.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the opportunity owner can do this"})
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		opp.Title = *req.Title
	}
	if req.Description != nil {
		opp.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.OpportunityStatusOpen, domain.OpportunityStatusClosed, domain.OpportunityStatusFilled:
			opp.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if err := h.oppRepo.Update(opp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update opportunity"})
		return
	}
	c.JSON(http.StatusOK, opp)
}

func (h *OpportunityHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	opp, err := h.oppRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	if opp.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the opportunity owner can do this"})
		return
	}
	if err := h.oppRepo.Delete(opp.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete opportunity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	opp, err := h.oppRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	c.JSON(http.StatusOK, opp)
}

func (h *OpportunityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.oppRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		list = []models.Opportunity{}
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": list})
}

func (h *OpportunityHandler) Apply(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)
	app, err := h.oppSvc.Apply(userID, uint(id), req.Notes)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// Applications lists applications to one of the caller's opportunities.
func (h *OpportunityHandler) Applications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	opp, err := h.oppRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	if opp.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the opportunity owner can do this"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	apps, err := h.oppRepo.ListApplicationsByOpportunity(opp.ID, limit, offset)
	if err != nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// MyApplications lists the caller's own applications across opportunities.
func (h *OpportunityHandler) MyApplications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	apps, err := h.oppRepo.ListApplicationsByUser(userID, limit, offset)
	if err != nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *OpportunityHandler) UpdateApplicationStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case domain.ApplicationStatusPending, domain.ApplicationStatusReviewed,
		domain.ApplicationStatusAccepted, domain.ApplicationStatusRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	app, err := h.oppSvc.UpdateApplicationStatus(userID, uint(id), req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
