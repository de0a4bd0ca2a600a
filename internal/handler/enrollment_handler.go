package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zilconnect/internal/domain"
	"zilconnect/internal/middleware"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"
	"zilconnect/internal/service"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollSvc      *service.EnrollmentService
	businessRepo   *repository.BusinessRepository
	commissionRepo *repository.CommissionRepository
}

func NewEnrollmentHandler(enrollSvc *service.EnrollmentService, businessRepo *repository.BusinessRepository, commissionRepo *repository.CommissionRepository) *EnrollmentHandler {
	return &EnrollmentHandler{enrollSvc: enrollSvc, businessRepo: businessRepo, commissionRepo: commissionRepo}
}

// CheckExisting tells the client whether the caller already has a live
// enrollment for a product, so it can skip straight to the partner flow.
func (h *EnrollmentHandler) CheckExisting(c *gin.Context) {
	userID := middleware.GetUserID(c)
	productID, _ := strconv.ParseUint(c.Query("product"), 10, 64)
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"enrolled": false})
		return
	}
	existing, err := h.enrollSvc.CheckExisting(userID, uint(productID), business.ID)
	if err != nil || existing == nil {
		c.JSON(http.StatusOK, gin.H{"enrolled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": true, "enrollment": existing})
}

func (h *EnrollmentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Product uint `json:"product" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "create a business profile before enrolling"})
		return
	}
	enrollment, err := h.enrollSvc.Create(userID, req.Product, business.ID)
	if err != nil {
		// Re-enrolling is reported with the live record so the client can
		// resume rather than treat it as a dead end.
		if enrollment != nil && errors.Is(err, service.ErrAlreadyEnrolled) {
			c.JSON(http.StatusOK, gin.H{"enrolled": true, "enrollment": enrollment})
			return
		}
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
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
	case domain.EnrollmentStatusPending, domain.EnrollmentStatusActive,
		domain.EnrollmentStatusCompleted, domain.EnrollmentStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	enrollment, err := h.enrollSvc.UpdateStatus(userID, uint(id), req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	c.JSON(http.StatusOK, gin.H{"enrollments": h.enrollSvc.ListMine(userID, limit, offset)})
}

func (h *EnrollmentHandler) Commissions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.commissionRepo.ListByUser(userID, limit, offset)
	if err != nil {
		list = []models.CommissionTransaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *EnrollmentHandler) CommissionSummary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	summary, err := h.commissionRepo.SummaryByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute commission summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
