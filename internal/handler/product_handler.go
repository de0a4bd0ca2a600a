package handler

import (
	"net/http"
	"strconv"

	"zilconnect/internal/domain"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productRepo *repository.ProductRepository
}

func NewProductHandler(productRepo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.productRepo.List(limit, offset)
	if err != nil {
		list = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	product, err := h.productRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create registers a partner product in the catalogue.
func (h *ProductHandler) Create(c *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required"`
		Partner         string  `json:"partner"`
		CommissionType  string  `json:"commission_type" binding:"required"`
		CommissionValue float64 `json:"commission_value"`
		EnrollmentURL   string  `json:"enrollment_url"`
		AffiliateID     string  `json:"affiliate_id"`
		IntegrationType string  `json:"integration_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.CommissionType {
	case domain.CommissionTypePercentage, domain.CommissionTypeFixed, domain.CommissionTypeRecurring:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission type"})
		return
	}
	product := &models.Product{
		Name:            req.Name,
		Partner:         req.Partner,
		CommissionType:  req.CommissionType,
		CommissionValue: req.CommissionValue,
		EnrollmentURL:   req.EnrollmentURL,
		AffiliateID:     req.AffiliateID,
		IntegrationType: req.IntegrationType,
	}
	if err := h.productRepo.Create(product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}
