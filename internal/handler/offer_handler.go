package handler

import (
	"net/http"
	"strconv"
	"time"

	"zilconnect/internal/middleware"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"
	"zilconnect/internal/service"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerRepo    *repository.OfferRepository
	businessRepo *repository.BusinessRepository
	offerSvc     *service.OfferService
}

func NewOfferHandler(offerRepo *repository.OfferRepository, businessRepo *repository.BusinessRepository, offerSvc *service.OfferService) *OfferHandler {
	return &OfferHandler{offerRepo: offerRepo, businessRepo: businessRepo, offerSvc: offerSvc}
}

func (h *OfferHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Title              string    `json:"title" binding:"required"`
		Description        string    `json:"description"`
		ImageURL           string    `json:"image_url"`
		DiscountPercentage float64   `json:"discount_percentage"`
		ValidUntil         time.Time `json:"valid_until" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "create a business profile before publishing offers"})
		return
	}
	offer := &models.Offer{
		BusinessID:         business.ID,
		Title:              req.Title,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		DiscountPercentage: req.DiscountPercentage,
		ValidUntil:         req.ValidUntil,
	}
	if err := h.offerRepo.Create(offer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create offer"})
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *OfferHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	offer, err := h.offerRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil || offer.BusinessID != business.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the offer owner can do this"})
		return
	}
	var req struct {
		Title              *string    `json:"title"`
		Description        *string    `json:"description"`
		ImageURL           *string    `json:"image_url"`
		DiscountPercentage *float64   `json:"discount_percentage"`
		ValidUntil         *time.Time `json:"valid_until"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.ImageURL != nil {
		offer.ImageURL = *req.ImageURL
	}
	if req.DiscountPercentage != nil {
		offer.DiscountPercentage = *req.DiscountPercentage
	}
	if req.ValidUntil != nil {
		offer.ValidUntil = *req.ValidUntil
	}
	if err := h.offerRepo.Update(offer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update offer"})
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	offer, err := h.offerRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil || offer.BusinessID != business.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the offer owner can do this"})
		return
	}
	if err := h.offerRepo.Delete(offer.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OfferHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	offer, err := h.offerRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "offer not found"})
		return
	}
	resp := gin.H{"offer": offer}
	if userID := middleware.GetUserID(c); userID != 0 {
		resp["claimed"] = h.offerSvc.HasUserClaimed(userID, offer.ID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OfferHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.offerRepo.List(limit, offset)
	if err != nil {
		list = []models.Offer{}
	}
	c.JSON(http.StatusOK, gin.H{"offers": list})
}

func (h *OfferHandler) Claim(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	claim, err := h.offerSvc.ProcessClaim(userID, uint(id))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func (h *OfferHandler) MyClaims(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	claims, err := h.offerRepo.ListClaimsByUser(userID, limit, offset)
	if err != nil {
		claims = []models.OfferClaim{}
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// Verify checks a coupon code without consuming it, for the business side of
// the counter.
func (h *OfferHandler) Verify(c *gin.Context) {
	claim, err := h.offerSvc.VerifyCoupon(c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "claim": claim})
}

func (h *OfferHandler) Redeem(c *gin.Context) {
	claim, err := h.offerSvc.RedeemClaim(c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "redeemed", "claim": claim})
}
