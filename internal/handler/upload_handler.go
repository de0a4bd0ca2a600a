package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"zilconnect/internal/middleware"
	"zilconnect/internal/repository"
	"zilconnect/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud        cloudinary.Client
	businessRepo *repository.BusinessRepository
}

func NewUploadHandler(cloud cloudinary.Client, businessRepo *repository.BusinessRepository) *UploadHandler {
	return &UploadHandler{cloud: cloud, businessRepo: businessRepo}
}

func (h *UploadHandler) upload(c *gin.Context, folder string) (string, bool) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return "", false
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return "", false
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return "", false
	}
	defer f.Close()

	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return "", false
	}
	return url, true
}

// UploadLogo uploads a logo image and stores it on the caller's business profile.
func (h *UploadHandler) UploadLogo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	business, err := h.businessRepo.GetByOwnerID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "create a business profile first"})
		return
	}
	folder := "ZilConnect/logos/" + strconv.FormatUint(uint64(userID), 10)
	url, ok := h.upload(c, folder)
	if !ok {
		return
	}
	business.LogoURL = url
	if err := h.businessRepo.Update(business); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save logo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// UploadOfferImage uploads an offer image and returns the URL for the client
// to attach when creating the offer.
func (h *UploadHandler) UploadOfferImage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	folder := "ZilConnect/offers/" + strconv.FormatUint(uint64(userID), 10)
	url, ok := h.upload(c, folder)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
