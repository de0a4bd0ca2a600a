package handler

import (
	"errors"
	"net/http"

	"zilconnect/internal/service"

	"github.com/gin-gonic/gin"
)

// abortWithServiceError maps the service-layer sentinel errors onto HTTP
// statuses. Anything unrecognized is an internal error with a generic body.
func abortWithServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, service.ErrConnectionNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrOfferNotFound),
		errors.Is(err, service.ErrOpportunityNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNotRecipient),
		errors.Is(err, service.ErrNotParty),
		errors.Is(err, service.ErrNotSender),
		errors.Is(err, service.ErrNotEnrollmentOwner),
		errors.Is(err, service.ErrNotOpportunityOwner):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrSelfConnection),
		errors.Is(err, service.ErrBusinessRequired),
		errors.Is(err, service.ErrAlreadyPending),
		errors.Is(err, service.ErrAlreadyConnected),
		errors.Is(err, service.ErrConnectionBlocked),
		errors.Is(err, service.ErrPreviouslyRejected),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrConnectionNotAccepted),
		errors.Is(err, service.ErrWrongReceiver),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrOfferExpired),
		errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrInvalidCoupon),
		errors.Is(err, service.ErrOpportunityClosed),
		errors.Is(err, service.ErrSelfApplication),
		errors.Is(err, service.ErrAlreadyApplied):
		status, msg = http.StatusBadRequest, err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
