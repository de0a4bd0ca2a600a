package service

import (
	"crypto/rand"
	"errors"
	"time"

	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound  = errors.New("offer not found")
	ErrOfferExpired   = errors.New("this offer is no longer valid")
	ErrAlreadyClaimed = errors.New("you have already claimed this offer")
	ErrInvalidCoupon  = errors.New("coupon is invalid, redeemed or expired")
	ErrCodeExhausted  = errors.New("failed to generate a unique claim code after retries")
)

const claimCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OfferService issues and verifies single-use coupon codes against
// promotional offers.
type OfferService struct {
	offerRepo *repository.OfferRepository
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewOfferService(offerRepo *repository.OfferRepository, m *metrics.Metrics, log *zap.Logger) *OfferService {
	return &OfferService{offerRepo: offerRepo, metrics: m, log: log, now: time.Now}
}

// generateClaimCode returns "ZIL" plus 6 random base36 uppercase characters.
// Bytes >= 252 are rejected so every alphabet character is equally likely
// (252 is the largest multiple of 36 below 256).
func generateClaimCode() (string, error) {
	code := make([]byte, 6)
	buf := make([]byte, 1)
	for i := 0; i < len(code); {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if buf[0] >= 252 {
			continue
		}
		code[i] = claimCodeAlphabet[int(buf[0])%len(claimCodeAlphabet)]
		i++
	}
	return domain.ClaimCodePrefix + string(code), nil
}

// ProcessClaim issues a coupon for the caller: one claim per (user, offer),
// offer still valid, code unique by index with retry-on-conflict, expiry 30
// days out. The redemptions counter bump is a non-blocking side effect.
func (s *OfferService) ProcessClaim(callerID, offerID uint) (*models.OfferClaim, error) {
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	if !offer.ValidUntil.IsZero() && offer.ValidUntil.Before(s.now()) {
		return nil, ErrOfferExpired
	}
	if _, err := s.offerRepo.GetClaimByOfferAndUser(offerID, callerID); err == nil {
		return nil, ErrAlreadyClaimed
	}

	var claim *models.OfferClaim
	for attempt := 0; attempt < 10; attempt++ {
		code, err := generateClaimCode()
		if err != nil {
			return nil, err
		}
		claim = &models.OfferClaim{
			OfferID:   offerID,
			UserID:    callerID,
			ClaimCode: code,
			Status:    domain.ClaimStatusClaimed,
			ExpiresAt: s.now().AddDate(0, 0, domain.ClaimValidityDays),
		}
		err = s.offerRepo.CreateClaim(claim)
		if err == nil {
			break
		}
		claim = nil
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A duplicate can be a code collision (retry) or a concurrent claim
		// by the same user (terminal).
		if _, qerr := s.offerRepo.GetClaimByOfferAndUser(offerID, callerID); qerr == nil {
			return nil, ErrAlreadyClaimed
		}
	}
	if claim == nil {
		return nil, ErrCodeExhausted
	}

	if err := s.offerRepo.IncrementRedemptions(offerID); err != nil {
		s.log.Warn("redemptions counter increment failed",
			zap.Uint("offer", offerID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ClaimsIssued.Inc()
	}
	return claim, nil
}

// VerifyCoupon looks a claim up by code for redemption-desk use. Missing,
// already redeemed, or expired codes are all reported as invalid. No state
// changes here; redemption is a separate explicit operation.
func (s *OfferService) VerifyCoupon(code string) (*models.OfferClaim, error) {
	claim, err := s.offerRepo.GetClaimByCode(code)
	if err != nil {
		return nil, ErrInvalidCoupon
	}
	if claim.Status == domain.ClaimStatusRedeemed {
		return nil, ErrInvalidCoupon
	}
	if claim.ExpiresAt.Before(s.now()) {
		return nil, ErrInvalidCoupon
	}
	return claim, nil
}

// RedeemClaim marks a verified coupon as redeemed.
func (s *OfferService) RedeemClaim(code string) (*models.OfferClaim, error) {
	claim, err := s.VerifyCoupon(code)
	if err != nil {
		return nil, err
	}
	claim.Status = domain.ClaimStatusRedeemed
	if err := s.offerRepo.UpdateClaim(claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// HasUserClaimed reports whether the caller already holds a claim on the
// offer, redeemed or not.
func (s *OfferService) HasUserClaimed(callerID, offerID uint) bool {
	_, err := s.offerRepo.GetClaimByOfferAndUser(offerID, callerID)
	return err == nil
}
