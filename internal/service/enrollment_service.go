package service

import (
	"errors"
	"time"

	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrAlreadyEnrolled    = errors.New("an enrollment for this product already exists")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrNotEnrollmentOwner = errors.New("enrollment belongs to another user")
)

// EnrollmentService links partner-product enrollments to the commission
// ledger. The enrollment is authoritative: a failed ledger write is logged
// and the enrollment still succeeds.
type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	productRepo    *repository.ProductRepository
	commissionRepo *repository.CommissionRepository
	notifSvc       *NotificationService
	metrics        *metrics.Metrics
	log            *zap.Logger
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	productRepo *repository.ProductRepository,
	commissionRepo *repository.CommissionRepository,
	notifSvc *NotificationService,
	m *metrics.Metrics,
	log *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		productRepo:    productRepo,
		commissionRepo: commissionRepo,
		notifSvc:       notifSvc,
		metrics:        m,
		log:            log,
	}
}

// commissionAmount passes the product's commission value through unchanged
// for every commission type. A true percentage commission would need a base
// order amount that no caller supplies; pending product clarification the
// value is not reinterpreted here.
func commissionAmount(p *models.Product) float64 {
	return p.CommissionValue
}

// CheckExisting returns the live (non-cancelled) enrollment for the caller
// and (product, business), or nil when a fresh create is allowed.
func (s *EnrollmentService) CheckExisting(callerID, productID, businessID uint) (*models.Enrollment, error) {
	e, err := s.enrollmentRepo.FindExisting(callerID, productID, businessID)
	if err != nil {
		return nil, nil
	}
	return e, nil
}

// Create enrolls the caller's business into a product. A prior non-cancelled
// enrollment is returned as-is with ErrAlreadyEnrolled so the caller can
// redirect instead of duplicating. The commission transaction is a derived,
// non-blocking side effect.
func (s *EnrollmentService) Create(callerID, productID, businessID uint) (*models.Enrollment, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if existing, err := s.enrollmentRepo.FindExisting(callerID, productID, businessID); err == nil {
		return existing, ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		UserID:           callerID,
		BusinessID:       businessID,
		ProductID:        productID,
		Status:           domain.EnrollmentStatusPending,
		CommissionEarned: 0,
		CommissionStatus: domain.CommissionStatusPending,
	}
	if err := s.enrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	if err := s.productRepo.IncrementEnrollments(productID); err != nil {
		s.log.Warn("enrollment counter increment failed",
			zap.Uint("product", productID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.EnrollmentsCreated.Inc()
	}

	if amount := commissionAmount(product); amount > 0 {
		enrollment.CommissionEarned = amount
		if err := s.enrollmentRepo.Update(enrollment); err != nil {
			s.log.Warn("commission patch failed",
				zap.Uint("enrollment", enrollment.ID), zap.Error(err))
		}
		tx := &models.CommissionTransaction{
			EnrollmentID:    enrollment.ID,
			ProductID:       productID,
			BusinessID:      businessID,
			UserID:          callerID,
			Amount:          amount,
			CommissionType:  domain.TransactionTypeForCommission(product.CommissionType),
			Status:          domain.TransactionStatusPending,
			TransactionDate: time.Now(),
		}
		if err := s.commissionRepo.Create(tx); err != nil {
			// Non-blocking: the commission ledger may lag the enrollment.
			s.log.Warn("commission transaction create failed",
				zap.Uint("enrollment", enrollment.ID), zap.Error(err))
		}
	}

	_ = s.notifSvc.NotifyEnrollmentCreated(callerID, product.Name, enrollment.ID)
	return enrollment, nil
}

// UpdateStatus transitions an enrollment. Moving to Completed or Active with
// an unpaid nonzero commission auto-marks the commission paid as of today,
// on both the enrollment and its ledger entry.
func (s *EnrollmentService) UpdateStatus(callerID, enrollmentID uint, status string) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(enrollmentID)
	if err != nil {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.UserID != callerID {
		return nil, ErrNotEnrollmentOwner
	}

	enrollment.Status = status
	if (status == domain.EnrollmentStatusCompleted || status == domain.EnrollmentStatusActive) &&
		enrollment.CommissionStatus == domain.CommissionStatusPending &&
		enrollment.CommissionEarned > 0 {
		enrollment.CommissionStatus = domain.CommissionStatusPaid
		if tx, err := s.commissionRepo.GetByEnrollmentID(enrollment.ID); err == nil {
			tx.Status = domain.TransactionStatusPaid
			tx.TransactionDate = time.Now()
			if err := s.commissionRepo.Update(tx); err != nil {
				s.log.Warn("commission transaction update failed",
					zap.Uint("enrollment", enrollment.ID), zap.Error(err))
			}
		}
	}
	if err := s.enrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ListMine returns the caller's enrollments; failures degrade to empty.
func (s *EnrollmentService) ListMine(callerID uint, limit, offset int) []models.Enrollment {
	list, err := s.enrollmentRepo.ListByUser(callerID, limit, offset)
	if err != nil {
		s.log.Warn("enrollment list failed", zap.Uint("user", callerID), zap.Error(err))
		return []models.Enrollment{}
	}
	return list
}
