package service

import (
	"testing"

	"zilconnect/internal/database"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"
	"zilconnect/pkg/logger"

	"gorm.io/gorm"
)

// testEnv wires the full service stack against a fresh in-memory database.
// The cache is nil (disabled) unless a test swaps one in.
type testEnv struct {
	db *gorm.DB

	userRepo       *repository.UserRepository
	businessRepo   *repository.BusinessRepository
	connRepo       *repository.ConnectionRepository
	messageRepo    *repository.MessageRepository
	notifRepo      *repository.NotificationRepository
	oppRepo        *repository.OpportunityRepository
	productRepo    *repository.ProductRepository
	enrollmentRepo *repository.EnrollmentRepository
	commissionRepo *repository.CommissionRepository
	offerRepo      *repository.OfferRepository

	notifSvc   *NotificationService
	connSvc    *ConnectionService
	messageSvc *MessageService
	oppSvc     *OpportunityService
	enrollSvc  *EnrollmentService
	offerSvc   *OfferService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.NewTestDB(t)
	log := logger.NewTest(t)
	m := metrics.New()

	e := &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		businessRepo:   repository.NewBusinessRepository(db),
		connRepo:       repository.NewConnectionRepository(db),
		messageRepo:    repository.NewMessageRepository(db),
		notifRepo:      repository.NewNotificationRepository(db),
		oppRepo:        repository.NewOpportunityRepository(db),
		productRepo:    repository.NewProductRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
		commissionRepo: repository.NewCommissionRepository(db),
		offerRepo:      repository.NewOfferRepository(db),
	}
	e.notifSvc = NewNotificationService(e.notifRepo, m, log)
	e.connSvc = NewConnectionService(e.connRepo, e.businessRepo, e.userRepo, e.notifSvc, nil, m, log)
	e.messageSvc = NewMessageService(e.messageRepo, e.connRepo, e.businessRepo, e.userRepo, e.notifSvc, nil, m, log)
	e.oppSvc = NewOpportunityService(e.oppRepo, e.notifSvc, log)
	e.enrollSvc = NewEnrollmentService(e.enrollmentRepo, e.productRepo, e.commissionRepo, e.notifSvc, m, log)
	e.offerSvc = NewOfferService(e.offerRepo, m, log)
	return e
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com"}
	if err := e.userRepo.Create(u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (e *testEnv) createBusiness(t *testing.T, ownerID uint, name string) *models.Business {
	t.Helper()
	b := &models.Business{OwnerID: ownerID, Name: name, Category: "Fintech"}
	if err := e.businessRepo.Create(b); err != nil {
		t.Fatalf("create business %s: %v", name, err)
	}
	return b
}

// createPair seeds two users, each with a business.
func (e *testEnv) createPair(t *testing.T, a, b string) (*models.User, *models.User) {
	t.Helper()
	ua := e.createUser(t, a)
	ub := e.createUser(t, b)
	e.createBusiness(t, ua.ID, a+" Ltd")
	e.createBusiness(t, ub.ID, b+" Ltd")
	return ua, ub
}

func (e *testEnv) createProduct(t *testing.T, name, commissionType string, value float64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Partner: "PartnerCo", CommissionType: commissionType, CommissionValue: value}
	if err := e.productRepo.Create(p); err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := e.notifRepo.ListByUserID(userID, 100, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return list
}
