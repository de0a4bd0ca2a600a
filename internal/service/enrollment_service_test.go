package service

import (
	"testing"

	"zilconnect/internal/domain"
	"zilconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentCreate(t *testing.T) {
	t.Run("creates enrollment with derived commission transaction", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		b := e.createBusiness(t, alice.ID, "alice Ltd")
		product := e.createProduct(t, "Biz Account", domain.CommissionTypeFixed, 500)

		enr, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollmentStatusPending, enr.Status)
		assert.Equal(t, 500.0, enr.CommissionEarned)
		assert.Equal(t, domain.CommissionStatusPending, enr.CommissionStatus)

		tx, err := e.commissionRepo.GetByEnrollmentID(enr.ID)
		require.NoError(t, err)
		assert.Equal(t, 500.0, tx.Amount)
		assert.Equal(t, domain.TransactionTypeOneTime, tx.CommissionType)
		assert.Equal(t, domain.TransactionStatusPending, tx.Status)

		// Product counter bumped server-side.
		reloaded, err := e.productRepo.GetByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), reloaded.Enrollments)

		// Enrollment confirmation notification.
		notifs := e.notificationsFor(t, alice.ID)
		require.Len(t, notifs, 1)
		assert.Equal(t, domain.NotificationSystem, notifs[0].Type)
	})

	t.Run("recurring products map to recurring ledger entries", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		b := e.createBusiness(t, alice.ID, "alice Ltd")
		product := e.createProduct(t, "Sub Plan", domain.CommissionTypeRecurring, 50)

		enr, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)
		tx, err := e.commissionRepo.GetByEnrollmentID(enr.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionTypeRecurring, tx.CommissionType)
	})

	t.Run("zero-commission products skip the ledger", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		b := e.createBusiness(t, alice.ID, "alice Ltd")
		product := e.createProduct(t, "Free Tier", domain.CommissionTypePercentage, 0)

		enr, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)
		assert.Zero(t, enr.CommissionEarned)
		_, err = e.commissionRepo.GetByEnrollmentID(enr.ID)
		assert.Error(t, err)
	})

	t.Run("re-enrolling returns the live record", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		b := e.createBusiness(t, alice.ID, "alice Ltd")
		product := e.createProduct(t, "Biz Account", domain.CommissionTypeFixed, 500)

		first, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)

		again, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)

		// A cancelled enrollment no longer blocks a fresh one.
		_, err = e.enrollSvc.UpdateStatus(alice.ID, first.ID, domain.EnrollmentStatusCancelled)
		require.NoError(t, err)
		fresh, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, fresh.ID)
	})

	t.Run("unknown product", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		_, err := e.enrollSvc.Create(alice.ID, 9999, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestEnrollmentUpdateStatus(t *testing.T) {
	seed := func(t *testing.T) (*testEnv, *models.User, *models.Enrollment) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		b := e.createBusiness(t, alice.ID, "alice Ltd")
		product := e.createProduct(t, "Biz Account", domain.CommissionTypeFixed, 500)
		enr, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
		require.NoError(t, err)
		return e, alice, enr
	}

	t.Run("completion pays out the pending commission", func(t *testing.T) {
		e, alice, enr := seed(t)

		updated, err := e.enrollSvc.UpdateStatus(alice.ID, enr.ID, domain.EnrollmentStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.EnrollmentStatusCompleted, updated.Status)
		assert.Equal(t, domain.CommissionStatusPaid, updated.CommissionStatus)

		tx, err := e.commissionRepo.GetByEnrollmentID(enr.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPaid, tx.Status)
	})

	t.Run("activation pays too, but only once", func(t *testing.T) {
		e, alice, enr := seed(t)

		updated, err := e.enrollSvc.UpdateStatus(alice.ID, enr.ID, domain.EnrollmentStatusActive)
		require.NoError(t, err)
		assert.Equal(t, domain.CommissionStatusPaid, updated.CommissionStatus)

		// A later completion does not flip anything back.
		updated, err = e.enrollSvc.UpdateStatus(alice.ID, enr.ID, domain.EnrollmentStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.CommissionStatusPaid, updated.CommissionStatus)
	})

	t.Run("owner only", func(t *testing.T) {
		e, _, enr := seed(t)
		mallory := e.createUser(t, "mallory")
		_, err := e.enrollSvc.UpdateStatus(mallory.ID, enr.ID, domain.EnrollmentStatusCompleted)
		assert.ErrorIs(t, err, ErrNotEnrollmentOwner)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		e, alice, _ := seed(t)
		_, err := e.enrollSvc.UpdateStatus(alice.ID, 9999, domain.EnrollmentStatusActive)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestCommissionSummary(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice")
	b := e.createBusiness(t, alice.ID, "alice Ltd")
	paidProduct := e.createProduct(t, "Paid Product", domain.CommissionTypeFixed, 300)
	pendingProduct := e.createProduct(t, "Pending Product", domain.CommissionTypeFixed, 200)

	paid, err := e.enrollSvc.Create(alice.ID, paidProduct.ID, b.ID)
	require.NoError(t, err)
	_, err = e.enrollSvc.UpdateStatus(alice.ID, paid.ID, domain.EnrollmentStatusCompleted)
	require.NoError(t, err)
	_, err = e.enrollSvc.Create(alice.ID, pendingProduct.ID, b.ID)
	require.NoError(t, err)

	summary, err := e.commissionRepo.SummaryByUser(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, summary.TotalEarned)
	assert.Equal(t, 300.0, summary.TotalPaid)
	assert.Equal(t, 200.0, summary.Pending)
	assert.Equal(t, int64(2), summary.Count)
}

func TestListMine(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice")
	b := e.createBusiness(t, alice.ID, "alice Ltd")
	product := e.createProduct(t, "Biz Account", domain.CommissionTypeFixed, 100)

	_, err := e.enrollSvc.Create(alice.ID, product.ID, b.ID)
	require.NoError(t, err)

	mine := e.enrollSvc.ListMine(alice.ID, 50, 0)
	require.Len(t, mine, 1)
	assert.Equal(t, product.ID, mine[0].ProductID)

	bob := e.createUser(t, "bob")
	assert.Empty(t, e.enrollSvc.ListMine(bob.ID, 50, 0))
}
