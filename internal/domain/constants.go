package domain

const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
	ConnectionStatusRejected = "rejected"
	ConnectionStatusBlocked  = "blocked"
	ConnectionStatusNone     = "none"
)

const (
	NotificationConnectionRequest  = "connection_request"
	NotificationConnectionAccepted = "connection_accepted"
	NotificationNewMessage         = "new_message"
	NotificationSystem             = "system"
)

const (
	OpportunityStatusOpen   = "Open"
	OpportunityStatusClosed = "Closed"
	OpportunityStatusFilled = "Filled"
)

const (
	ApplicationStatusPending  = "Pending"
	ApplicationStatusReviewed = "Reviewed"
	ApplicationStatusAccepted = "Accepted"
	ApplicationStatusRejected = "Rejected"
)

const (
	CommissionTypePercentage = "Percentage"
	CommissionTypeFixed      = "Fixed Amount"
	CommissionTypeRecurring  = "Recurring"
)

const (
	EnrollmentStatusPending   = "Pending"
	EnrollmentStatusActive    = "Active"
	EnrollmentStatusCompleted = "Completed"
	EnrollmentStatusCancelled = "Cancelled"
)

const (
	CommissionStatusPending = "Pending"
	CommissionStatusPaid    = "Paid"
)

const (
	TransactionTypeOneTime   = "One-time"
	TransactionTypeRecurring = "Recurring"
	TransactionTypeMonthly   = "Monthly"
	TransactionTypeAnnual    = "Annual"
)

const (
	TransactionStatusPending   = "Pending"
	TransactionStatusApproved  = "Approved"
	TransactionStatusPaid      = "Paid"
	TransactionStatusCancelled = "Cancelled"
)

const (
	ClaimStatusClaimed  = "claimed"
	ClaimStatusRedeemed = "redeemed"
)

// ClaimCodePrefix + 6 random base36 uppercase characters, e.g. "ZIL4K9X2".
const ClaimCodePrefix = "ZIL"

// ClaimValidityDays is how long an issued claim code stays redeemable.
const ClaimValidityDays = 30

// TransactionTypeForCommission maps a product commission type to the ledger
// transaction type. Unknown types fall back to one-time.
func TransactionTypeForCommission(commissionType string) string {
	switch commissionType {
	case CommissionTypeRecurring:
		return TransactionTypeRecurring
	default:
		return TransactionTypeOneTime
	}
}
