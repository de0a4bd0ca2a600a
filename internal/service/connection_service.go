package service

import (
	"context"
	"errors"
	"sync"

	"zilconnect/internal/cache"
	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBusinessRequired   = errors.New("you need a business profile to send connection requests")
	ErrSelfConnection     = errors.New("you cannot connect with yourself")
	ErrAlreadyPending     = errors.New("a connection request is already pending")
	ErrAlreadyConnected   = errors.New("you are already connected")
	ErrConnectionBlocked  = errors.New("cannot send a connection request to this user")
	ErrPreviouslyRejected = errors.New("a previous connection request was rejected")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNotRecipient       = errors.New("only the recipient can act on this request")
	ErrNotPending         = errors.New("request is not pending")
	ErrNotParty           = errors.New("you are not part of this connection")
)

// ConnectionStatus is the peer-relationship summary for a profile page.
// Status is one of none, pending, accepted, rejected, blocked.
type ConnectionStatus struct {
	Status     string             `json:"status"`
	Connection *models.Connection `json:"connection,omitempty"`
	IsSender   bool               `json:"isSender"`
}

// ConnectionService implements the pending → accepted/rejected/blocked state
// machine. Transitions out of pending belong to the recipient alone; deletion
// (withdraw/disconnect) belongs to either party from any state.
type ConnectionService struct {
	connRepo     *repository.ConnectionRepository
	businessRepo *repository.BusinessRepository
	userRepo     *repository.UserRepository
	notifSvc     *NotificationService
	cache        *cache.Cache
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewConnectionService(
	connRepo *repository.ConnectionRepository,
	businessRepo *repository.BusinessRepository,
	userRepo *repository.UserRepository,
	notifSvc *NotificationService,
	c *cache.Cache,
	m *metrics.Metrics,
	log *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		connRepo:     connRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		notifSvc:     notifSvc,
		cache:        c,
		metrics:      m,
		log:          log,
	}
}

func statusError(status string) error {
	switch status {
	case domain.ConnectionStatusPending:
		return ErrAlreadyPending
	case domain.ConnectionStatusAccepted:
		return ErrAlreadyConnected
	case domain.ConnectionStatusBlocked:
		return ErrConnectionBlocked
	case domain.ConnectionStatusRejected:
		return ErrPreviouslyRejected
	}
	return ErrAlreadyPending
}

// SendRequest creates a pending connection from the caller to targetUserID.
// The caller must own a business profile and may not target themselves. The
// duplicate pre-check yields a status-specific error; the pair unique index
// closes the race two concurrent requests would otherwise win together.
func (s *ConnectionService) SendRequest(ctx context.Context, callerID, targetUserID, targetBusinessID uint, message string) (*models.Connection, error) {
	if callerID == targetUserID {
		return nil, ErrSelfConnection
	}
	callerBusiness, err := s.businessRepo.GetByOwnerID(callerID)
	if err != nil {
		return nil, ErrBusinessRequired
	}

	if targetBusinessID == 0 {
		if tb, err := s.businessRepo.GetByOwnerID(targetUserID); err == nil {
			targetBusinessID = tb.ID
		}
	}

	if existing, err := s.connRepo.GetBetweenUsers(callerID, targetUserID); err == nil {
		return nil, statusError(existing.Status)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("connection pre-check failed", zap.Error(err))
	}

	conn := &models.Connection{
		UserFromID:     callerID,
		UserToID:       targetUserID,
		BusinessFromID: callerBusiness.ID,
		BusinessToID:   targetBusinessID,
		Status:         domain.ConnectionStatusPending,
		Message:        message,
	}
	if err := s.connRepo.Create(conn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; report against whatever won.
			if existing, qerr := s.connRepo.GetBetweenUsers(callerID, targetUserID); qerr == nil {
				return nil, statusError(existing.Status)
			}
			return nil, ErrAlreadyPending
		}
		return nil, err
	}

	s.cache.InvalidateConnectionStatus(ctx, callerID, targetUserID)
	if s.metrics != nil {
		s.metrics.ConnectionRequests.WithLabelValues("send").Inc()
	}
	// Notification failure never surfaces; the request already succeeded.
	_ = s.notifSvc.NotifyConnectionRequest(targetUserID, callerBusiness.Name, conn.ID)
	return conn, nil
}

// Accept moves a pending request to accepted. Recipient only.
func (s *ConnectionService) Accept(ctx context.Context, callerID, connectionID uint) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return nil, ErrConnectionNotFound
	}
	if conn.UserToID != callerID {
		return nil, ErrNotRecipient
	}
	if conn.Status != domain.ConnectionStatusPending {
		return nil, ErrNotPending
	}
	conn.Status = domain.ConnectionStatusAccepted
	if err := s.connRepo.Update(conn); err != nil {
		return nil, err
	}
	s.cache.InvalidateConnectionStatus(ctx, conn.UserFromID, conn.UserToID)
	if s.metrics != nil {
		s.metrics.ConnectionRequests.WithLabelValues("accept").Inc()
	}
	accepterName := conn.UserTo.DisplayName()
	if b, err := s.businessRepo.GetByOwnerID(callerID); err == nil {
		accepterName = b.Name
	}
	_ = s.notifSvc.NotifyConnectionAccepted(conn.UserFromID, accepterName, conn.ID)
	return conn, nil
}

// Reject moves a pending request to rejected. Recipient only; no notification.
func (s *ConnectionService) Reject(ctx context.Context, callerID, connectionID uint) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return nil, ErrConnectionNotFound
	}
	if conn.UserToID != callerID {
		return nil, ErrNotRecipient
	}
	if conn.Status != domain.ConnectionStatusPending {
		return nil, ErrNotPending
	}
	conn.Status = domain.ConnectionStatusRejected
	if err := s.connRepo.Update(conn); err != nil {
		return nil, err
	}
	s.cache.InvalidateConnectionStatus(ctx, conn.UserFromID, conn.UserToID)
	if s.metrics != nil {
		s.metrics.ConnectionRequests.WithLabelValues("reject").Inc()
	}
	return conn, nil
}

// Block sets the connection to blocked from any state. Recipient only.
func (s *ConnectionService) Block(ctx context.Context, callerID, connectionID uint) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return nil, ErrConnectionNotFound
	}
	if conn.UserToID != callerID {
		return nil, ErrNotRecipient
	}
	conn.Status = domain.ConnectionStatusBlocked
	if err := s.connRepo.Update(conn); err != nil {
		return nil, err
	}
	s.cache.InvalidateConnectionStatus(ctx, conn.UserFromID, conn.UserToID)
	if s.metrics != nil {
		s.metrics.ConnectionRequests.WithLabelValues("block").Inc()
	}
	return conn, nil
}

// Remove hard-deletes the connection regardless of status. Either party.
func (s *ConnectionService) Remove(ctx context.Context, callerID, connectionID uint) error {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return ErrConnectionNotFound
	}
	if !conn.IsParty(callerID) {
		return ErrNotParty
	}
	if err := s.connRepo.Delete(conn.ID); err != nil {
		return err
	}
	s.cache.InvalidateConnectionStatus(ctx, conn.UserFromID, conn.UserToID)
	if s.metrics != nil {
		s.metrics.ConnectionRequests.WithLabelValues("remove").Inc()
	}
	return nil
}

// GetStatus summarizes the relationship between the caller and targetUserID.
// A fetch error deliberately reports "none" instead of propagating so a
// transient backend problem never renders as a false error toast.
func (s *ConnectionService) GetStatus(ctx context.Context, callerID, targetUserID uint) *ConnectionStatus {
	if status, ok := s.cache.GetConnectionStatus(ctx, callerID, targetUserID); ok && status == domain.ConnectionStatusNone {
		return &ConnectionStatus{Status: domain.ConnectionStatusNone}
	}
	conn, err := s.connRepo.GetBetweenUsers(callerID, targetUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Only a confirmed absence is cached. Positive results carry the row
		// itself, and a transient fetch error must not masquerade as a real
		// "none" for the cache TTL.
		s.cache.SetConnectionStatus(ctx, callerID, targetUserID, domain.ConnectionStatusNone)
		return &ConnectionStatus{Status: domain.ConnectionStatusNone}
	}
	if err != nil {
		s.log.Warn("connection status lookup failed",
			zap.Uint("caller", callerID),
			zap.Uint("target", targetUserID),
			zap.Error(err))
		return &ConnectionStatus{Status: domain.ConnectionStatusNone}
	}
	return &ConnectionStatus{
		Status:     conn.Status,
		Connection: conn,
		IsSender:   conn.UserFromID == callerID,
	}
}

// ListPending returns requests awaiting the caller's decision. List failures
// degrade to an empty slice.
func (s *ConnectionService) ListPending(callerID uint, limit, offset int) []models.Connection {
	list, err := s.connRepo.ListPendingForUser(callerID, limit, offset)
	if err != nil {
		s.log.Warn("pending list failed", zap.Uint("user", callerID), zap.Error(err))
		return []models.Connection{}
	}
	s.repairRelations(list)
	return list
}

// ListSent returns pending requests the caller has sent.
func (s *ConnectionService) ListSent(callerID uint, limit, offset int) []models.Connection {
	list, err := s.connRepo.ListSentByUser(callerID, limit, offset)
	if err != nil {
		s.log.Warn("sent list failed", zap.Uint("user", callerID), zap.Error(err))
		return []models.Connection{}
	}
	s.repairRelations(list)
	return list
}

// ListConnections returns the caller's accepted connections.
func (s *ConnectionService) ListConnections(callerID uint, limit, offset int) []models.Connection {
	list, err := s.connRepo.ListAcceptedForUser(callerID, limit, offset)
	if err != nil {
		s.log.Warn("connections list failed", zap.Uint("user", callerID), zap.Error(err))
		return []models.Connection{}
	}
	s.repairRelations(list)
	return list
}

func (s *ConnectionService) repairRelations(list []models.Connection) {
	repairConnectionRelations(list, s.userRepo, s.businessRepo, s.log)
}

// repairConnectionRelations resolves relation edges that arrived as bare
// foreign keys (zero-value structs) with a concurrent fan-out of point
// lookups. Each connection repairs independently; a failed lookup is logged
// and skipped so one bad node never aborts its siblings. Shared with the
// conversation list, which serves the same connection payloads.
func repairConnectionRelations(list []models.Connection, userRepo *repository.UserRepository, businessRepo *repository.BusinessRepository, log *zap.Logger) {
	var wg sync.WaitGroup
	for i := range list {
		wg.Add(1)
		go func(conn *models.Connection) {
			defer wg.Done()
			if conn.UserFrom.ID == 0 && conn.UserFromID != 0 {
				if u, err := userRepo.GetByID(conn.UserFromID); err == nil {
					conn.UserFrom = *u
				} else {
					log.Warn("repair user_from failed", zap.Uint("connection", conn.ID), zap.Error(err))
				}
			}
			if conn.UserTo.ID == 0 && conn.UserToID != 0 {
				if u, err := userRepo.GetByID(conn.UserToID); err == nil {
					conn.UserTo = *u
				} else {
					log.Warn("repair user_to failed", zap.Uint("connection", conn.ID), zap.Error(err))
				}
			}
			if conn.BusinessFrom.ID == 0 && conn.BusinessFromID != 0 {
				if b, err := businessRepo.GetByID(conn.BusinessFromID); err == nil {
					conn.BusinessFrom = *b
				} else {
					log.Warn("repair business_from failed", zap.Uint("connection", conn.ID), zap.Error(err))
				}
			}
			if conn.BusinessTo.ID == 0 && conn.BusinessToID != 0 {
				if b, err := businessRepo.GetByID(conn.BusinessToID); err == nil {
					conn.BusinessTo = *b
				} else {
					log.Warn("repair business_to failed", zap.Uint("connection", conn.ID), zap.Error(err))
				}
			}
		}(&list[i])
	}
	wg.Wait()
}
