package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"zilconnect/internal/cache"
	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrConnectionNotAccepted = errors.New("connection is not accepted")
	ErrWrongReceiver         = errors.New("receiver must be the other party of the connection")
	ErrNotSender             = errors.New("only the sender can delete a message")
	ErrEmptyMessage          = errors.New("message content is required")
)

// markAllReadBatch caps how many unread messages one mark-all-read pass
// touches.
const markAllReadBatch = 100

// Conversation is one row of the inbox: the connection, its newest message
// (nil when none) and the caller's unread count on it.
type Conversation struct {
	Connection    models.Connection `json:"connection"`
	LatestMessage *models.Message   `json:"latestMessage"`
	UnreadCount   int64             `json:"unreadCount"`
}

// MessageService gates all message writes behind the parent connection:
// the connection must be accepted, the caller must be a party, and the
// receiver must be exactly the other party.
type MessageService struct {
	messageRepo  *repository.MessageRepository
	connRepo     *repository.ConnectionRepository
	businessRepo *repository.BusinessRepository
	userRepo     *repository.UserRepository
	notifSvc     *NotificationService
	cache        *cache.Cache
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	connRepo *repository.ConnectionRepository,
	businessRepo *repository.BusinessRepository,
	userRepo *repository.UserRepository,
	notifSvc *NotificationService,
	c *cache.Cache,
	m *metrics.Metrics,
	log *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		connRepo:     connRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		notifSvc:     notifSvc,
		cache:        c,
		metrics:      m,
		log:          log,
	}
}

// Send writes a message after the three-invariant gate passes. The new
// message notification is best-effort and carries the sender's business name
// when it resolves.
func (s *MessageService) Send(ctx context.Context, callerID, connectionID, receiverID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return nil, ErrConnectionNotFound
	}
	if conn.Status != domain.ConnectionStatusAccepted {
		return nil, ErrConnectionNotAccepted
	}
	if !conn.IsParty(callerID) {
		return nil, ErrNotParty
	}
	if receiverID != conn.OtherParty(callerID) {
		return nil, ErrWrongReceiver
	}

	msg := &models.Message{
		ConnectionID: connectionID,
		SenderID:     callerID,
		ReceiverID:   receiverID,
		Content:      content,
		Read:         false,
	}
	if err := s.messageRepo.Create(msg); err != nil {
		return nil, err
	}
	s.cache.InvalidateUnread(ctx, receiverID)
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}

	senderName := "a connection"
	if b, err := s.businessRepo.GetByOwnerID(callerID); err == nil {
		senderName = b.Name
	} else if u, err := s.userRepo.GetByID(callerID); err == nil {
		senderName = u.DisplayName()
	}
	_ = s.notifSvc.NotifyNewMessage(receiverID, senderName, connectionID)
	return msg, nil
}

// List returns messages of a connection to one of its parties.
func (s *MessageService) List(callerID, connectionID uint, limit, offset int) ([]models.Message, error) {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return nil, ErrConnectionNotFound
	}
	if !conn.IsParty(callerID) {
		return nil, ErrNotParty
	}
	return s.messageRepo.ListByConnection(connectionID, limit, offset)
}

// Delete removes a message. Sender only.
func (s *MessageService) Delete(callerID, messageID uint) error {
	msg, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != callerID {
		return ErrNotSender
	}
	return s.messageRepo.Delete(messageID)
}

// Search matches content within the caller's own conversations. Failures
// degrade to an empty result.
func (s *MessageService) Search(callerID uint, query string, limit int) []models.Message {
	if query == "" {
		return []models.Message{}
	}
	list, err := s.messageRepo.Search(callerID, query, limit)
	if err != nil {
		s.log.Warn("message search failed", zap.Uint("user", callerID), zap.Error(err))
		return []models.Message{}
	}
	return list
}

// Conversations assembles the inbox: every accepted connection of the caller
// with its latest message and unread count, newest activity first. The
// per-conversation fetches fan out concurrently and degrade independently to
// {connection, nil, 0} so one failure never empties the whole list. The
// limit/offset window is cut only after sorting by latest activity, so page
// boundaries follow the order the client actually sees.
func (s *MessageService) Conversations(callerID uint, limit, offset int) []Conversation {
	conns, err := s.connRepo.ListAcceptedForUser(callerID, -1, 0)
	if err != nil {
		s.log.Warn("conversation list failed", zap.Uint("user", callerID), zap.Error(err))
		return []Conversation{}
	}
	repairConnectionRelations(conns, s.userRepo, s.businessRepo, s.log)

	out := make([]Conversation, len(conns))
	var wg sync.WaitGroup
	for i := range conns {
		out[i].Connection = conns[i]
		wg.Add(1)
		go func(i int, connID uint) {
			defer wg.Done()
			latest, err := s.messageRepo.LatestByConnection(connID)
			if err != nil {
				s.log.Warn("latest message fetch failed", zap.Uint("connection", connID), zap.Error(err))
			} else {
				out[i].LatestMessage = latest
			}
			count, err := s.messageRepo.UnreadCount(connID, callerID)
			if err != nil {
				s.log.Warn("unread count fetch failed", zap.Uint("connection", connID), zap.Error(err))
				count = 0
			}
			out[i].UnreadCount = count
		}(i, conns[i].ID)
	}
	wg.Wait()

	sort.SliceStable(out, func(a, b int) bool {
		return conversationTime(out[a]).After(conversationTime(out[b]))
	})
	if offset > 0 {
		if offset >= len(out) {
			return []Conversation{}
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func conversationTime(c Conversation) time.Time {
	if c.LatestMessage != nil {
		return c.LatestMessage.CreatedAt
	}
	return c.Connection.CreatedAt
}

// MarkAllRead marks up to 100 unread messages addressed to the caller on the
// connection and returns the number processed.
func (s *MessageService) MarkAllRead(ctx context.Context, callerID, connectionID uint) (int64, error) {
	conn, err := s.connRepo.GetByID(connectionID)
	if err != nil {
		return 0, ErrConnectionNotFound
	}
	if !conn.IsParty(callerID) {
		return 0, ErrNotParty
	}
	n, err := s.messageRepo.MarkAllRead(connectionID, callerID, markAllReadBatch)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cache.InvalidateUnread(ctx, callerID)
	}
	return n, nil
}

// UnreadTotal feeds the inbox badge; errors degrade to zero.
func (s *MessageService) UnreadTotal(ctx context.Context, callerID uint) int64 {
	if n, ok := s.cache.GetUnreadCount(ctx, callerID); ok {
		return n
	}
	n, err := s.messageRepo.UnreadTotal(callerID)
	if err != nil {
		s.log.Warn("unread total failed", zap.Uint("user", callerID), zap.Error(err))
		return 0
	}
	s.cache.SetUnreadCount(ctx, callerID, n)
	return n
}
