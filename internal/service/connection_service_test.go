package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"zilconnect/internal/cache"
	"zilconnect/internal/domain"
	"zilconnect/internal/metrics"
	"zilconnect/internal/models"
	"zilconnect/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending connection and notifies the target", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "let's work together")
		require.NoError(t, err)
		assert.Equal(t, domain.ConnectionStatusPending, conn.Status)
		assert.Equal(t, alice.ID, conn.UserFromID)
		assert.Equal(t, bob.ID, conn.UserToID)
		assert.NotZero(t, conn.BusinessFromID)
		assert.NotZero(t, conn.BusinessToID)

		notifs := e.notificationsFor(t, bob.ID)
		require.Len(t, notifs, 1)
		assert.Equal(t, domain.NotificationConnectionRequest, notifs[0].Type)
		assert.Equal(t, conn.ID, notifs[0].RelatedID)
	})

	t.Run("rejects self connection", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		e.createBusiness(t, alice.ID, "Alice Ltd")

		_, err := e.connSvc.SendRequest(ctx, alice.ID, alice.ID, 0, "")
		assert.ErrorIs(t, err, ErrSelfConnection)
	})

	t.Run("requires a business profile", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")
		bob := e.createUser(t, "bob")
		e.createBusiness(t, bob.ID, "Bob Ltd")

		_, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		assert.ErrorIs(t, err, ErrBusinessRequired)
	})

	t.Run("duplicate errors reflect the existing status", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)

		// Same direction and reversed direction both hit the pair.
		_, err = e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		assert.ErrorIs(t, err, ErrAlreadyPending)
		_, err = e.connSvc.SendRequest(ctx, bob.ID, alice.ID, 0, "")
		assert.ErrorIs(t, err, ErrAlreadyPending)

		_, err = e.connSvc.Accept(ctx, bob.ID, conn.ID)
		require.NoError(t, err)
		_, err = e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		assert.ErrorIs(t, err, ErrAlreadyConnected)
	})

	t.Run("rejected and blocked pairs stay closed", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)
		_, err = e.connSvc.Reject(ctx, bob.ID, conn.ID)
		require.NoError(t, err)
		_, err = e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		assert.ErrorIs(t, err, ErrPreviouslyRejected)

		_, err = e.connSvc.Block(ctx, bob.ID, conn.ID)
		require.NoError(t, err)
		_, err = e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		assert.ErrorIs(t, err, ErrConnectionBlocked)
	})

	t.Run("pair index rejects the reverse direction at the storage layer", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		first := &models.Connection{
			UserFromID: alice.ID, UserToID: bob.ID,
			BusinessFromID: 1, BusinessToID: 2,
			Status: domain.ConnectionStatusPending,
		}
		require.NoError(t, e.connRepo.Create(first))

		// A racing reverse-direction insert loses on the normalized pair key
		// even though the pre-check never saw the first row.
		racing := &models.Connection{
			UserFromID: bob.ID, UserToID: alice.ID,
			BusinessFromID: 2, BusinessToID: 1,
			Status: domain.ConnectionStatusPending,
		}
		err := e.connRepo.Create(racing)
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}

func TestConnectionTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("only the recipient can accept or reject", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")
		carol := e.createUser(t, "carol")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)

		_, err = e.connSvc.Accept(ctx, alice.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNotRecipient)
		_, err = e.connSvc.Reject(ctx, carol.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNotRecipient)

		accepted, err := e.connSvc.Accept(ctx, bob.ID, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ConnectionStatusAccepted, accepted.Status)

		// Requester is told about the acceptance.
		notifs := e.notificationsFor(t, alice.ID)
		require.Len(t, notifs, 1)
		assert.Equal(t, domain.NotificationConnectionAccepted, notifs[0].Type)
	})

	t.Run("transitions out of non-pending states are refused", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)
		_, err = e.connSvc.Accept(ctx, bob.ID, conn.ID)
		require.NoError(t, err)

		_, err = e.connSvc.Accept(ctx, bob.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNotPending)
		_, err = e.connSvc.Reject(ctx, bob.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("block works from any state, recipient only", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)
		_, err = e.connSvc.Accept(ctx, bob.ID, conn.ID)
		require.NoError(t, err)

		_, err = e.connSvc.Block(ctx, alice.ID, conn.ID)
		assert.ErrorIs(t, err, ErrNotRecipient)

		blocked, err := e.connSvc.Block(ctx, bob.ID, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ConnectionStatusBlocked, blocked.Status)
	})

	t.Run("either party can remove, outsiders cannot", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")
		carol := e.createUser(t, "carol")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)

		assert.ErrorIs(t, e.connSvc.Remove(ctx, carol.ID, conn.ID), ErrNotParty)
		require.NoError(t, e.connSvc.Remove(ctx, alice.ID, conn.ID))

		// Removal frees the pair for a fresh request.
		_, err = e.connSvc.SendRequest(ctx, bob.ID, alice.ID, 0, "")
		assert.NoError(t, err)
	})

	t.Run("acting on a missing connection reports not found", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")

		_, err := e.connSvc.Accept(ctx, alice.ID, 9999)
		assert.ErrorIs(t, err, ErrConnectionNotFound)
		assert.ErrorIs(t, e.connSvc.Remove(ctx, alice.ID, 9999), ErrConnectionNotFound)
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("no relationship reads as none", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		st := e.connSvc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusNone, st.Status)
		assert.Nil(t, st.Connection)
	})

	t.Run("reports direction and status for both parties", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		conn, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)

		st := e.connSvc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusPending, st.Status)
		assert.True(t, st.IsSender)

		st = e.connSvc.GetStatus(ctx, bob.ID, alice.ID)
		assert.Equal(t, domain.ConnectionStatusPending, st.Status)
		assert.False(t, st.IsSender)
		require.NotNil(t, st.Connection)
		assert.Equal(t, conn.ID, st.Connection.ID)
	})

	t.Run("backend failure degrades to none", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")

		// Force the lookup to fail under the service.
		sqlDB, err := e.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		st := e.connSvc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusNone, st.Status)
	})

	t.Run("confirmed absence is cached and invalidated by a new request", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")
		svc, mr := cachedConnSvc(t, e)

		st := svc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusNone, st.Status)
		assert.True(t, mr.Exists(pairStatusKey(alice.ID, bob.ID)))

		_, err := svc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)
		assert.False(t, mr.Exists(pairStatusKey(alice.ID, bob.ID)))

		st = svc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusPending, st.Status)
	})

	t.Run("fetch errors and live statuses leave the cache untouched", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")
		svc, mr := cachedConnSvc(t, e)

		_, err := svc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)

		// A live status always ships the row, so nothing is cached for it.
		st := svc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusPending, st.Status)
		assert.False(t, mr.Exists(pairStatusKey(alice.ID, bob.ID)))

		sqlDB, err := e.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		// A transient failure reads as none but must not become a cached
		// absence for the TTL.
		st = svc.GetStatus(ctx, alice.ID, bob.ID)
		assert.Equal(t, domain.ConnectionStatusNone, st.Status)
		assert.False(t, mr.Exists(pairStatusKey(alice.ID, bob.ID)))
	})
}

// cachedConnSvc rebuilds the connection service around a miniredis-backed
// cache so tests can observe what gets cached.
func cachedConnSvc(t *testing.T, e *testEnv) (*ConnectionService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewFromClient(client, time.Minute)
	t.Cleanup(func() { c.Close() })
	svc := NewConnectionService(e.connRepo, e.businessRepo, e.userRepo, e.notifSvc, c, metrics.New(), logger.NewTest(t))
	return svc, mr
}

func pairStatusKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("connstatus:%d:%d", a, b)
}

func TestConnectionLists(t *testing.T) {
	ctx := context.Background()

	t.Run("pending, sent and accepted views stay disjoint", func(t *testing.T) {
		e := newTestEnv(t)
		alice, bob := e.createPair(t, "alice", "bob")
		carol := e.createUser(t, "carol")
		e.createBusiness(t, carol.ID, "Carol Ltd")

		toBob, err := e.connSvc.SendRequest(ctx, alice.ID, bob.ID, 0, "")
		require.NoError(t, err)
		_, err = e.connSvc.SendRequest(ctx, carol.ID, alice.ID, 0, "")
		require.NoError(t, err)

		assert.Len(t, e.connSvc.ListSent(alice.ID, 50, 0), 1)
		assert.Len(t, e.connSvc.ListPending(alice.ID, 50, 0), 1)
		assert.Empty(t, e.connSvc.ListConnections(alice.ID, 50, 0))

		_, err = e.connSvc.Accept(ctx, bob.ID, toBob.ID)
		require.NoError(t, err)

		assert.Empty(t, e.connSvc.ListSent(alice.ID, 50, 0))
		accepted := e.connSvc.ListConnections(alice.ID, 50, 0)
		require.Len(t, accepted, 1)
		// Relation repair fills the unpreloaded business edges.
		assert.Equal(t, "alice Ltd", accepted[0].BusinessFrom.Name)
		assert.Equal(t, "bob Ltd", accepted[0].BusinessTo.Name)
		assert.Equal(t, "alice", accepted[0].UserFrom.Username)
	})

	t.Run("list failure degrades to empty", func(t *testing.T) {
		e := newTestEnv(t)
		alice := e.createUser(t, "alice")

		sqlDB, err := e.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		assert.Empty(t, e.connSvc.ListPending(alice.ID, 50, 0))
		assert.Empty(t, e.connSvc.ListConnections(alice.ID, 50, 0))
	})
}

func TestMakePairKey(t *testing.T) {
	assert.Equal(t, models.MakePairKey(7, 3), models.MakePairKey(3, 7))
	assert.Equal(t, "3:7", models.MakePairKey(7, 3))
}
