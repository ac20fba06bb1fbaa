package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	pushed []*NotificationResponse
	unread []int
	err    error
}

func (p *recordingPublisher) NotifyNew(_ context.Context, _ uuid.UUID, n *NotificationResponse, unreadCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, n)
	p.unread = append(p.unread, unreadCount)
	return p.err
}

func setup(t *testing.T, publisher RealtimePublisher) (*sqlx.DB, *Service, uuid.UUID) {
	t.Helper()
	db := dbtest.Open(t)
	igreja := dbtest.SeedIgreja(t, db, "Igreja Esperança")
	return db, NewService(NewRepository(db), publisher), dbtest.SeedUser(t, db, igreja, "discipulo")
}

func TestCreateDefaultsAndPush(t *testing.T) {
	publisher := &recordingPublisher{}
	_, svc, userID := setup(t, publisher)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{
		UserID: userID,
		Type:   TypeSolicitacaoEnviada,
		Title:  "Solicitação enviada",
		Body:   "Aguardando o supervisor",
	})
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, n.Priority)
	assert.False(t, n.ExpiresAt.Valid)

	require.Len(t, publisher.pushed, 1)
	assert.Equal(t, n.ID, publisher.pushed[0].ID)
	assert.Equal(t, 1, publisher.unread[0])
}

func TestCreateSurvivesPushFailure(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("redis down")}
	_, svc, userID := setup(t, publisher)

	_, err := svc.Create(context.Background(), CreateInput{UserID: userID, Type: TypeSolicitacaoStatus, Title: "x"})
	require.NoError(t, err)

	count, err := svc.GetUnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateRequiresRecipient(t *testing.T) {
	_, svc, _ := setup(t, nil)

	_, err := svc.Create(context.Background(), CreateInput{Type: TypeSolicitacaoStatus, Title: "x"})
	assert.ErrorIs(t, err, ErrRecipientRequired)
}

func TestExpiredNoticesAreHidden(t *testing.T) {
	db, svc, userID := setup(t, nil)
	ctx := context.Background()

	live, err := svc.Create(ctx, CreateInput{
		UserID:   userID,
		Type:     TypeSolicitacaoPendente,
		Title:    "Nova solicitação",
		Priority: PriorityHigh,
		TTL:      7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, database.Now().Add(7*24*time.Hour), live.ExpiresAt.Time, time.Minute)

	dbtest.Exec(t, db, `INSERT INTO notifications (id, user_id, type, title, priority, is_read, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New(), userID, TypeSolicitacaoPendente, "Vencida", PriorityHigh, false,
		database.Now().Add(-time.Hour), database.Now().Add(-8*24*time.Hour))

	items, err := svc.List(ctx, userID, 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, live.ID, items[0].ID)
	assert.Equal(t, PriorityHigh, items[0].Priority)

	count, err := svc.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAsReadIsScopedToOwner(t *testing.T) {
	db, svc, userID := setup(t, nil)
	ctx := context.Background()
	other := dbtest.SeedUser(t, db, uuid.Nil, "discipulo")

	n, err := svc.Create(ctx, CreateInput{UserID: userID, Type: TypeSolicitacaoStatus, Title: "Aprovada"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, other, n.ID), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, userID, n.ID))

	count, err := svc.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllAsRead(t *testing.T) {
	_, svc, userID := setup(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateInput{UserID: userID, Type: TypeSolicitacaoStatus, Title: "x"})
		require.NoError(t, err)
	}

	updated, err := svc.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)
}

func TestCleanupJob(t *testing.T) {
	db, _, userID := setup(t, nil)
	ctx := context.Background()
	now := database.Now()

	insert := func(isRead bool, createdAt time.Time, expiresAt interface{}) {
		dbtest.Exec(t, db, `INSERT INTO notifications (id, user_id, type, title, priority, is_read, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New(), userID, TypeSolicitacaoStatus, "n", PriorityNormal, isRead, expiresAt, createdAt)
	}

	insert(false, now.Add(-time.Hour), now.Add(-time.Minute))
	insert(true, now.AddDate(0, 0, -40), nil)
	insert(false, now.AddDate(0, 0, -40), nil)
	insert(false, now.AddDate(0, 0, -200), nil)
	insert(true, now.Add(-time.Hour), nil)
	insert(false, now.Add(-time.Hour), now.Add(24*time.Hour))

	result, err := NewCleanupJob(NewRepository(db), 30).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CleanupResult{Expired: 1, Read: 1, Stale: 1}, result)

	var remaining int
	require.NoError(t, db.Get(&remaining, `SELECT COUNT(*) FROM notifications`))
	assert.Equal(t, 3, remaining)
}
