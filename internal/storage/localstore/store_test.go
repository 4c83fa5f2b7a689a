package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "roastblame.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func TestPostRepository_CreateListReact(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(openTestStore(t))

	older := &models.Post{ID: "post_1", Content: "first", CelebrityName: "A", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Post{ID: "post_2", Content: "second", CelebrityName: "B", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.ErrorIs(t, repo.Create(ctx, newer), common.ErrAlreadyExists)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "post_2", posts[0].ID)
	assert.NotNil(t, posts[0].UserReactions)

	require.NoError(t, repo.SaveReaction(ctx, "post_1", "u1", models.ReactionLike))
	require.NoError(t, repo.SaveReaction(ctx, "post_1", "u2", models.ReactionFunny))
	require.NoError(t, repo.SaveReaction(ctx, "post_1", "u1", models.ReactionDislike))
	require.NoError(t, repo.SaveReaction(ctx, "post_1", "u2", ""))

	got, err := repo.GetByID(ctx, "post_1")
	require.NoError(t, err)
	assert.Equal(t, models.Reactions{Dislikes: 1}, got.Reactions)
	assert.Equal(t, map[string]models.ReactionKind{"u1": models.ReactionDislike}, got.UserReactions)

	assert.ErrorIs(t, repo.SaveReaction(ctx, "post_x", "u1", models.ReactionLike), common.ErrNotFound)
}

func TestPostRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(openTestStore(t))
	require.NoError(t, repo.Create(ctx, &models.Post{ID: "post_1", Content: "c", CelebrityName: "X"}))

	require.NoError(t, repo.SoftDelete(ctx, "post_1", "admin_1", "hate", time.Now()))
	assert.ErrorIs(t, repo.SoftDelete(ctx, "post_1", "admin_1", "again", time.Now()), common.ErrNotFound)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	got, err := repo.GetByID(ctx, "post_1")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
	assert.Equal(t, "admin_1", *got.DeletedBy)
}

func TestUserRepository_KeepsPasswordHashAndSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestStore(t))

	user := &models.User{
		ID:           "user_1",
		Email:        strPtr("a@b.com"),
		PasswordHash: strPtr("hash"),
		Status:       models.UserStatusActive,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, user))
	dup := &models.User{ID: "user_2", Email: strPtr("A@B.com")}
	assert.ErrorIs(t, repo.Create(ctx, dup), common.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "A@b.COM")
	require.NoError(t, err)
	require.NotNil(t, got.PasswordHash)
	assert.Equal(t, "hash", *got.PasswordHash)

	require.NoError(t, repo.SetStatus(ctx, "user_1", models.UserStatusBanned, strPtr("spam")))
	banned, err := repo.List(ctx, models.UserStatusBanned)
	require.NoError(t, err)
	require.Len(t, banned, 1)
	assert.Equal(t, "spam", *banned[0].BanReason)

	_, err = repo.GetByID(ctx, "user_404")
	assert.ErrorIs(t, err, common.ErrNotFound)

	now := time.Now()
	require.NoError(t, repo.CreateSession(ctx, &models.Session{ID: "s1", UserID: "user_1", RefreshToken: "r1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{ID: "s2", UserID: "user_1", RefreshToken: "r2", ExpiresAt: now.Add(-time.Hour)}))

	removed, err := repo.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	s, err := repo.GetSession(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	require.NoError(t, repo.DeleteSession(ctx, "r1"))
	_, err = repo.GetSession(ctx, "r1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReportRepository_ReviewOnlyPending(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(openTestStore(t))

	require.NoError(t, repo.Create(ctx, &models.Report{ID: "report_1", PostID: "post_1", Reason: models.ReportReasonSpam, Status: models.ReportStatusPending}))
	require.NoError(t, repo.Create(ctx, &models.Report{ID: "report_2", PostID: "post_1", Reason: models.ReportReasonSpam, Status: models.ReportStatusPending}))

	require.NoError(t, repo.Review(ctx, "report_1", models.ReportStatusResolved, "removed", "admin_1", time.Now()))
	assert.ErrorIs(t, repo.Review(ctx, "report_1", models.ReportStatusDismissed, "x", "admin_1", time.Now()), common.ErrConflict)
	assert.ErrorIs(t, repo.Review(ctx, "report_9", models.ReportStatusDismissed, "x", "admin_1", time.Now()), common.ErrNotFound)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStats{Pending: 1, Resolved: 1, Total: 2}, *stats)

	pending, err := repo.List(ctx, models.ReportStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "report_2", pending[0].ID)
}

func TestCryptoRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCryptoRepository(openTestStore(t))

	require.NoError(t, repo.UpsertWallet(ctx, &models.Wallet{UserID: "user_1", Address: "0xA"}))
	require.NoError(t, repo.UpsertWallet(ctx, &models.Wallet{UserID: "user_1", Address: "0xB"}))
	w, err := repo.GetWallet(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "0xB", w.Address)
	require.NoError(t, repo.DeleteWallet(ctx, "user_1"))
	assert.ErrorIs(t, repo.DeleteWallet(ctx, "user_1"), common.ErrNotFound)

	require.NoError(t, repo.CreateTransaction(ctx, &models.CryptoTransaction{ID: "tx_1", UserID: "user_1", Status: models.TxStatusPending, TxHash: strPtr("0x1")}))
	require.NoError(t, repo.CreateTransaction(ctx, &models.CryptoTransaction{ID: "tx_2", UserID: "user_1", Status: models.TxStatusPending}))
	require.NoError(t, repo.CreateTransaction(ctx, &models.CryptoTransaction{ID: "tx_3", UserID: "user_2", Status: models.TxStatusConfirmed}))

	txs, err := repo.ListTransactions(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx_2", txs[0].ID)

	pending, err := repo.ListPendingTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "tx_1", pending[0].ID)

	require.NoError(t, repo.UpdateTransactionStatus(ctx, "tx_1", models.TxStatusConfirmed))
	pending, err = repo.ListPendingTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	first := &models.NFT{ID: "nft_1"}
	second := &models.NFT{ID: "nft_2"}
	require.NoError(t, repo.CreateNFT(ctx, first))
	require.NoError(t, repo.CreateNFT(ctx, second))
	assert.Equal(t, int64(1), first.TokenID)
	assert.Equal(t, int64(2), second.TokenID)
}

func TestAdminRepository_SettingsAndOverview(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	repo := NewAdminRepository(store)

	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), *settings)

	settings.SiteName = "Roasts"
	settings.AllowAnonymous = false
	require.NoError(t, repo.SaveSettings(ctx, settings))
	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Roasts", got.SiteName)
	assert.False(t, got.AllowAnonymous)

	posts := NewPostRepository(store)
	now := time.Now()
	require.NoError(t, posts.Create(ctx, &models.Post{ID: "post_1", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, posts.Create(ctx, &models.Post{ID: "post_2", CreatedAt: now}))
	require.NoError(t, posts.SaveReaction(ctx, "post_1", "u1", models.ReactionLike))
	require.NoError(t, NewReportRepository(store).Create(ctx, &models.Report{ID: "report_1", Status: models.ReportStatusPending}))
	require.NoError(t, NewUserRepository(store).Create(ctx, &models.User{ID: "user_1", Status: models.UserStatusBanned}))

	overview, err := repo.Overview(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.Overview{
		TotalPosts:     2,
		TotalUsers:     1,
		PendingReports: 1,
		TotalReactions: 1,
		PostsLast24h:   1,
		BannedUsers:    1,
	}, *overview)

	require.NoError(t, repo.AppendLog(ctx, &models.AdminLog{ID: "log_1"}))
	require.NoError(t, repo.AppendLog(ctx, &models.AdminLog{ID: "log_2"}))
	logs, err := repo.ListLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log_2", logs[0].ID)
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.update(func(b *bbolt.Bucket) error {
		return b.Put([]byte(KeyPosts), []byte(`[{"id":"post_1","content":"c","future_field":true}]`))
	}))

	posts, err := NewPostRepository(store).List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "c", posts[0].Content)
	assert.NoError(t, store.Ping())
}
