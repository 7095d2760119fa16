package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/pkg"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "coach.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Ping(ctx, db))
	require.NoError(t, Migrate(ctx, db, dialect))
	return NewRepository(db, dialect)
}

func TestFetchProfile_Missing(t *testing.T) {
	repo := newTestRepo(t)

	p, err := repo.FetchProfile(context.Background(), "nobody")

	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestFetchProfile_Found(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.DB.Exec(`INSERT INTO UserProfile (user_id, name, age, sex, health_goals, last_updated)
		VALUES ('u1', 'Ana', 34, 'F', 'sleep better', '2024-03-01 08:00:00')`)
	require.NoError(t, err)

	p, err := repo.FetchProfile(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Ana", p.Name)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age)
	assert.Equal(t, "F", p.Sex)
	assert.Equal(t, "sleep better", p.HealthGoals)
	require.NotNil(t, p.LastUpdated)
	assert.Equal(t, 2024, p.LastUpdated.Year())
}

func TestFetchProfile_NullColumns(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.DB.Exec(`INSERT INTO UserProfile (user_id) VALUES ('u2')`)
	require.NoError(t, err)

	p, err := repo.FetchProfile(context.Background(), "u2")

	require.NoError(t, err)
	assert.False(t, p.Empty())
	assert.Nil(t, p.Age)
	assert.Empty(t, p.Name)
	assert.Nil(t, p.LastUpdated)
}

func TestFetchLatestEntry_PicksNewest(t *testing.T) {
	repo := newTestRepo(t)
	for _, row := range []struct{ id, ts, symptoms string }{
		{"e1", "2024-01-01 09:00:00", "headache"},
		{"e3", "2024-01-03 09:00:00", "fatigue"},
		{"e2", "2024-01-02 09:00:00", "nausea"},
	} {
		_, err := repo.DB.Exec(`INSERT INTO UserHealthData (entry_id, user_id, timestamp, symptoms, habits)
			VALUES (?, 'u1', ?, ?, 'walks daily')`, row.id, row.ts, row.symptoms)
		require.NoError(t, err)
	}
	_, err := repo.DB.Exec(`INSERT INTO UserHealthData (entry_id, user_id, timestamp, symptoms)
		VALUES ('other', 'u9', '2030-01-01 00:00:00', 'not mine')`)
	require.NoError(t, err)

	e, err := repo.FetchLatestEntry(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "e3", e.EntryID)
	assert.Equal(t, "fatigue", e.Symptoms)
	assert.Equal(t, "walks daily", e.Habits)
	require.NotNil(t, e.Timestamp)
	assert.Equal(t, 3, e.Timestamp.Day())
}

func TestFetchLatestEntry_Missing(t *testing.T) {
	repo := newTestRepo(t)

	e, err := repo.FetchLatestEntry(context.Background(), "nobody")

	require.NoError(t, err)
	assert.True(t, e.Empty())
}

func TestFetch_ClosedDatabase(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.DB.Close())

	_, err := repo.FetchProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, pkg.ErrDataAccess)

	_, err = repo.FetchLatestEntry(context.Background(), "u1")
	assert.ErrorIs(t, err, pkg.ErrDataAccess)
}

func TestOpen_UnreachableStoreFailsPerCall(t *testing.T) {
	db, dialect, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "missing", "coach.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.ErrorIs(t, Ping(context.Background(), db), pkg.ErrDataAccess)
	_, err = NewRepository(db, dialect).FetchProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, pkg.ErrDataAccess)
}

func TestCreateAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acct, err := repo.CreateAccount(ctx, " Ana@Example.com ", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, acct.UserID)
	assert.Equal(t, "ana@example.com", acct.Email)

	_, err = repo.CreateAccount(ctx, "ana@example.com", "other")
	assert.True(t, errors.Is(err, ErrDuplicateAccount))

	got, err := repo.GetAccountByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acct.UserID, got.UserID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestGetAccountByEmail_Missing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetAccountByEmail(context.Background(), "ghost@example.com")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordPasswordReset(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.RecordPasswordReset(context.Background(), "u1"))

	var n int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM password_resets WHERE user_id = 'u1'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestIsUniqueViolation_Other(t *testing.T) {
	assert.False(t, isUniqueViolation(sql.ErrConnDone))
}

func TestAsTime(t *testing.T) {
	ref := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	assert.Equal(t, ref, *asTime(ref))
	assert.Equal(t, ref, *asTime("2024-05-06 07:08:09"))
	assert.Equal(t, ref, *asTime([]byte("2024-05-06T07:08:09Z")))
	assert.Equal(t, ref.Unix(), asTime(ref.Unix()).Unix())
	assert.Nil(t, asTime("not a time"))
	assert.Nil(t, asTime(nil))
}
